package models

// User 代表平台中的一个用户账户。
// PasswordHash 由外部的认证服务写入，本服务只读取公开字段。
type User struct {
	BaseModel
	FirstName    string `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName     string `gorm:"type:varchar(100);not null" json:"lastName"`
	Email        string `gorm:"type:varchar(100);uniqueIndex" json:"email,omitempty"`
	PasswordHash string `gorm:"type:varchar(255)" json:"-"` // 不暴露密码哈希
	Location     string `gorm:"type:varchar(100)" json:"location,omitempty"`
	Occupation   string `gorm:"type:varchar(100)" json:"occupation,omitempty"`
	PicturePath  string `gorm:"type:varchar(255)" json:"picturePath,omitempty"`
	XLink        string `gorm:"type:varchar(255)" json:"xLink,omitempty"`
	LinkedInLink string `gorm:"type:varchar(255)" json:"linkedInLink,omitempty"`
}

// UserBasicInfo holds the minimal public projection of a user.
// Used for friend lists and for resolving the actor on notifications.
type UserBasicInfo struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PicturePath string `json:"picturePath,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}
