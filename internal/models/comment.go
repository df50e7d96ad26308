package models

// Comment 代表动态下的一条评论。
// 与 Post 一样，作者展示字段在写入时快照，不跟随后续资料修改。
type Comment struct {
	BaseModel
	PostID          uint   `gorm:"not null;index" json:"postId"`
	UserID          uint   `gorm:"not null;index" json:"userId"`
	FirstName       string `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName        string `gorm:"type:varchar(100);not null" json:"lastName"`
	UserPicturePath string `gorm:"type:varchar(255)" json:"userPicturePath,omitempty"`
	Comment         string `gorm:"type:text;not null" json:"comment"`
}

// TableName 指定 Comment 模型的表名。
func (Comment) TableName() string {
	return "comments"
}
