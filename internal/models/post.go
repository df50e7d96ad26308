package models

// Post 代表一条动态。
// 作者的展示字段 (FirstName/LastName/Location/UserPicturePath) 在创建时快照，
// 之后用户修改资料不会回写到已有的动态上。
type Post struct {
	BaseModel
	UserID          uint   `gorm:"not null;index" json:"userId"`
	FirstName       string `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName        string `gorm:"type:varchar(100);not null" json:"lastName"`
	Location        string `gorm:"type:varchar(100)" json:"location,omitempty"`
	UserPicturePath string `gorm:"type:varchar(255)" json:"userPicturePath,omitempty"`
	PicturePath     string `gorm:"type:varchar(255)" json:"picturePath,omitempty"` // 可选的媒体文件标识
	Description     string `gorm:"type:text" json:"description"`

	// Likes is the like-set keyed by the acting user's id. It is stored as
	// rows in post_likes and flattened into a map when posts are read, so
	// clients see {"userId": true} and len(likes) is the like count.
	Likes map[string]bool `gorm:"-" json:"likes"`
}

// TableName 指定 Post 模型的表名。
func (Post) TableName() string {
	return "posts"
}

// PostLike is one entry of a post's like-set. The unique index over
// (post_id, user_id) is what makes the toggle a per-key operation: two
// users toggling the same post touch different rows, and the same user
// toggling twice converges on one definite state.
type PostLike struct {
	ID     uint `gorm:"primarykey" json:"id"`
	PostID uint `gorm:"not null;uniqueIndex:idx_post_like" json:"postId"`
	UserID uint `gorm:"not null;uniqueIndex:idx_post_like" json:"userId"`
}

// TableName 指定 PostLike 模型的表名。
func (PostLike) TableName() string {
	return "post_likes"
}
