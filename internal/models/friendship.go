package models

// Friendship represents the symmetric friend edge between two users.
// A single row covers both directions, so the relation can never be
// asymmetric. To avoid duplicates, UserID1 should always be less than
// UserID2.
type Friendship struct {
	BaseModel
	UserID1 uint `gorm:"not null;uniqueIndex:idx_friendship_users"`
	User1   User `gorm:"foreignKey:UserID1" json:"-"`
	UserID2 uint `gorm:"not null;uniqueIndex:idx_friendship_users"`
	User2   User `gorm:"foreignKey:UserID2" json:"-"`
}

// TableName 指定 Friendship 模型的表名。
func (Friendship) TableName() string {
	return "friendships"
}

// EnsureCanonicalOrder sets UserID1 to the smaller ID and UserID2 to the
// larger ID. This must be called before creating a Friendship record.
func (f *Friendship) EnsureCanonicalOrder() {
	if f.UserID1 > f.UserID2 {
		f.UserID1, f.UserID2 = f.UserID2, f.UserID1
	}
}
