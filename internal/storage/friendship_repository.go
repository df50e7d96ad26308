package storage

import (
	"context"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// FriendshipRepository defines the interface for friend-edge operations.
// One canonical-order row stores both directions of the edge, so the
// symmetric invariant cannot be violated by a partial write.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	Remove(ctx context.Context, userID1, userID2 uint) error
	// Toggle creates the edge if absent and removes it if present,
	// atomically. It reports whether the edge exists afterwards.
	Toggle(ctx context.Context, userID1, userID2 uint) (added bool, err error)
	AreUsersFriends(ctx context.Context, userID1, userID2 uint) (bool, error)
	GetFriendIDs(ctx context.Context, userID uint) ([]uint, error)
}

type gormFriendshipRepository struct {
	db *gorm.DB
}

// NewGormFriendshipRepository creates a new GormFriendshipRepository.
func NewGormFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &gormFriendshipRepository{db: db}
}

// Create creates a new friendship record in the database.
// It assumes that friendship.EnsureCanonicalOrder() has been called before.
func (r *gormFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	return r.db.WithContext(ctx).Create(friendship).Error
}

// Remove deletes the edge between the two users, in either argument order.
func (r *gormFriendshipRepository) Remove(ctx context.Context, userID1, userID2 uint) error {
	u1, u2 := canonicalPair(userID1, userID2)
	return r.db.WithContext(ctx).
		Where("user_id1 = ? AND user_id2 = ?", u1, u2).
		Delete(&models.Friendship{}).Error
}

// Toggle runs the check-and-flip inside one transaction so a concurrent
// toggle of the same pair settles on one definite final state. A lost
// race against the unique index surfaces as gorm.ErrDuplicatedKey.
func (r *gormFriendshipRepository) Toggle(ctx context.Context, userID1, userID2 uint) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &gormFriendshipRepository{db: tx}

		areFriends, err := txRepo.AreUsersFriends(ctx, userID1, userID2)
		if err != nil {
			return err
		}

		if areFriends {
			added = false
			return txRepo.Remove(ctx, userID1, userID2)
		}

		friendship := &models.Friendship{UserID1: userID1, UserID2: userID2}
		friendship.EnsureCanonicalOrder()
		added = true
		return txRepo.Create(ctx, friendship)
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// AreUsersFriends checks if two users are friends.
func (r *gormFriendshipRepository) AreUsersFriends(ctx context.Context, userID1, userID2 uint) (bool, error) {
	u1, u2 := canonicalPair(userID1, userID2)
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).Where("user_id1 = ? AND user_id2 = ?", u1, u2).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFriendIDs retrieves a list of user IDs who are friends with the given userID.
func (r *gormFriendshipRepository) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	// The user can sit on either side of the canonical pair, so the other
	// side's column is plucked from both.
	var idsPart1 []uint
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id1 = ?", userID).
		Pluck("user_id2", &idsPart1).Error
	if err != nil {
		return nil, err
	}

	var idsPart2 []uint
	err = r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id2 = ?", userID).
		Pluck("user_id1", &idsPart2).Error
	if err != nil {
		return nil, err
	}

	return append(idsPart1, idsPart2...), nil
}

// canonicalPair returns the two ids in the stored order (smaller first).
func canonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
