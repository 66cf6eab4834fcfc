package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertUser creates the user on first sight and keeps the display name
// current afterwards.
func (s *Store) UpsertUser(ctx context.Context, key, displayName string) (*User, error) {
	u := &User{
		Key:         key,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name"}),
		}).
		Create(u).Error
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by identity key, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, key string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByName fetches a user by display name, or ErrNotFound.
func (s *Store) GetUserByName(ctx context.Context, displayName string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("display_name = ?", displayName).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
