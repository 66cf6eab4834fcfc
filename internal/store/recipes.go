package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// CreateRecipe inserts a new recipe row. The id is assigned by the store and
// set on r. CreatedAt is stamped in UTC.
func (s *Store) CreateRecipe(ctx context.Context, r *Recipe) error {
	r.CreatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Create(r).Error
}

// ListRecipes returns the most recent recipes, newest first.
func (s *Store) ListRecipes(ctx context.Context, limit int) ([]Recipe, error) {
	var out []Recipe
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// TopRecipes returns the most liked recipes, computed at query time.
func (s *Store) TopRecipes(ctx context.Context, limit int) ([]Recipe, error) {
	var out []Recipe
	err := s.db.WithContext(ctx).
		Order("likes desc, created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetRecipe fetches a recipe by id, or ErrNotFound.
func (s *Store) GetRecipe(ctx context.Context, id uint) (*Recipe, error) {
	var r Recipe
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// LikeRecipe increments the like counter with a single UPDATE so two
// concurrent likes are both applied. Missing recipe yields ErrNotFound
// instead of a silent no-op.
func (s *Store) LikeRecipe(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&Recipe{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UserRecipes returns recipes owned by username, newest first.
func (s *Store) UserRecipes(ctx context.Context, username string, limit int) ([]Recipe, error) {
	var out []Recipe
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
