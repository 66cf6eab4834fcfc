package store

import (
	"context"
	"time"
)

// AddComment appends a comment to an existing recipe. A missing recipe id
// yields ErrNotFound; no orphan row is created.
func (s *Store) AddComment(ctx context.Context, recipeID uint, author, text string) (*Comment, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Recipe{}).Where("id = ?", recipeID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	c := &Comment{
		RecipeID:  recipeID,
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns the most recent comments for a recipe, newest first.
func (s *Store) ListComments(ctx context.Context, recipeID uint, limit int) ([]Comment, error) {
	var out []Comment
	err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
