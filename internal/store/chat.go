package store

import (
	"context"
	"time"
)

// AddChatMessage appends a message to the public board.
func (s *Store) AddChatMessage(ctx context.Context, author, text string) (*ChatMessage, error) {
	m := &ChatMessage{
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListChatMessages returns the most recent board messages, newest first.
func (s *Store) ListChatMessages(ctx context.Context, limit int) ([]ChatMessage, error) {
	var out []ChatMessage
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
