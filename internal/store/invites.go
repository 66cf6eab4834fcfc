package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrCreateInvite returns the owner's invite code, minting one on first
// request. Repeated calls return the same code.
func (s *Store) GetOrCreateInvite(ctx context.Context, owner string) (*Invite, error) {
	var inv Invite
	err := s.db.WithContext(ctx).Where("owner = ?", owner).First(&inv).Error
	if err == nil {
		return &inv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	inv = Invite{
		Owner:     owner,
		Code:      uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInviteByCode looks up an invite by its code, or ErrNotFound.
func (s *Store) GetInviteByCode(ctx context.Context, code string) (*Invite, error) {
	var inv Invite
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// UseInvite redeems a code for redeemer. Codes are single-use: an unknown
// code yields ErrNotFound, an exhausted one ErrInviteUsed. The transition is
// guarded by the WHERE clause so two concurrent redemptions cannot both win.
func (s *Store) UseInvite(ctx context.Context, code, redeemer string) (*Invite, error) {
	inv, err := s.GetInviteByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).
		Model(&Invite{}).
		Where("code = ? AND used = ?", code, false).
		Updates(map[string]any{"used": true, "used_by": redeemer})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInviteUsed
	}
	inv.Used = true
	inv.UsedBy = redeemer
	return inv, nil
}
