package store

import "time"

// User is created on first interaction (bot /start or web login) and keyed by
// a stable identity string: the Telegram user id rendered as decimal, or the
// handle chosen on the web. Never deleted; only the display name is updated.
type User struct {
	Key         string `gorm:"primaryKey;size:64"`
	DisplayName string `gorm:"size:64"`
	CreatedAt   time.Time
}

// Recipe rows are immutable after creation except for the like counter,
// which only ever grows.
type Recipe struct {
	ID          uint   `gorm:"primaryKey"`
	Username    string `gorm:"index;size:64"`
	Title       string `gorm:"size:255"`
	Description string
	PhotoFileID string `gorm:"size:128"`
	PhotoURL    string `gorm:"size:512"`
	VideoURL    string `gorm:"size:512"`
	Caption     string
	Likes       int `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

type Comment struct {
	ID        uint `gorm:"primaryKey"`
	RecipeID  uint `gorm:"index;not null"`
	Author    string
	Text      string
	CreatedAt time.Time
}

// ChatMessage is a row on the append-only public board.
type ChatMessage struct {
	ID        uint `gorm:"primaryKey"`
	Author    string
	Text      string
	CreatedAt time.Time
}

// Invite holds the single code minted per owner. Used flips once.
type Invite struct {
	Owner     string `gorm:"primaryKey;size:64"`
	Code      string `gorm:"uniqueIndex;size:64"`
	Used      bool
	UsedBy    string `gorm:"size:64"`
	CreatedAt time.Time
}
