package auth

import "time"

// AdminUser is an account allowed to manage portfolio content.
type AdminUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevokedToken records a token id that must no longer be accepted.
// Rows can be dropped once ExpiresAt has passed.
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

// Models lists the tables owned by this package.
func Models() []any {
	return []any{&AdminUser{}, &RevokedToken{}}
}
