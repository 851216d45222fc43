package models

import (
	"hbs/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenType string

const (
	TokenTypeAccess       TokenType = "AccessToken"
	TokenTypeVerification TokenType = "verification"
)

// Token stores third-party OAuth grants (e.g. the Google access token
// captured on the OAuth callback). Rows are write-once.
type Token struct {
	ID            uuid.UUID       `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"-"`
	RequestedBy   uint            `gorm:"->;<-:create" json:"-"`
	RequesterType string          `gorm:"->;<-:create" json:"-"`
	Type          TokenType       `gorm:"->;<-:create;type:text" json:"-"`
	TokenName     string          `gorm:"->;<-:create" json:"-"`
	TokenValue    types.JSONB     `gorm:"->;<-:create;type:jsonb" json:"-"`
	TTL           uint            `gorm:"->;<-:create" json:"-"`
	Metadata      *types.Metadata `gorm:"->;<-:create;type:jsonb" json:"-"`
	ExpiresAt     time.Time       `gorm:"-"`
	Status        string          `gorm:"default:'pending'" json:"-"`

	types.Timestamps
}

func (t *Token) AfterFind(tx *gorm.DB) error {
	t.ExpiresAt = t.CreatedAt.Add(time.Duration(t.TTL) * time.Second)
	return nil
}
