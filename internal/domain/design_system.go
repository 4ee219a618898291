package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DesignSystem is a named, tagged collection of generated visual tokens.
// AuthorUsername is denormalized from the author's profile at creation time.
type DesignSystem struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name            string         `json:"name" gorm:"not null"`
	AuthorID        uuid.UUID      `json:"authorId" gorm:"type:uuid;not null;index"`
	AuthorUsername  string         `json:"authorUsername" gorm:"not null"`
	Tags            datatypes.JSON `json:"tags"`
	Prompt          string         `json:"prompt"`
	CreativityScale int            `json:"creativityScale" gorm:"not null;default:50"`
	Tokens          datatypes.JSON `json:"tokens"`
	PreviewImageURL *string        `json:"previewImageUrl"`
	RemixedFrom     *uuid.UUID     `json:"remixedFrom" gorm:"type:uuid"`
	IsPublic        bool           `json:"isPublic" gorm:"not null;default:true"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// GenerationRecord is one row per successful generation, used to derive the
// monthly remaining-generation counter.
type GenerationRecord struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID         uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	DesignSystemID uuid.UUID `json:"designSystemId" gorm:"type:uuid;not null"`
	CreatedAt      time.Time `json:"createdAt"`
}
