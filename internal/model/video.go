package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoStatus is the moderation state of a submission.
type VideoStatus string

const (
	VideoStatusPending  VideoStatus = "pending"
	VideoStatusApproved VideoStatus = "approved"
	VideoStatusRejected VideoStatus = "rejected"
)

// Category is one of the festival competition categories.
type Category string

const (
	CategoryNarrative    Category = "narrative"
	CategoryDocumentary  Category = "documentary"
	CategoryExperimental Category = "experimental"
	CategoryAnimation    Category = "animation"
	CategoryDystopian    Category = "dystopian"
	CategoryAIIdentity   Category = "ai-identity"
)

// Categories lists every category in featured display order.
var Categories = []Category{
	CategoryNarrative,
	CategoryDocumentary,
	CategoryExperimental,
	CategoryAnimation,
	CategoryDystopian,
	CategoryAIIdentity,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DefaultThumbnail is used when a submission has no thumbnail.
const DefaultThumbnail = "/placeholder.svg"

// Video is a short film submitted to the festival.
type Video struct {
	ID            uuid.UUID   `json:"id" gorm:"type:char(36);primaryKey"`
	Title         string      `json:"title" gorm:"size:100;not null"`
	Description   string      `json:"description" gorm:"size:500"`
	Category      Category    `json:"category" gorm:"size:32;not null;index"`
	Duration      string      `json:"duration" gorm:"size:16;not null"`
	VideoPath     string      `json:"-" gorm:"size:255;not null"`
	ScriptPath    string      `json:"-" gorm:"size:255;not null"`
	ThumbnailPath string      `json:"-" gorm:"size:255"`
	UploaderID    uuid.UUID   `json:"uploader_id" gorm:"type:char(36);not null;index"`
	Uploader      *Uploader   `json:"uploader,omitempty" gorm:"foreignKey:UploaderID"`
	Status        VideoStatus `json:"status" gorm:"size:20;default:'pending';index"`
	Votes         int         `json:"votes" gorm:"not null;default:0;index"`
	CreatedAt     time.Time   `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// Public URLs resolved from the stored paths when the video is served.
	VideoURL     string `json:"video_url" gorm:"-"`
	ScriptURL    string `json:"script_url" gorm:"-"`
	ThumbnailURL string `json:"thumbnail_url" gorm:"-"`
}

// Uploader is the public view of the user who submitted a video.
type Uploader struct {
	ID       uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// TableName maps Uploader onto the users table.
func (Uploader) TableName() string {
	return "users"
}

// BeforeCreate sets UUID and defaults before creating the record.
func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = VideoStatusPending
	}
	if v.ThumbnailPath == "" {
		v.ThumbnailPath = DefaultThumbnail
	}
	return nil
}
