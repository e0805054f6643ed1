package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote is the ledger row written for every successful vote.
type Vote struct {
	ID            uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index:idx_votes_user_video"`
	VideoID       uuid.UUID `json:"video_id" gorm:"type:char(36);not null;index:idx_votes_user_video;index"`
	Video         *Video    `json:"video,omitempty" gorm:"foreignKey:VideoID"`
	PointsAwarded int       `json:"points_awarded" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
