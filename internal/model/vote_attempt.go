package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteAttemptStatus is the outcome of a vote request.
type VoteAttemptStatus string

const (
	VoteAttemptAccepted VoteAttemptStatus = "accepted"
	VoteAttemptRejected VoteAttemptStatus = "rejected"
)

// VoteAttempt is an audit entry for a vote request.
// Every attempt is logged regardless of success or failure.
type VoteAttempt struct {
	ID           uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID         `json:"user_id" gorm:"type:char(36);not null;index"`
	VideoID      uuid.UUID         `json:"video_id" gorm:"type:char(36);not null;index"`
	Status       VoteAttemptStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ErrorMessage string            `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time         `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *VoteAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
