package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the access level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Badge is an achievement earned through voting activity.
type Badge string

const (
	BadgeNewcomer       Badge = "newcomer"
	BadgeEarlySupporter Badge = "early_supporter"
	BadgeRegularVoter   Badge = "regular_voter"
	BadgeSuperVoter     Badge = "super_voter"
	BadgeVoter10        Badge = "voter_10"
	BadgeVoter50        Badge = "voter_50"
	BadgeVoter100       Badge = "voter_100"
)

// DefaultAvatar is assigned to users that never uploaded a picture.
const DefaultAvatar = "/default-avatar.png"

// User is a festival participant holding a vote budget and gamification progress.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role       `json:"role" gorm:"size:20;default:'user';index"`
	Votes        int        `json:"votes" gorm:"not null;default:0"`
	VotesUsed    int        `json:"votes_used" gorm:"not null;default:0"`
	LastVotedAt  *time.Time `json:"last_voted_at"`
	Points       int        `json:"points" gorm:"not null;default:0"`
	Level        int        `json:"level" gorm:"not null;default:1"`
	Badges       []Badge    `json:"badges" gorm:"serializer:json;type:text"`
	Avatar       string     `json:"avatar" gorm:"size:255"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID and zero-value defaults before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Level < 1 {
		u.Level = 1
	}
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	if u.Badges == nil {
		u.Badges = []Badge{}
	}
	return nil
}

// HasBadge reports whether the user already holds b.
func (u *User) HasBadge(b Badge) bool {
	for _, have := range u.Badges {
		if have == b {
			return true
		}
	}
	return false
}
