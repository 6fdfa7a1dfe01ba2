package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SUBSCRIPTION_STATUS_TRIAL   = "trial"
	SUBSCRIPTION_STATUS_ACTIVE  = "active"
	SUBSCRIPTION_STATUS_FREE    = "free"
	SUBSCRIPTION_STATUS_EXPIRED = "expired"
)

const (
	TIER_TRIAL    = "trial"
	TIER_FREE     = "free"
	TIER_STANDARD = "standard"
	TIER_PREMIUM  = "premium"
)

// UserAccount is the per-Slack-identity subscription record. Exactly one row
// exists per (user_id, team_id); rows are created lazily on first contact and
// never deleted, only transitioned through subscription statuses.
type UserAccount struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             string     `gorm:"type:varchar(32);not null;index:ux_user_accounts_user_team,unique,priority:1" json:"user_id" validate:"required"`
	TeamID             string     `gorm:"type:varchar(32);not null;index:ux_user_accounts_user_team,unique,priority:2" json:"team_id" validate:"required"`
	Email              string     `gorm:"type:varchar(200);default:null" json:"email,omitempty" validate:"omitempty,email,max=200"`
	SubscriptionStatus string     `gorm:"type:varchar(16);not null;default:'trial';index" json:"subscription_status" validate:"oneof=trial active free expired"`
	SubscriptionTier   string     `gorm:"type:varchar(16);not null;default:'trial'" json:"subscription_tier" validate:"oneof=trial free standard premium"`
	TrialStart         *time.Time `gorm:"type:timestamp;default:null" json:"trial_start,omitempty"`
	TrialEnd           *time.Time `gorm:"type:timestamp;default:null" json:"trial_end,omitempty"`
	SubscriptionStart  *time.Time `gorm:"type:timestamp;default:null" json:"subscription_start,omitempty"`
	SubscriptionEnd    *time.Time `gorm:"type:timestamp;default:null" json:"subscription_end,omitempty"`
	LastLoginAt        *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *UserAccount) Validate() error {
	v := validator.New()

	return v.Struct(a)
}

// NewTrialAccount builds a fresh account in its trial window.
func NewTrialAccount(userID, teamID, email string, trialDays int, now time.Time) *UserAccount {
	trialEnd := now.Add(time.Duration(trialDays) * 24 * time.Hour)
	return &UserAccount{
		UserID:             userID,
		TeamID:             teamID,
		Email:              email,
		SubscriptionStatus: SUBSCRIPTION_STATUS_TRIAL,
		SubscriptionTier:   TIER_TRIAL,
		TrialStart:         &now,
		TrialEnd:           &trialEnd,
	}
}
