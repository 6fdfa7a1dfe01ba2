package repository

import (
	"github.com/DocBriefHQ/DocBrief/app/models"
)

// AccountRepository defines the interface for user-account database operations
type AccountRepository interface {
	Create(account *models.UserAccount) error
	GetByUserTeam(userID, teamID string) (*models.UserAccount, error)
	Update(account *models.UserAccount) error
	Count() (int64, error)
}

// UsageRepository defines the interface for usage-event database operations
type UsageRepository interface {
	Record(event *models.UsageEvent) error
	CountForMonth(userID, teamID, month string) (int64, error)
	ListForMonth(userID, teamID, month string) ([]models.UsageEvent, error)
	TruncateAll() error
}
