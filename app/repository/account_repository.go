package repository

import (
	"strings"

	"github.com/DocBriefHQ/DocBrief/app/models"
	"gorm.io/gorm"
)

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new user account in the database
func (r *accountRepository) Create(account *models.UserAccount) error {
	return r.db.Create(account).Error
}

// GetByUserTeam retrieves an account by its composite Slack identity
func (r *accountRepository) GetByUserTeam(userID, teamID string) (*models.UserAccount, error) {
	userID = strings.TrimSpace(userID)
	teamID = strings.TrimSpace(teamID)
	if userID == "" || teamID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var account models.UserAccount
	err := r.db.Where("user_id = ? AND team_id = ?", userID, teamID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Update persists changes to an existing account
func (r *accountRepository) Update(account *models.UserAccount) error {
	return r.db.Save(account).Error
}

// Count returns the total number of accounts
func (r *accountRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.UserAccount{}).Count(&count).Error
	return count, err
}
