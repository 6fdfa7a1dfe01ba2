package repository

import (
	"github.com/DocBriefHQ/DocBrief/app/models"
	"gorm.io/gorm"
)

// usageRepository implements the UsageRepository interface
type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new usage repository instance
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// Record appends a usage event; events are never updated afterwards
func (r *usageRepository) Record(event *models.UsageEvent) error {
	return r.db.Create(event).Error
}

// CountForMonth counts usage events within one (user, team, month) partition
func (r *usageRepository) CountForMonth(userID, teamID, month string) (int64, error) {
	var count int64
	err := r.db.Model(&models.UsageEvent{}).
		Where("user_id = ? AND team_id = ? AND month = ?", userID, teamID, month).
		Count(&count).Error
	return count, err
}

// ListForMonth returns the usage events of one partition, oldest first
func (r *usageRepository) ListForMonth(userID, teamID, month string) ([]models.UsageEvent, error) {
	var events []models.UsageEvent
	err := r.db.
		Where("user_id = ? AND team_id = ? AND month = ?", userID, teamID, month).
		Order("timestamp ASC").
		Find(&events).Error
	return events, err
}

// TruncateAll removes every usage event (admin reset)
func (r *usageRepository) TruncateAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UsageEvent{}).Error
}
