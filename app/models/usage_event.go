package models

import "time"

// UsageEvent records one completed summarization. Rows are append-only and
// immutable; the only delete path is the admin reset which truncates the
// whole table.
type UsageEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(32);not null;index:idx_usage_events_user_team_month,priority:1" json:"user_id"`
	TeamID       string    `gorm:"type:varchar(32);not null;index:idx_usage_events_user_team_month,priority:2" json:"team_id"`
	Month        string    `gorm:"type:varchar(7);not null;index:idx_usage_events_user_team_month,priority:3" json:"month"`
	Timestamp    time.Time `gorm:"type:timestamp;not null" json:"timestamp"`
	FileName     string    `gorm:"type:varchar(255)" json:"file_name"`
	StatusAtTime string    `gorm:"type:varchar(16)" json:"status_at_time"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// MonthKey renders the calendar-month partition key (YYYY-MM) for a point in time.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
