package models

import "time"

// StatusHistoryEntry is one row of the append-only status ledger. Entries
// are never updated or deleted; ordering is ChangeDate ascending with
// HistoryID breaking ties.
type StatusHistoryEntry struct {
	HistoryID      int                `gorm:"primaryKey;column:history_id" json:"history_id"`
	ApplicationID  int                `gorm:"column:application_id" json:"application_id"`
	PreviousStatus *ApplicationStatus `gorm:"column:previous_status" json:"previous_status"`
	NewStatus      ApplicationStatus  `gorm:"column:new_status" json:"new_status"`
	ChangeDate     time.Time          `gorm:"column:change_date" json:"change_date"`
	ChangeReason   *string            `gorm:"column:change_reason" json:"change_reason"`
	ActorID        int                `gorm:"column:actor_id" json:"actor_id"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TableName specifies the table for StatusHistoryEntry.
func (StatusHistoryEntry) TableName() string {
	return "status_history"
}
