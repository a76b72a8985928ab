package models

import "time"

// Review session lifecycle values for ReviewSession.SessionStatus.
const (
	ReviewSessionOpen     = "open"
	ReviewSessionArchived = "archived"
)

// Review decisions accepted by submitReview.
const (
	ReviewDecisionApprove        = "approve"
	ReviewDecisionRequestChanges = "request_changes"
)

// ReviewSession is one administrator review pass over an application. At
// most one open session exists per application; closed sessions are
// archived, never deleted.
type ReviewSession struct {
	SessionID      int        `gorm:"primaryKey;column:session_id" json:"session_id"`
	ApplicationID  int        `gorm:"column:application_id" json:"application_id"`
	ReviewRound    int        `gorm:"column:review_round" json:"review_round"`
	SessionStatus  string     `gorm:"column:session_status" json:"session_status"`
	OverallRemarks *string    `gorm:"column:overall_remarks" json:"overall_remarks"`
	Decision       *string    `gorm:"column:decision" json:"decision"`
	OpenedBy       int        `gorm:"column:opened_by" json:"opened_by"`
	OpenedAt       time.Time  `gorm:"column:opened_at" json:"opened_at"`
	ClosedAt       *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`

	Fields []FieldReview `gorm:"foreignKey:SessionID" json:"fields,omitempty"`
}

// TableName specifies the table name for ReviewSession.
func (ReviewSession) TableName() string {
	return "review_sessions"
}

// IsOpen reports whether the session still accepts field marks.
func (s *ReviewSession) IsOpen() bool {
	return s.SessionStatus == ReviewSessionOpen
}

// FieldReview is the per-field correction marker inside a session. Keyed
// uniquely by (session_id, field_name); FieldName is always a member of the
// reviewable-field registry.
type FieldReview struct {
	ReviewID           int        `gorm:"primaryKey;column:review_id" json:"review_id"`
	SessionID          int        `gorm:"column:session_id" json:"session_id"`
	FieldName          string     `gorm:"column:field_name" json:"field_name"`
	FieldLabel         string     `gorm:"column:field_label" json:"field_label"`
	FieldValueSnapshot string     `gorm:"column:field_value_snapshot" json:"field_value_snapshot"`
	NeedsCorrection    bool       `gorm:"column:needs_correction" json:"needs_correction"`
	AdminComment       string     `gorm:"column:admin_comment" json:"admin_comment"`
	ResolvedAt         *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
}

// TableName specifies the table name for FieldReview.
func (FieldReview) TableName() string {
	return "field_reviews"
}

// Actionable reports whether the entry carries review substance: a
// correction flag or a comment. Only actionable entries survive submit.
func (f *FieldReview) Actionable() bool {
	return f.NeedsCorrection || f.AdminComment != ""
}
