// Package domain holds the PauseMemo record types and their pure constructors.
package domain

// Distinct identifier types. Mixing one kind of id with another requires an
// explicit conversion.
type (
	// InterruptionID identifies an InterruptionEvent. Time ordered (UUIDv7).
	InterruptionID string
	// ResumeID identifies a ResumeEvent. Time ordered (UUIDv7).
	ResumeID string
	// TriggerTagID identifies a preset or custom trigger tag.
	TriggerTagID string
	// NotificationID is the scheduler's handle for one scheduled reminder.
	NotificationID string
)

func (id InterruptionID) String() string { return string(id) }
func (id ResumeID) String() string       { return string(id) }
func (id TriggerTagID) String() string   { return string(id) }
func (id NotificationID) String() string { return string(id) }
