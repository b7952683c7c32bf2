package api

// Route tags used to group operations in the OpenAPI document.
const (
	tagHealth        = "Health"
	tagInterruptions = "Interruptions"
	tagSummary       = "Summary"
	tagTriggerTags   = "Trigger tags"
	tagSettings      = "Settings"
	tagData          = "Data"
	tagReminders     = "Reminders"
)
