package store

import "strings"

// DefaultPrefix namespaces every key this application writes.
const DefaultPrefix = "pm"

const separator = ":"

// Logical key names, relative to the application prefix.
const (
	interruptionIndexKey   = "interruption:index"
	interruptionEventKey   = "interruption:event"
	resumeIndexKey         = "resume:index"
	resumeEventKey         = "resume:event"
	notificationBindingKey = "notificationBindings"
	customTriggerTagsKey   = "triggerTags:custom"
	settingsKey            = "settings"
	scheduledRemindersKey  = "reminders:scheduled"
)

// Keyspace builds namespaced keys under a single application prefix so that
// unrelated data sharing the backend never collides with ours.
type Keyspace struct {
	prefix string
}

// NewKeyspace returns a Keyspace rooted at prefix. An empty prefix falls back to DefaultPrefix.
func NewKeyspace(prefix string) Keyspace {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), separator)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keyspace{prefix: prefix}
}

// Prefix returns the bare application prefix.
func (k Keyspace) Prefix() string { return k.prefix }

// Key joins parts under the application prefix.
func (k Keyspace) Key(parts ...string) string {
	var b strings.Builder
	b.WriteString(k.prefix)
	for _, p := range parts {
		b.WriteString(separator)
		b.WriteString(p)
	}
	return b.String()
}

// Owns reports whether key lives under this keyspace.
func (k Keyspace) Owns(key string) bool {
	return strings.HasPrefix(key, k.prefix+separator)
}

// Relative strips the application prefix from key.
func (k Keyspace) Relative(key string) string {
	return strings.TrimPrefix(key, k.prefix+separator)
}

func (k Keyspace) InterruptionIndex() string      { return k.Key(interruptionIndexKey) }
func (k Keyspace) InterruptionEventPrefix() string { return k.Key(interruptionEventKey) }
func (k Keyspace) ResumeIndex() string             { return k.Key(resumeIndexKey) }
func (k Keyspace) ResumeEventPrefix() string       { return k.Key(resumeEventKey) }
func (k Keyspace) NotificationBindings() string    { return k.Key(notificationBindingKey) }
func (k Keyspace) CustomTriggerTags() string       { return k.Key(customTriggerTagsKey) }
func (k Keyspace) Settings() string                { return k.Key(settingsKey) }
func (k Keyspace) ScheduledReminders() string      { return k.Key(scheduledRemindersKey) }
