package sse

import (
	"slices"
	"strings"

	"github.com/pausememo/pausememo/internal/domain"
)

// Filter narrows the events a client receives. The zero Filter passes
// everything. Heartbeats always pass.
type Filter struct {
	Types []EventType
	// InterruptionID drops events that belong to a different interruption.
	// Events not tied to any interruption, such as settings.updated, pass.
	InterruptionID domain.InterruptionID
}

// ParseFilter reads a filter from the types and interruption query values.
// Types are comma separated; blanks are ignored.
func ParseFilter(types, interruptionID string) Filter {
	var f Filter
	for t := range strings.SplitSeq(types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			f.Types = append(f.Types, EventType(t))
		}
	}
	f.InterruptionID = domain.InterruptionID(strings.TrimSpace(interruptionID))
	return f
}

// Match reports whether ev should be delivered under f.
func (f Filter) Match(ev Event) bool {
	if ev.Type == EventHeartbeat {
		return true
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, ev.Type) {
		return false
	}
	if f.InterruptionID != "" {
		if iid, ok := ev.InterruptionID(); ok && iid != f.InterruptionID {
			return false
		}
	}
	return true
}

// InterruptionID returns the interruption the event concerns, if any.
func (e Event) InterruptionID() (domain.InterruptionID, bool) {
	switch d := e.Data.(type) {
	case ReminderFiredEventData:
		return d.InterruptionID, true
	case InterruptionEventData:
		if d.Interruption != nil {
			return d.Interruption.ID, true
		}
	case ResumeEventData:
		if d.Resume != nil {
			return d.Resume.InterruptionID, true
		}
	}
	return "", false
}
