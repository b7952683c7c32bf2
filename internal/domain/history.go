package domain

import "time"

// DefaultHistoryLimit caps history queries that do not set a limit.
const DefaultHistoryLimit = 50

// HistoryQuery selects interruptions by RecordedAt. Both bounds are
// inclusive and optional.
type HistoryQuery struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// EffectiveLimit returns Limit, or DefaultHistoryLimit when Limit is not positive.
func (q HistoryQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultHistoryLimit
	}
	return q.Limit
}

// Empty reports whether the range can match nothing (From after To).
func (q HistoryQuery) Empty() bool {
	return q.From != nil && q.To != nil && q.From.After(*q.To)
}

// ParseHistoryQuery builds a query from optional RFC 3339 bounds. ok is
// false when either bound is present but unparseable; callers treat that
// as an empty result rather than an error.
func ParseHistoryQuery(from, to string, limit int) (q HistoryQuery, ok bool) {
	q.Limit = limit
	if from != "" {
		t, err := ParseTimestamp(from)
		if err != nil {
			return HistoryQuery{}, false
		}
		q.From = &t
	}
	if to != "" {
		t, err := ParseTimestamp(to)
		if err != nil {
			return HistoryQuery{}, false
		}
		q.To = &t
	}
	return q, true
}

// HistoryItem is an interruption with its current resolution.
type HistoryItem struct {
	Event *InterruptionEvent `json:"event"`
	// Status is the latest appended resume status; empty while unresolved.
	Status ResumeStatus `json:"resumeStatus,omitempty"`
	// Deadline is the effective due time, honoring a trailing snooze.
	Deadline *time.Time `json:"deadline,omitempty"`
}

// FrequentTrigger is the most used trigger tag in a period.
type FrequentTrigger struct {
	TagID TriggerTagID `json:"tagId"`
	Label string       `json:"label"`
	Count int          `json:"count"`
}

// Summary aggregates a period of interruptions by their current status.
type Summary struct {
	From            time.Time        `json:"from"`
	To              time.Time        `json:"to"`
	Total           int              `json:"total"`
	Resumed         int              `json:"resumed"`
	Snoozed         int              `json:"snoozed"`
	Abandoned       int              `json:"abandoned"`
	Open            int              `json:"open"`
	FrequentTrigger *FrequentTrigger `json:"frequentTrigger,omitempty"`
}
