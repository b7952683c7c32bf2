package domain

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/pausememo/pausememo/internal/errors"
)

// Preset trigger tags.
const (
	TagFatigue      TriggerTagID = "fatigue"
	TagHunger       TriggerTagID = "hunger"
	TagSleepy       TriggerTagID = "sleepy"
	TagBlocked      TriggerTagID = "blocked"
	TagSNS          TriggerTagID = "sns"
	TagNotification TriggerTagID = "notification"
	TagPerson       TriggerTagID = "person"
	TagNoise        TriggerTagID = "noise"
)

// TriggerTag is a tag as chosen by the user: an id plus the label shown.
type TriggerTag struct {
	ID    TriggerTagID `json:"id"`
	Label string       `json:"label"`
}

var presetTriggerTags = []TriggerTag{
	{ID: TagFatigue, Label: "Fatigue"},
	{ID: TagHunger, Label: "Hunger"},
	{ID: TagSleepy, Label: "Sleepy"},
	{ID: TagBlocked, Label: "Blocked"},
	{ID: TagSNS, Label: "Social media"},
	{ID: TagNotification, Label: "Notification"},
	{ID: TagPerson, Label: "Someone"},
	{ID: TagNoise, Label: "Noise"},
}

// PresetTriggerTags returns the fixed preset tags in display order.
func PresetTriggerTags() []TriggerTag {
	return slices.Clone(presetTriggerTags)
}

// IsPresetTriggerTag reports whether tid names a preset tag.
func IsPresetTriggerTag(tid TriggerTagID) bool {
	return slices.ContainsFunc(presetTriggerTags, func(t TriggerTag) bool { return t.ID == tid })
}

// PresetLabel returns the display label of a preset tag.
func PresetLabel(tid TriggerTagID) (string, bool) {
	for _, t := range presetTriggerTags {
		if t.ID == tid {
			return t.Label, true
		}
	}
	return "", false
}

// CustomTriggerTag is a user-defined tag with usage statistics.
type CustomTriggerTag struct {
	ID         TriggerTagID `json:"id"`
	Label      string       `json:"label"`
	CreatedAt  time.Time    `json:"createdAt"`
	LastUsedAt time.Time    `json:"lastUsedAt"`
	UsageCount int          `json:"usageCount"`
}

// TriggerTagIDFromLabel derives a tag id from free text: Unicode NFKC,
// trimmed, lowercased, internal whitespace collapsed to single spaces.
// Labels that differ only in those respects share an id.
func TriggerTagIDFromLabel(label string) TriggerTagID {
	s := norm.NFKC.String(label)
	s = cases.Lower(language.Und).String(s)
	return TriggerTagID(strings.Join(strings.Fields(s), " "))
}

// NewTriggerTag builds a tag from user input.
func NewTriggerTag(label string) (TriggerTag, error) {
	label = strings.TrimSpace(label)
	tid := TriggerTagIDFromLabel(label)
	if tid == "" {
		return TriggerTag{}, errors.InvalidArgument("trigger tag label must not be blank")
	}
	if preset, ok := PresetLabel(tid); ok {
		return TriggerTag{ID: tid, Label: preset}, nil
	}
	return TriggerTag{ID: tid, Label: label}, nil
}
