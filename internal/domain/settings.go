package domain

import "time"

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// WeekStart is the first day of a summary week.
type WeekStart string

const (
	WeekStartSunday WeekStart = "sunday"
	WeekStartMonday WeekStart = "monday"
)

// Weekday converts to time.Weekday.
func (w WeekStart) Weekday() time.Weekday {
	if w == WeekStartMonday {
		return time.Monday
	}
	return time.Sunday
}

// Settings are the user's application preferences.
type Settings struct {
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	AnalyticsOptIn       bool      `json:"analyticsOptIn"`
	Theme                Theme     `json:"theme" validate:"omitempty,oneof=light dark system"`
	Language             string    `json:"language,omitempty" validate:"omitempty,max=16,langtag"`
	WeekStart            WeekStart `json:"weekStart" validate:"omitempty,oneof=sunday monday"`
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled: true,
		AnalyticsOptIn:       false,
		Theme:                ThemeLight,
		WeekStart:            WeekStartSunday,
	}
}

// SettingsPatch carries a partial settings change. Nil fields are left alone.
type SettingsPatch struct {
	NotificationsEnabled *bool      `json:"notificationsEnabled,omitempty"`
	AnalyticsOptIn       *bool      `json:"analyticsOptIn,omitempty"`
	Theme                *Theme     `json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
	Language             *string    `json:"language,omitempty" validate:"omitempty,max=16,langtag"`
	WeekStart            *WeekStart `json:"weekStart,omitempty" validate:"omitempty,oneof=sunday monday"`
}

// Apply returns s with the patch applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.AnalyticsOptIn != nil {
		s.AnalyticsOptIn = *p.AnalyticsOptIn
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.WeekStart != nil {
		s.WeekStart = *p.WeekStart
	}
	return s
}
