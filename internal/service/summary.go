package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/repository"
)

// maxSummaryEvents bounds how many interruptions a single summary reads.
const maxSummaryEvents = 10_000

// SummaryService aggregates interruptions per day and per week.
type SummaryService struct {
	repos  *repository.Set
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewSummaryService creates a new summary service. Day and week boundaries
// are computed in loc (time.Local when nil).
func NewSummaryService(repos *repository.Set, loc *time.Location, logger *slog.Logger) *SummaryService {
	if loc == nil {
		loc = time.Local
	}
	return &SummaryService{
		repos:  repos,
		logger: orDiscard(logger),
		loc:    loc,
		now:    time.Now,
	}
}

// Today summarizes interruptions recorded since local midnight.
func (s *SummaryService) Today(ctx context.Context) (*domain.Summary, error) {
	start := startOfDay(s.now().In(s.loc))
	return s.Period(ctx, start, start.AddDate(0, 0, 1).Add(-time.Nanosecond))
}

// Week summarizes the current week. The week starts on the day chosen in
// settings.
func (s *SummaryService) Week(ctx context.Context) (*domain.Summary, error) {
	settings, err := s.repos.Settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	today := startOfDay(s.now().In(s.loc))
	back := (int(today.Weekday()) - int(settings.WeekStart.Weekday()) + 7) % 7
	start := today.AddDate(0, 0, -back)
	return s.Period(ctx, start, start.AddDate(0, 0, 7).Add(-time.Nanosecond))
}

type tagStat struct {
	id       domain.TriggerTagID
	count    int
	lastUsed time.Time
}

// Period summarizes interruptions recorded in [from, to].
func (s *SummaryService) Period(ctx context.Context, from, to time.Time) (*domain.Summary, error) {
	events, err := s.repos.Interruptions.ListByPeriod(ctx, domain.HistoryQuery{
		From:  &from,
		To:    &to,
		Limit: maxSummaryEvents,
	})
	if err != nil {
		return nil, fmt.Errorf("list interruptions: %w", err)
	}

	sum := &domain.Summary{From: from, To: to, Total: len(events)}
	stats := map[domain.TriggerTagID]*tagStat{}

	for _, ev := range events {
		latest, err := s.repos.Resumes.FindLatestByInterruptionID(ctx, ev.ID)
		if err != nil {
			return nil, fmt.Errorf("load resume status for %s: %w", ev.ID, err)
		}
		switch {
		case latest == nil:
			sum.Open++
		case latest.Status == domain.ResumeStatusResumed:
			sum.Resumed++
		case latest.Status == domain.ResumeStatusSnoozed:
			sum.Snoozed++
		case latest.Status == domain.ResumeStatusAbandoned:
			sum.Abandoned++
		}

		for _, tid := range ev.Context.TriggerTagIDs {
			st, ok := stats[tid]
			if !ok {
				st = &tagStat{id: tid}
				stats[tid] = st
			}
			st.count++
			if ev.RecordedAt.After(st.lastUsed) {
				st.lastUsed = ev.RecordedAt
			}
		}
	}

	if len(stats) > 0 {
		ranked := make([]*tagStat, 0, len(stats))
		for _, st := range stats {
			ranked = append(ranked, st)
		}
		slices.SortFunc(ranked, func(a, b *tagStat) int {
			if c := cmp.Compare(b.count, a.count); c != 0 {
				return c
			}
			if c := b.lastUsed.Compare(a.lastUsed); c != 0 {
				return c
			}
			return cmp.Compare(a.id, b.id)
		})

		top := ranked[0]
		label, err := s.label(ctx, top.id)
		if err != nil {
			return nil, err
		}
		sum.FrequentTrigger = &domain.FrequentTrigger{TagID: top.id, Label: label, Count: top.count}
	}

	return sum, nil
}

// label resolves a tag id to its display label: preset, then custom, then
// the id itself for tags whose custom record has been deleted.
func (s *SummaryService) label(ctx context.Context, id domain.TriggerTagID) (string, error) {
	if l, ok := domain.PresetLabel(id); ok {
		return l, nil
	}
	tag, err := s.repos.TriggerTags.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if tag == nil {
		return string(id), nil
	}
	return tag.Label, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
