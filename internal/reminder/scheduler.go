// Package reminder is the in-process implementation of the notification
// ports: a timer scheduler whose pending reminders survive restarts, the
// deliverers that surface a due reminder, and permission gates.
package reminder

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/id"
	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/store"
)

// defaultRescanInterval is how often Start's loop picks up reminders written
// to the backend by another process, such as pmctl on a shared sqlite file.
const defaultRescanInterval = 30 * time.Second

// Deliverer surfaces a reminder that has come due.
type Deliverer interface {
	Deliver(ctx context.Context, r notification.Scheduled) error
}

// Scheduler implements notification.Scheduler with one timer per pending
// reminder. Pending reminders are persisted in the backend; Start re-arms
// them and delivers any that fell due while the process was down.
type Scheduler struct {
	backend    store.Backend
	key        string
	deliverers []Deliverer
	logger     *slog.Logger
	now        func() time.Time
	rescan     time.Duration

	mu     sync.Mutex
	timers map[domain.NotificationID]*time.Timer
	closed bool

	// ctx scopes deliveries; Stop cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

var _ notification.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a Scheduler persisting under keys.ScheduledReminders().
func NewScheduler(backend store.Backend, keys store.Keyspace, logger *slog.Logger, deliverers ...Deliverer) (*Scheduler, error) {
	if backend == nil {
		return nil, errors.NotInitialized("reminder scheduler backend")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		backend:    backend,
		key:        keys.ScheduledReminders(),
		deliverers: deliverers,
		logger:     logger.With("component", "reminder"),
		now:        time.Now,
		rescan:     defaultRescanInterval,
		timers:     make(map[domain.NotificationID]*time.Timer),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start arms a timer for every persisted reminder, firing overdue ones right
// away, then keeps rescanning the backend until Stop so reminders written by
// other processes are armed too.
func (s *Scheduler) Start(ctx context.Context) error {
	armed, overdue, err := s.sync(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("reminder scheduler started", "pending", armed, "overdue", overdue)

	if s.rescan > 0 {
		go s.rescanLoop()
	}
	return nil
}

func (s *Scheduler) rescanLoop() {
	ticker := time.NewTicker(s.rescan)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			armed, _, err := s.sync(s.ctx)
			if err != nil {
				if s.ctx.Err() == nil {
					s.logger.Warn("reminder rescan failed", "error", err)
				}
				continue
			}
			if armed > 0 {
				s.logger.Info("armed reminders found on rescan", "count", armed)
			}
		}
	}
}

// sync arms persisted reminders that have no timer yet. It returns how many it
// armed and how many of those were already due. Timers whose reminder was
// removed elsewhere stay armed; fire finds nothing to claim and drops them.
func (s *Scheduler) sync(ctx context.Context) (armed, overdue int, err error) {
	pending, err := store.LoadMap[notification.Scheduled](ctx, s.backend, s.key)
	if err != nil {
		return 0, 0, err
	}

	s.mu.Lock()
	var fresh []notification.Scheduled
	for _, r := range pending {
		if _, ok := s.timers[r.ID]; !ok {
			fresh = append(fresh, r)
		}
	}
	s.mu.Unlock()

	now := s.now()
	for _, r := range fresh {
		if !r.TriggerAt.After(now) {
			overdue++
		}
		s.arm(r.ID, r.TriggerAt)
	}
	return len(fresh), overdue, nil
}

// Stop disarms every timer and cancels in-flight deliveries. Persisted
// reminders stay in the backend for the next Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, t := range s.timers {
		t.Stop()
	}
	clear(s.timers)
	s.cancel()
}

// Schedule persists req and arms its timer.
func (s *Scheduler) Schedule(ctx context.Context, req notification.Request) (domain.NotificationID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !req.TriggerAt.After(s.now()) {
		return "", errors.InvalidArgumentf("trigger time %s is not in the future", domain.FormatTimestamp(req.TriggerAt))
	}

	raw, err := id.Generate("ntf")
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "generate notification id")
	}
	nid := domain.NotificationID(raw)

	r := notification.Scheduled{ID: nid, Request: req}
	r.TriggerAt = req.TriggerAt.UTC()
	r.Data = maps.Clone(req.Data)

	if err := store.UpdateMap(ctx, s.backend, s.key, func(m map[string]notification.Scheduled) error {
		m[string(nid)] = r
		return nil
	}); err != nil {
		return "", err
	}

	s.arm(nid, r.TriggerAt)
	s.logger.Debug("reminder scheduled", "notification_id", nid, "trigger_at", r.TriggerAt)
	return nid, nil
}

// Cancel disarms and forgets id. Unknown ids are ignored.
func (s *Scheduler) Cancel(ctx context.Context, nid domain.NotificationID) error {
	s.mu.Lock()
	if t, ok := s.timers[nid]; ok {
		t.Stop()
		delete(s.timers, nid)
	}
	s.mu.Unlock()

	return store.UpdateMap(ctx, s.backend, s.key, func(m map[string]notification.Scheduled) error {
		if _, ok := m[string(nid)]; !ok {
			return store.ErrSkipWrite
		}
		delete(m, string(nid))
		return nil
	})
}

// ListScheduled returns pending reminders, earliest first.
func (s *Scheduler) ListScheduled(ctx context.Context) ([]notification.Scheduled, error) {
	pending, err := store.LoadMap[notification.Scheduled](ctx, s.backend, s.key)
	if err != nil {
		return nil, err
	}

	out := slices.Collect(maps.Values(pending))
	slices.SortFunc(out, func(a, b notification.Scheduled) int {
		if c := a.TriggerAt.Compare(b.TriggerAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Scheduler) arm(nid domain.NotificationID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if old, ok := s.timers[nid]; ok {
		old.Stop()
	}
	d := max(at.Sub(s.now()), 0)
	s.timers[nid] = time.AfterFunc(d, func() { s.fire(nid) })
}

// fire claims the reminder from the backend and hands it to every deliverer.
// A reminder cancelled in the meantime is no longer in the backend and is
// silently dropped.
func (s *Scheduler) fire(nid domain.NotificationID) {
	s.mu.Lock()
	delete(s.timers, nid)
	s.mu.Unlock()

	ctx := s.ctx
	var due *notification.Scheduled
	err := store.UpdateMap(ctx, s.backend, s.key, func(m map[string]notification.Scheduled) error {
		r, ok := m[string(nid)]
		if !ok {
			due = nil
			return store.ErrSkipWrite
		}
		due = &r
		delete(m, string(nid))
		return nil
	})
	if err != nil {
		s.logger.Error("failed to claim due reminder", "notification_id", nid, "error", err)
		return
	}
	if due == nil {
		return
	}

	for _, d := range s.deliverers {
		if err := d.Deliver(ctx, *due); err != nil {
			s.logger.Warn("reminder delivery failed",
				"notification_id", nid,
				"interruption_id", due.InterruptionID(),
				"error", err,
			)
		}
	}
	s.logger.Info("reminder delivered",
		"notification_id", nid,
		"interruption_id", due.InterruptionID(),
	)
}
