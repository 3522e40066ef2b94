package outreach

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/poiesic/facultyhub/core"
)

// DefaultReminderInterval is how often the reminder checks for due follow-ups.
const DefaultReminderInterval = time.Hour

// ErrReminderRunning is returned by Start on a running reminder.
var ErrReminderRunning = errors.New("reminder already running")

// NotifyFunc receives follow-ups that became due since the last check.
type NotifyFunc func(ctx context.Context, due []*core.Interaction)

// Reminder periodically reports follow-ups that are due. Each interaction
// is reported once per Reminder.
type Reminder struct {
	log      *Log
	interval time.Duration
	notify   NotifyFunc
	logger   *slog.Logger

	mu        sync.Mutex
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
	reported  map[core.ID]struct{}
}

// ReminderOption configures a Reminder.
type ReminderOption func(*Reminder)

// WithNotifier replaces the default notifier, which logs each follow-up.
func WithNotifier(notify NotifyFunc) ReminderOption {
	return func(r *Reminder) {
		if notify != nil {
			r.notify = notify
		}
	}
}

// WithReminderLogger sets the logger.
func WithReminderLogger(logger *slog.Logger) ReminderOption {
	return func(r *Reminder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReminder creates a reminder that checks log every interval.
func NewReminder(log *Log, interval time.Duration, opts ...ReminderOption) (*Reminder, error) {
	if log == nil {
		return nil, ErrLogRequired
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	r := &Reminder{
		log:      log,
		interval: interval,
		logger:   slog.Default().With("component", "reminder"),
		reported: make(map[core.ID]struct{}),
	}
	r.notify = r.logDue
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Start schedules checks in the background, the first one immediately.
// Checks stop when ctx is done or Stop is called.
func (r *Reminder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scheduler != nil {
		return ErrReminderRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if _, err := s.Every(r.interval).Tag("followups").Do(func() {
		if _, err := r.Check(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("follow-up check failed", "err", err)
		}
	}); err != nil {
		cancel()
		return err
	}

	s.StartAsync()
	r.scheduler = s
	r.cancel = cancel
	r.logger.Info("reminder started", "interval", r.interval)
	return nil
}

// Stop halts scheduled checks. It is safe to call on a stopped reminder.
func (r *Reminder) Stop() {
	r.mu.Lock()
	s, cancel := r.scheduler, r.cancel
	r.scheduler, r.cancel = nil, nil
	r.mu.Unlock()

	if s == nil {
		return
	}
	// A running check needs r.mu, so the scheduler is stopped unlocked.
	cancel()
	s.Stop()
	r.logger.Info("reminder stopped")
}

// Check runs one pass and returns how many new follow-ups were reported.
func (r *Reminder) Check(ctx context.Context) (int, error) {
	due, err := r.log.Due(ctx)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	fresh := make([]*core.Interaction, 0, len(due))
	for _, i := range due {
		if _, seen := r.reported[i.Id]; seen {
			continue
		}
		r.reported[i.Id] = struct{}{}
		fresh = append(fresh, i)
	}
	r.mu.Unlock()

	if len(fresh) > 0 {
		r.notify(ctx, fresh)
	}
	return len(fresh), nil
}

func (r *Reminder) logDue(_ context.Context, due []*core.Interaction) {
	for _, i := range due {
		r.logger.Info("follow-up due",
			"id", i.Id,
			"professor", i.ProfessorName,
			"email", i.ProfessorEmail,
			"sentAt", i.SentAt,
			"followupAt", i.FollowupAt)
	}
}
