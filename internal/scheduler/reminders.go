package scheduler

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const deliveryTimeout = 30 * time.Second

// Notifier delivers a reminder to its recipient.
type Notifier interface {
	SendReminder(ctx context.Context, reminder models.Reminder) error
}

// LogNotifier only logs reminders. It stands in when no messaging channel is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) SendReminder(ctx context.Context, reminder models.Reminder) error {
	if n.Logger != nil {
		n.Logger.Info("reminder due",
			zap.String("tag", reminder.Tag),
			zap.String("to", reminder.To),
			zap.String("body", reminder.Body))
	}
	return nil
}

// Handle identifies a pending reminder. Zero means nothing is pending, either
// because the reminder was delivered immediately or was already delivered.
type Handle = cron.EntryID

// onceAt is a cron.Schedule that activates a single time.
type onceAt time.Time

func (o onceAt) Next(t time.Time) time.Time {
	at := time.Time(o)
	if t.Before(at) {
		return at
	}
	return time.Time{}
}

// Reminders schedules one-shot notifications on a cron instance. A reminder
// replaces any pending one with the same tag, and a tag is delivered at most
// once per fire instant.
type Reminders struct {
	cron      *cron.Cron
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
	mu        sync.Mutex
	pending   map[string]cron.EntryID
	delivered map[string]time.Time
}

// NewReminders wires reminders onto c. The caller starts and stops c.
func NewReminders(c *cron.Cron, notifier Notifier, logger *zap.Logger) *Reminders {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reminders{
		cron:      c,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		pending:   make(map[string]cron.EntryID),
		delivered: make(map[string]time.Time),
	}
}

// ScheduleReminder arranges delivery at reminder.FireAt. A fire instant that is
// not in the future is delivered right away.
func (r *Reminders) ScheduleReminder(reminder models.Reminder) (Handle, error) {
	if reminder.Tag == "" {
		return 0, errors.New("reminder tag must not be empty")
	}
	if reminder.To == "" {
		return 0, errors.New("reminder recipient must not be empty")
	}

	r.mu.Lock()
	if at, ok := r.delivered[reminder.Tag]; ok && at.Equal(reminder.FireAt) {
		r.mu.Unlock()
		return 0, nil
	}
	if id, ok := r.pending[reminder.Tag]; ok {
		r.cron.Remove(id)
		delete(r.pending, reminder.Tag)
	}

	if !reminder.FireAt.After(r.now()) {
		r.delivered[reminder.Tag] = reminder.FireAt
		r.mu.Unlock()
		r.deliver(reminder)
		return 0, nil
	}

	var id cron.EntryID
	id = r.cron.Schedule(onceAt(reminder.FireAt), cron.FuncJob(func() {
		r.fire(&id, reminder)
	}))
	r.pending[reminder.Tag] = id
	r.mu.Unlock()

	r.logger.Debug("reminder scheduled", zap.String("tag", reminder.Tag), zap.Time("fire_at", reminder.FireAt))
	return id, nil
}

// Cancel drops the pending reminder for tag, if any.
func (r *Reminders) Cancel(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.pending[tag]; ok {
		r.cron.Remove(id)
		delete(r.pending, tag)
	}
}

// Pending reports the number of reminders waiting to fire.
func (r *Reminders) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// PendingTags lists the tags of pending reminders starting with prefix, sorted.
func (r *Reminders) PendingTags(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tags := make([]string, 0, len(r.pending))
	for tag := range r.pending {
		if strings.HasPrefix(tag, prefix) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// fire reads id under the lock since the job may start before Schedule returns.
func (r *Reminders) fire(idp *cron.EntryID, reminder models.Reminder) {
	r.mu.Lock()
	id := *idp
	current, ok := r.pending[reminder.Tag]
	if !ok || current != id {
		r.mu.Unlock()
		return
	}
	delete(r.pending, reminder.Tag)
	r.delivered[reminder.Tag] = reminder.FireAt
	r.cron.Remove(id)
	r.mu.Unlock()

	r.deliver(reminder)
}

func (r *Reminders) deliver(reminder models.Reminder) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := r.notifier.SendReminder(ctx, reminder); err != nil {
		r.logger.Error("failed to deliver reminder", zap.String("tag", reminder.Tag), zap.Error(err))
		return
	}
	r.logger.Info("reminder delivered", zap.String("tag", reminder.Tag))
}
