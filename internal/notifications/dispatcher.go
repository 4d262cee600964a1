package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
	"github.com/SergeyKozhin/workspace-calendar/internal/redis"
)

const (
	AudienceWorkspace    = "workspace"
	AudienceParticipants = "participants"

	lockKey = "calendar:notifications:dispatch"
)

type Options struct {
	Lookahead time.Duration
	Buffer    time.Duration
	// Audience is AudienceWorkspace (every member of the event's workspace)
	// or AudienceParticipants (organizers and attendees).
	Audience    string
	Concurrency int
	LockTTL     time.Duration
	BaseURL     string
}

func DefaultOptions() Options {
	return Options{
		Lookahead:   60 * time.Minute,
		Buffer:      5 * time.Minute,
		Audience:    AudienceWorkspace,
		Concurrency: 4,
		LockTTL:     5 * time.Minute,
	}
}

type eventsService interface {
	GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Occurrence, error)
}

type membersRepository interface {
	ListMembers(ctx context.Context, q database.Queryable, filter model.MembersFilter) ([]*model.WorkspaceMember, error)
}

type notificationsRepository interface {
	WasSent(ctx context.Context, q database.Queryable, key model.NotificationKey) (bool, error)
	Record(ctx context.Context, q database.Queryable, key model.NotificationKey, sentAt time.Time) (bool, error)
}

var ErrUnknownAudience = errors.New("unknown notification audience")

type locker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (func(context.Context) error, error)
}

// Dispatcher sends at most one "upcoming" notification per event occurrence
// and user. A notification is recorded only after its delivery succeeded, so
// a failed delivery is retried by the next run.
type Dispatcher struct {
	db            database.PGX
	zone          *caltime.Zone
	logger        *zap.SugaredLogger
	events        eventsService
	members       membersRepository
	notifications notificationsRepository
	messenger     Messenger
	locker        locker
	opts          Options
}

// NewDispatcher builds a dispatcher. locker may be nil, then overlapping runs
// are only kept apart by the unique key of the notification ledger. An empty
// audience means AudienceWorkspace, any other unknown value is rejected.
func NewDispatcher(
	db database.PGX,
	zone *caltime.Zone,
	logger *zap.SugaredLogger,
	events eventsService,
	members membersRepository,
	notifications notificationsRepository,
	messenger Messenger,
	locker locker,
	opts Options,
) (*Dispatcher, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	switch opts.Audience {
	case "":
		opts.Audience = AudienceWorkspace
	case AudienceWorkspace, AudienceParticipants:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAudience, opts.Audience)
	}

	return &Dispatcher{
		db:            db,
		zone:          zone,
		logger:        logger,
		events:        events,
		members:       members,
		notifications: notifications,
		messenger:     messenger,
		locker:        locker,
		opts:          opts,
	}, nil
}

// Window returns the notification window [now, now+lookahead+buffer].
func (d *Dispatcher) Window(now time.Time) (time.Time, time.Time) {
	return now, now.Add(d.opts.Lookahead + d.opts.Buffer)
}

type run struct {
	summary *model.RunSummary
	sent    atomic.Int64
	skipped atomic.Int64
	errors  atomic.Int64
	// delivered, then found already recorded by a concurrent run
	duplicates atomic.Int64

	mu sync.Mutex
}

func (r *run) logf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Logs = append(r.summary.Logs, fmt.Sprintf(format, args...))
}

func (d *Dispatcher) Run(ctx context.Context) (*model.RunSummary, error) {
	return d.RunWithID(ctx, uuid.NewString())
}

// RunWithID performs one dispatch run. Failures of single events or users are
// counted in the summary, an error is returned only when the run could not
// look for events at all.
func (d *Dispatcher) RunWithID(ctx context.Context, runID string) (*model.RunSummary, error) {
	now := d.zone.Now()
	r := &run{summary: &model.RunSummary{RunID: runID, StartTime: now}}
	defer d.finish(r)

	if d.locker != nil {
		release, err := d.locker.Acquire(ctx, lockKey, runID, d.opts.LockTTL)
		switch {
		case errors.Is(err, redis.ErrLockHeld):
			r.logf("another dispatch run is in progress, skipping")
			d.logger.Infow("dispatch skipped, lock held", "run_id", runID)
			return r.summary, nil
		case err != nil:
			r.logf("run lock unavailable, continuing without it: %v", err)
			d.logger.Warnw("dispatch lock unavailable", "run_id", runID, "err", err)
		default:
			defer func() {
				if err := release(context.Background()); err != nil {
					d.logger.Warnw("failed to release dispatch lock", "run_id", runID, "err", err)
				}
			}()
		}
	}

	from, to := d.Window(now)
	r.logf("window %s to %s (%s)", from.Format(time.RFC3339), to.Format(time.RFC3339), d.zone.Name())

	// To is exclusive in the filter while the window end is inclusive
	occurrences, err := d.events.GetEvents(ctx, model.EventsFilter{From: from, To: to.Add(time.Nanosecond)})
	if err != nil {
		r.logf("failed to load events: %v", err)
		return nil, fmt.Errorf("get events: %w", err)
	}

	var upcoming []*model.Occurrence
	for _, o := range occurrences {
		if InWindow(o.StartsAt, from, to) {
			upcoming = append(upcoming, o)
		}
	}
	r.summary.EventsFound = len(upcoming)
	r.logf("found %d upcoming events", len(upcoming))

	members := d.loadMembers(ctx, r, upcoming)

	g := &errgroup.Group{}
	g.SetLimit(d.opts.Concurrency)
	for _, o := range upcoming {
		o := o
		g.Go(func() error {
			d.processOccurrence(ctx, r, o, members)
			return nil
		})
	}
	_ = g.Wait()

	return r.summary, nil
}

// InWindow reports whether start lies in [from, to], both ends included.
func InWindow(start, from, to time.Time) bool {
	return !start.Before(from) && !start.After(to)
}

func (d *Dispatcher) finish(r *run) {
	s := r.summary
	s.NotificationsSent = int(r.sent.Load())
	s.Skipped = int(r.skipped.Load())
	s.Duplicates = int(r.duplicates.Load())
	s.Errors = int(r.errors.Load())
	s.EndTime = d.zone.Now()
	s.ExecutionTimeMs = s.EndTime.Sub(s.StartTime).Milliseconds()

	d.logger.Infow("dispatch run finished",
		"run_id", s.RunID,
		"events_found", s.EventsFound,
		"sent", s.NotificationsSent,
		"skipped", s.Skipped,
		"duplicates", s.Duplicates,
		"errors", s.Errors,
		"execution_ms", s.ExecutionTimeMs,
	)
}

// loadMembers reads the members of every workspace with an upcoming event.
// A workspace that fails to load is left out, its events count as errors.
func (d *Dispatcher) loadMembers(ctx context.Context, r *run, occurrences []*model.Occurrence) map[int64][]*model.WorkspaceMember {
	res := make(map[int64][]*model.WorkspaceMember)

	for _, o := range occurrences {
		wsID := o.Event.WorkspaceID
		if _, ok := res[wsID]; ok {
			continue
		}

		members, err := d.members.ListMembers(ctx, d.db, model.MembersFilter{WorkspaceID: wsID})
		if err != nil {
			r.logf("failed to load members of workspace %d: %v", wsID, err)
			d.logger.Errorw("failed to load workspace members", "workspace_id", wsID, "err", err)
			continue
		}
		res[wsID] = members
	}

	return res
}

func (d *Dispatcher) recipients(e *model.Event, members []*model.WorkspaceMember) []*model.WorkspaceMember {
	if d.opts.Audience != AudienceParticipants {
		return members
	}

	byID := make(map[int64]*model.WorkspaceMember, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}

	var res []*model.WorkspaceMember
	for _, id := range e.Participants() {
		if m, ok := byID[id]; ok {
			res = append(res, m)
		}
	}
	return res
}

func (d *Dispatcher) processOccurrence(ctx context.Context, r *run, o *model.Occurrence, members map[int64][]*model.WorkspaceMember) {
	e := o.Event

	wsMembers, ok := members[e.WorkspaceID]
	if !ok {
		r.errors.Inc()
		r.logf("event %d: workspace %d members unavailable", e.ID, e.WorkspaceID)
		return
	}

	for _, m := range d.recipients(e, wsMembers) {
		if ctx.Err() != nil {
			r.errors.Inc()
			r.logf("event %d: run cancelled: %v", e.ID, ctx.Err())
			return
		}
		d.notify(ctx, r, o, m)
	}
}

// notify checks, delivers and records one notification. The steps for one
// (event, user) pair always run in this order within a run.
func (d *Dispatcher) notify(ctx context.Context, r *run, o *model.Occurrence, m *model.WorkspaceMember) {
	e := o.Event
	key := model.NotificationKey{
		EventID:    e.ID,
		UserID:     m.UserID,
		Type:       model.NotificationUpcoming,
		Occurrence: o.Date,
	}

	sent, err := d.notifications.WasSent(ctx, d.db, key)
	if err != nil {
		r.errors.Inc()
		r.logf("event %d user %d: check failed: %v", e.ID, m.UserID, err)
		d.logger.Errorw("failed to check notification", "event_id", e.ID, "user_id", m.UserID, "err", err)
		return
	}
	if sent {
		r.skipped.Inc()
		return
	}

	msg := buildMessage(d.zone, d.opts.BaseURL, o, m)
	if err := d.messenger.Send(ctx, msg); err != nil {
		r.errors.Inc()
		r.logf("event %d user %d: delivery failed: %v", e.ID, m.UserID, err)
		d.logger.Errorw("failed to deliver notification", "event_id", e.ID, "user_id", m.UserID, "err", err)
		return
	}

	inserted, err := d.notifications.Record(ctx, d.db, key, d.zone.Now())
	if err != nil {
		r.errors.Inc()
		r.logf("event %d user %d: delivered but not recorded: %v", e.ID, m.UserID, err)
		d.logger.Errorw("failed to record notification", "event_id", e.ID, "user_id", m.UserID, "err", err)
		return
	}
	if !inserted {
		// a concurrent run recorded it first, the user got it twice
		r.duplicates.Inc()
		r.logf("event %d user %d: duplicate delivery, already recorded by another run", e.ID, m.UserID)
		d.logger.Warnw("duplicate notification delivered", "event_id", e.ID, "user_id", m.UserID, "occurrence", o.Date.String())
		return
	}

	r.sent.Inc()
	r.logf("event %d user %d: sent %q", e.ID, m.UserID, msg.Subject)
}
