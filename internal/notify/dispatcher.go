package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/submission"
	"github.com/kartsetup/setupsheet/internal/team"
)

// Options configures a Dispatcher.
type Options struct {
	Workers      int
	QueueSize    int
	Timeout      time.Duration
	ManagerEmail string // global fallback recipient
	DashboardURL string
}

type job struct {
	team       *team.Team
	user       *auth.User
	submission *submission.Submission
}

// Dispatcher delivers submission notifications in the background. Delivery is
// best effort: each message is attempted once and failures are only logged.
type Dispatcher struct {
	users  auth.UserRepository
	mailer Mailer
	opts   Options
	jobs   chan job
}

// NewDispatcher creates a new Dispatcher. Call Start to begin delivery.
func NewDispatcher(users auth.UserRepository, mailer Mailer, opts Options) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Dispatcher{
		users:  users,
		mailer: mailer,
		opts:   opts,
		jobs:   make(chan job, opts.QueueSize),
	}
}

// Notify queues a notification for a new submission. It never blocks; when
// the queue is full the notification is dropped.
func (d *Dispatcher) Notify(t *team.Team, u *auth.User, s *submission.Submission) {
	select {
	case d.jobs <- job{team: t, user: u, submission: s}:
	default:
		slog.Warn("notification queue full, dropping notification",
			"team", t.Slug,
			"submissionId", s.ID,
		)
	}
}

// Start runs the workers. It blocks until ctx is cancelled and every worker
// has returned. Jobs still queued at that point are discarded.
func (d *Dispatcher) Start(ctx context.Context) {
	slog.Info("notification dispatcher started", "workers", d.opts.Workers)

	var wg sync.WaitGroup
	for range d.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()

	slog.Info("notification dispatcher stopped")
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			d.deliver(ctx, j)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	recipients, err := Recipients(ctx, d.users, j.team, d.opts.ManagerEmail)
	if err != nil {
		d.fail(err, j, "")
		return
	}
	if len(recipients) == 0 {
		slog.Info("no notification recipients configured", "team", j.team.Slug, "submissionId", j.submission.ID)
		return
	}

	body, err := Render(j.team, j.user, j.submission, d.opts.DashboardURL)
	if err != nil {
		d.fail(err, j, "")
		return
	}
	subject := Subject(j.user, j.submission)

	for _, to := range recipients {
		msg := Message{
			FromName: j.team.EmailFromName,
			To:       to,
			Subject:  subject,
			HTML:     body,
		}
		if err := d.mailer.Send(ctx, msg); err != nil {
			d.fail(err, j, to)
			continue
		}
		slog.Info("notification sent", "team", j.team.Slug, "submissionId", j.submission.ID, "to", to)
	}
}

func (d *Dispatcher) fail(err error, j job, recipient string) {
	slog.Error("notification failed",
		"team", j.team.Slug,
		"submissionId", j.submission.ID,
		"to", recipient,
		"error", err,
	)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "notify")
		scope.SetTag("team", j.team.Slug)
		scope.SetExtra("submissionId", j.submission.ID.String())
		if recipient != "" {
			scope.SetExtra("recipient", recipient)
		}
		sentry.CaptureException(err)
	})
}
