package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/projecta/notifier/internal/ledger"
	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/service/settings"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/metrics"
)

type ProjectSource interface {
	ListForUser(ctx context.Context, userID string) ([]*model.Project, error)
}

type SettingsSource interface {
	GetSettings(ctx context.Context, userID string) *model.NotificationSettings
}

// Notifier emits reminders. Implementations must not fail the caller.
type Notifier interface {
	NotifyTaskDeadline(ctx context.Context, userID string, project *model.Project, task *model.Task, daysLeft int)
	NotifyOverdueTask(ctx context.Context, userID string, project *model.Project, task *model.Task, daysOverdue int)
}

type Config struct {
	Location   *time.Location
	Milestones []int
	Now        func() time.Time
}

// Session scans one user's projects. A session is not safe for concurrent Scan
// calls; the runner drives all sessions from a single goroutine.
type Session struct {
	userID   string
	projects ProjectSource
	settings SettingsSource
	notifier Notifier
	ledger   ledger.Ledger
	config   Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

type Result struct {
	Tasks      int
	Emitted    int
	Suppressed int
	Failed     int
}

func NewSession(
	userID string,
	projects ProjectSource,
	settingsSrc SettingsSource,
	notifier Notifier,
	l ledger.Ledger,
	config Config,
	log *logger.Logger,
	m *metrics.Metrics,
) *Session {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Milestones == nil {
		config.Milestones = DefaultOverdueMilestones
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if m == nil {
		m = metrics.New("scanner")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		userID:   userID,
		projects: projects,
		settings: settingsSrc,
		notifier: notifier,
		ledger:   l,
		config:   config,
		logger:   log.With("user_id", userID),
		metrics:  m,
	}
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) Ledger() ledger.Ledger {
	return s.ledger
}

// Scan walks every task the user can see and emits what is due today.
func (s *Session) Scan(ctx context.Context) Result {
	timer := prometheus.NewTimer(s.metrics.ScanDuration)
	defer timer.ObserveDuration()

	var res Result
	today := s.config.Now().In(s.config.Location)

	projects, err := s.projects.ListForUser(ctx, s.userID)
	if err != nil {
		s.logger.Error(err, "Failed to fetch projects for scan")
		s.metrics.ScanRuns.WithLabelValues("fetch_error").Inc()
		return res
	}

	st := s.settings.GetSettings(ctx, s.userID)
	quiet := settings.InQuietHours(st, today)

	for _, project := range projects {
		for i := range project.Tasks {
			if ctx.Err() != nil {
				s.metrics.ScanRuns.WithLabelValues("cancelled").Inc()
				return res
			}
			res.Tasks++
			switch s.processTask(ctx, project, &project.Tasks[i], today, st, quiet) {
			case outcomeEmitted:
				res.Emitted++
			case outcomeSuppressed:
				res.Suppressed++
			case outcomeFailed:
				res.Failed++
			}
		}
	}

	s.metrics.TasksScanned.Add(float64(res.Tasks))
	s.metrics.ScanRuns.WithLabelValues("success").Inc()
	s.logger.Debug("Scan finished",
		"tasks", res.Tasks,
		"emitted", res.Emitted,
		"suppressed", res.Suppressed,
		"failed", res.Failed)
	return res
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeEmitted
	outcomeSuppressed
	outcomeFailed
)

func (s *Session) processTask(
	ctx context.Context,
	project *model.Project,
	task *model.Task,
	today time.Time,
	st *model.NotificationSettings,
	quiet bool,
) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(fmt.Errorf("panic: %v", r), "Task scan failed",
				"project_id", project.ID,
				"task_id", task.ID)
			out = outcomeFailed
		}
	}()

	decision := Classify(task, today, st, s.config.Milestones)
	if decision.Kind == KindNone {
		return outcomeNone
	}

	notificationType := model.NotificationTaskDeadline
	kind, extra := ledger.KindDeadline, decision.DaysLeft
	if decision.Kind == KindOverdue {
		notificationType = model.NotificationOverdueTask
		kind, extra = ledger.KindOverdue, decision.DaysOverdue
	}

	if quiet {
		s.metrics.NotificationsSuppressed.WithLabelValues(string(notificationType), "quiet_hours").Inc()
		return outcomeSuppressed
	}

	key := ledger.Key(kind, project.ID+"/"+task.ID, today, extra)
	seen, err := s.ledger.Has(ctx, key)
	if err != nil {
		s.logger.Error(err, "Ledger lookup failed, skipping task", "key", key)
		return outcomeFailed
	}
	if seen {
		s.metrics.NotificationsSuppressed.WithLabelValues(string(notificationType), "already_notified").Inc()
		return outcomeSuppressed
	}

	switch decision.Kind {
	case KindApproaching:
		s.notifier.NotifyTaskDeadline(ctx, s.userID, project, task, decision.DaysLeft)
	case KindOverdue:
		s.notifier.NotifyOverdueTask(ctx, s.userID, project, task, decision.DaysOverdue)
	}

	if err := s.ledger.Add(ctx, key); err != nil {
		s.logger.Error(err, "Failed to record ledger key", "key", key)
	}
	return outcomeEmitted
}

// ClearLedger drops every key of this session.
func (s *Session) ClearLedger(ctx context.Context) error {
	return s.ledger.Clear(ctx)
}
