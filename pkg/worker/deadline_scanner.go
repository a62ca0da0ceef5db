package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/projecta/notifier/internal/scanner"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/metrics"
)

type DeadlineScannerConfig struct {
	StartupDelay        time.Duration
	ScanInterval        time.Duration
	LedgerClearInterval time.Duration
}

// UserSource lists the users that get a scan session.
type UserSource interface {
	ListActiveUserIDs(ctx context.Context) ([]string, error)
}

// SessionFactory builds the session of a newly seen user.
type SessionFactory func(userID string) *scanner.Session

// DeadlineScanner owns one session per active user and drives them all from a
// single goroutine, so scans never overlap.
type DeadlineScanner struct {
	users      UserSource
	newSession SessionFactory
	config     DeadlineScannerConfig
	logger     *logger.Logger
	metrics    *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*scanner.Session
}

func NewDeadlineScanner(
	users UserSource,
	newSession SessionFactory,
	config DeadlineScannerConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *DeadlineScanner {
	// Config validation instead of defaults
	if config.StartupDelay < 0 {
		panic("StartupDelay must not be negative")
	}
	if config.ScanInterval <= 0 {
		panic("ScanInterval must be greater than 0")
	}
	if config.LedgerClearInterval <= 0 {
		panic("LedgerClearInterval must be greater than 0")
	}
	if m == nil {
		m = metrics.New("worker")
	}
	if log == nil {
		log = logger.Nop()
	}

	return &DeadlineScanner{
		users:      users,
		newSession: newSession,
		config:     config,
		logger:     log,
		metrics:    m,
		sessions:   make(map[string]*scanner.Session),
	}
}

// Start blocks until ctx is cancelled. The first scan runs after the startup
// delay, then on every scan tick; ledgers are cleared on their own ticker.
func (p *DeadlineScanner) Start(ctx context.Context) {
	startup := time.NewTimer(p.config.StartupDelay)
	defer startup.Stop()

	clearTicker := time.NewTicker(p.config.LedgerClearInterval)
	defer clearTicker.Stop()

	var scanTicker *time.Ticker
	var scanC <-chan time.Time
	defer func() {
		if scanTicker != nil {
			scanTicker.Stop()
		}
	}()

	p.logger.Info("Starting deadline scanner",
		"scan_interval", p.config.ScanInterval.String(),
		"ledger_clear_interval", p.config.LedgerClearInterval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down deadline scanner")
			return
		case <-startup.C:
			p.RunOnce(ctx)
			scanTicker = time.NewTicker(p.config.ScanInterval)
			scanC = scanTicker.C
		case <-scanC:
			p.RunOnce(ctx)
		case <-clearTicker.C:
			p.ClearLedgers(ctx)
		}
	}
}

// RunOnce refreshes the session set and scans every session in user order.
func (p *DeadlineScanner) RunOnce(ctx context.Context) {
	sessions := p.refreshSessions(ctx)

	for _, s := range sessions {
		if ctx.Err() != nil {
			return
		}
		s.Scan(ctx)
	}
	p.reportLedgerSize(ctx, sessions)
}

// ClearLedgers resets every session's ledger.
func (p *DeadlineScanner) ClearLedgers(ctx context.Context) {
	p.mu.Lock()
	sessions := p.sortedSessions()
	p.mu.Unlock()

	for _, s := range sessions {
		if err := s.ClearLedger(ctx); err != nil {
			p.logger.Error(err, "Failed to clear ledger", "user_id", s.UserID())
		}
	}
	p.metrics.LedgerClears.Inc()
	p.metrics.LedgerEntries.Set(0)
	p.logger.Info("Cleared notification ledgers", "sessions", len(sessions))
}

// Session returns the session of userID, if one exists.
func (p *DeadlineScanner) Session(userID string) (*scanner.Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[userID]
	return s, ok
}

func (p *DeadlineScanner) refreshSessions(ctx context.Context) []*scanner.Session {
	ids, err := p.users.ListActiveUserIDs(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		// keep scanning known users with their ledgers intact
		p.logger.Error(err, "Failed to list active users")
		return p.sortedSessions()
	}

	active := make(map[string]bool, len(ids))
	for _, id := range ids {
		active[id] = true
		if _, ok := p.sessions[id]; !ok {
			p.sessions[id] = p.newSession(id)
		}
	}
	for id := range p.sessions {
		if !active[id] {
			delete(p.sessions, id)
		}
	}

	p.metrics.ActiveSessions.Set(float64(len(p.sessions)))
	return p.sortedSessions()
}

// sortedSessions expects mu to be held.
func (p *DeadlineScanner) sortedSessions() []*scanner.Session {
	out := make([]*scanner.Session, 0, len(p.sessions))
	for _, s := range p.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID() < out[j].UserID() })
	return out
}

func (p *DeadlineScanner) reportLedgerSize(ctx context.Context, sessions []*scanner.Session) {
	total := 0
	for _, s := range sessions {
		n, err := s.Ledger().Len(ctx)
		if err != nil {
			continue
		}
		total += n
	}
	p.metrics.LedgerEntries.Set(float64(total))
}
