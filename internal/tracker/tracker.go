package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/draft"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var ErrInvalidSession = errors.New("bounty id and match id are required")

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePolling Phase = "polling"
)

const (
	DefaultPollInterval   = 2 * time.Second
	DefaultFetchTimeout   = 10 * time.Second
	DefaultPublishTimeout = 2 * time.Second
)

// Fetcher is the upstream match-stats source.
type Fetcher interface {
	FetchMatchStats(ctx context.Context, bountyID, matchID string) (any, error)
}

// Publisher receives every snapshot after it has been published.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

type Session struct {
	BountyID string `json:"bounty_id"`
	MatchID  string `json:"match_id"`
}

// Snapshot is one published generation: the state and the diff that produced
// it always travel together.
type Snapshot struct {
	Version  int         `json:"version"`
	Session  Session     `json:"session"`
	State    draft.State `json:"state"`
	Diff     draft.Diff  `json:"diff"`
	PolledAt time.Time   `json:"polled_at"`
}

type Config struct {
	PollInterval   time.Duration
	FetchTimeout   time.Duration
	PublishTimeout time.Duration
}

// Tracker owns the tracked session and the current/previous draft pair. The
// periodic loop is the only regular writer; SetSession runs one extra cycle
// inline.
type Tracker struct {
	fetcher    Fetcher
	resolver   draft.Resolver
	cfg        Config
	log        *zap.Logger
	now        func() time.Time
	publishers []Publisher

	// one cycle in flight at a time
	cycle *semaphore.Weighted

	mu       sync.RWMutex
	session  *Session
	current  draft.State
	previous *draft.State
	diff     draft.Diff
	version  int
	polledAt time.Time
}

func New(fetcher Fetcher, resolver draft.Resolver, cfg Config, log *zap.Logger) *Tracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Tracker{
		fetcher:  fetcher,
		resolver: resolver,
		cfg:      cfg,
		log:      log.Named("tracker"),
		now:      time.Now,
		cycle:    semaphore.NewWeighted(1),
		current:  draft.NewEmptyState(),
		diff:     draft.NewEmptyDiff(),
	}
}

// AddPublisher registers a sink. Call before Run.
func (t *Tracker) AddPublisher(p ...Publisher) {
	t.publishers = append(t.publishers, p...)
}

// Run ticks on the configured interval until ctx is done. Each tick runs in
// its own goroutine so a slow fetch doesn't shift the cadence; overlapping
// ticks are skipped by Tick itself.
func (t *Tracker) Run(ctx context.Context) {
	t.log.Info("starting poll loop", zap.Duration("interval", t.cfg.PollInterval))

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("stopping poll loop")
			return
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				t.Tick(ctx)
			}()
		}
	}
}

// Tick runs one fetch/normalize/diff/publish cycle. It never returns an
// error: failures are logged and the last published snapshot stays put.
func (t *Tracker) Tick(ctx context.Context) {
	sess, ok := t.Session()
	if !ok {
		return
	}

	if !t.cycle.TryAcquire(1) {
		t.log.Debug("previous cycle still running, skipping tick")
		return
	}
	defer t.cycle.Release(1)

	if _, err := t.runCycle(ctx, sess); err != nil {
		t.log.Warn("poll cycle failed",
			zap.String("bounty_id", sess.BountyID),
			zap.String("match_id", sess.MatchID),
			zap.Error(err))
	}
}

// SetSession switches the tracked match and refreshes immediately. It waits
// for an in-flight tick rather than skipping. A failed fetch is logged, not
// returned; the caller gets whatever snapshot is current afterwards.
func (t *Tracker) SetSession(ctx context.Context, bountyID, matchID string) (Snapshot, error) {
	sess := Session{BountyID: strings.TrimSpace(bountyID), MatchID: strings.TrimSpace(matchID)}
	if sess.BountyID == "" || sess.MatchID == "" {
		return Snapshot{}, ErrInvalidSession
	}

	if err := t.cycle.Acquire(ctx, 1); err != nil {
		return Snapshot{}, fmt.Errorf("waiting for poll cycle: %w", err)
	}
	defer t.cycle.Release(1)

	t.mu.Lock()
	t.session = &sess
	t.mu.Unlock()

	t.log.Info("session set", zap.String("bounty_id", sess.BountyID), zap.String("match_id", sess.MatchID))

	if _, err := t.runCycle(ctx, sess); err != nil {
		t.log.Warn("initial fetch for new session failed",
			zap.String("bounty_id", sess.BountyID),
			zap.String("match_id", sess.MatchID),
			zap.Error(err))
	}
	return t.Current(), nil
}

// ClearSession returns the tracker to idle. The last published snapshot is
// kept for readers.
func (t *Tracker) ClearSession() {
	t.mu.Lock()
	t.session = nil
	t.mu.Unlock()
	t.log.Info("session cleared")
}

func (t *Tracker) Session() (Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.session == nil {
		return Session{}, false
	}
	return *t.session, true
}

func (t *Tracker) Phase() Phase {
	if _, ok := t.Session(); ok {
		return PhasePolling
	}
	return PhaseIdle
}

// Current returns a copy of the latest published snapshot.
func (t *Tracker) Current() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) CurrentState() draft.State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current.Clone()
}

// Previous is the generation the last diff was computed against. It is
// absent until two cycles have been published.
func (t *Tracker) Previous() (draft.State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.previous == nil {
		return draft.State{}, false
	}
	return t.previous.Clone(), true
}

func (t *Tracker) LastDiff() draft.Diff {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.diff.Clone()
}

func (t *Tracker) runCycle(ctx context.Context, sess Session) (Snapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, t.cfg.FetchTimeout)
	raw, err := t.fetcher.FetchMatchStats(fetchCtx, sess.BountyID, sess.MatchID)
	cancel()
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetching match stats: %w", err)
	}

	match, ok := draft.Extract(raw, sess.MatchID)
	if !ok {
		t.log.Debug("no match data in response yet", zap.String("match_id", sess.MatchID))
	}
	state := draft.Normalize(match, t.resolver)

	snap, ok := t.publish(sess, state)
	if !ok {
		t.log.Debug("session changed during fetch, dropping result", zap.String("match_id", sess.MatchID))
		return Snapshot{}, nil
	}

	t.notify(ctx, snap)
	return snap, nil
}

// publish swaps in the new state, diff and version under one lock so readers
// never see a mixed generation.
func (t *Tracker) publish(sess Session, state draft.State) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil || *t.session != sess {
		return Snapshot{}, false
	}

	var prev *draft.State
	if t.version > 0 {
		old := t.current
		prev = &old
	}

	t.diff = draft.ComputeDiff(prev, state)
	t.previous = prev
	t.current = state
	t.version++
	t.polledAt = t.now()

	return t.snapshotLocked(), true
}

func (t *Tracker) snapshotLocked() Snapshot {
	var sess Session
	if t.session != nil {
		sess = *t.session
	}
	return Snapshot{
		Version:  t.version,
		Session:  sess,
		State:    t.current.Clone(),
		Diff:     t.diff.Clone(),
		PolledAt: t.polledAt,
	}
}

func (t *Tracker) notify(ctx context.Context, snap Snapshot) {
	for _, p := range t.publishers {
		pubCtx, cancel := context.WithTimeout(ctx, t.cfg.PublishTimeout)
		if err := p.Publish(pubCtx, snap); err != nil {
			t.log.Warn("publishing snapshot failed", zap.Int("version", snap.Version), zap.Error(err))
		}
		cancel()
	}
}
