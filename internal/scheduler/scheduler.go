package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jaymes17/catalyst-chart/internal/cache"
	"github.com/jaymes17/catalyst-chart/internal/engine"
	"github.com/jaymes17/catalyst-chart/internal/model"
	"github.com/jaymes17/catalyst-chart/internal/notifier"
	"github.com/jaymes17/catalyst-chart/internal/watchlist"
)

const (
	digestConcurrency = 2
	symbolTimeout     = 2 * time.Minute
)

// Generator produces a catalyst snapshot for a request.
type Generator interface {
	Generate(ctx context.Context, req engine.Request) (*engine.Snapshot, error)
}

// Sender delivers catalyst reports and plain notices.
type Sender interface {
	SendReport(ctx context.Context, snap *engine.Snapshot) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks and chat commands.
type Scheduler struct {
	Cron         *cron.Cron
	Engine       Generator
	Watchlist    *watchlist.Manager
	Notifier     Sender
	Cache        cache.Store
	CacheMaxAge  time.Duration
	DefaultRange model.Range
	Ctx          context.Context
	now          func() time.Time

	digesting atomic.Bool
	digests   sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, gen Generator, wl *watchlist.Manager, sender Sender, store cache.Store, cacheMaxAge time.Duration, defaultRange model.Range) *Scheduler {
	if defaultRange == "" {
		defaultRange = model.Range5Y
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Engine:       gen,
		Watchlist:    wl,
		Notifier:     sender,
		Cache:        store,
		CacheMaxAge:  cacheMaxAge,
		DefaultRange: defaultRange,
		Ctx:          ctx,
		now:          time.Now,
	}
}

// RegisterAll registers the watchlist digest and cache prune tasks.
func (s *Scheduler) RegisterAll(digestCron, pruneCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	if _, err := s.Cron.AddFunc(pruneCron, s.pruneTask); err != nil {
		return fmt.Errorf("register prune task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully and waits for a manual digest
// still running.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.digests.Wait()
	log.Println("[INFO] scheduler stopped")
}

// RunDigestNow executes the digest task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

// startDigest runs the digest in the background. It reports false when a
// manual digest is already running.
func (s *Scheduler) startDigest() bool {
	if !s.digesting.CompareAndSwap(false, true) {
		return false
	}
	s.digests.Add(1)
	go func() {
		defer s.digests.Done()
		defer s.digesting.Store(false)
		s.digestTask()
	}()
	return true
}

func (s *Scheduler) digestTask() {
	entries := s.Watchlist.List()
	log.Printf("[INFO] running digest for %d symbols", len(entries))

	g, ctx := errgroup.WithContext(s.Ctx)
	g.SetLimit(digestConcurrency)
	for _, e := range entries {
		g.Go(func() error {
			s.digestSymbol(ctx, e)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) digestSymbol(ctx context.Context, e watchlist.Entry) {
	ctx, cancel := context.WithTimeout(ctx, symbolTimeout)
	defer cancel()

	snap, err := s.Engine.Generate(ctx, engine.Request{Symbol: e.Symbol, Range: e.Range})
	if err != nil {
		log.Printf("[ERROR] digest %s: %v", e.Symbol, err)
		s.trySend(fmt.Sprintf("❌ Digest for %s failed: %v", e.Symbol, err))
		return
	}
	if err := s.Notifier.SendReport(s.Ctx, snap); err != nil {
		log.Printf("[ERROR] send report %s: %v", e.Symbol, err)
		return
	}
	if err := s.Watchlist.MarkDigest(e.Symbol, s.now()); err != nil {
		log.Printf("[ERROR] mark digest %s: %v", e.Symbol, err)
	}
}

func (s *Scheduler) pruneTask() {
	if s.Cache == nil || s.CacheMaxAge <= 0 {
		return
	}
	n, err := s.Cache.Prune(s.now().Add(-s.CacheMaxAge))
	if err != nil {
		log.Printf("[ERROR] prune cache: %v", err)
		return
	}
	log.Printf("[INFO] pruned %d cached responses", n)
}

const helpText = `Available commands:
• /chart SYMBOL [1Y|2Y|5Y|MAX]
• /watch SYMBOL [RANGE]
• /unwatch SYMBOL
• /list
• /digest`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats append the bot name: /chart@catalyst_bot.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/chart":
		symbol, rng, err := s.parseSymbolRange(name, args)
		if err != nil {
			return err.Error()
		}
		snap, err := s.Engine.Generate(ctx, engine.Request{Symbol: symbol, Range: rng})
		if err != nil {
			return describeError(symbol, err)
		}
		return notifier.FormatCatalystReport(snap)
	case "/watch":
		symbol, rng, err := s.parseSymbolRange(name, args)
		if err != nil {
			return err.Error()
		}
		added, err := s.Watchlist.Add(symbol, rng)
		if err != nil {
			return fmt.Sprintf("❌ Failed to update watchlist: %v", err)
		}
		if added {
			return fmt.Sprintf("✅ Watching %s (%s)", strings.ToUpper(symbol), rng)
		}
		return fmt.Sprintf("✅ Updated %s to %s", strings.ToUpper(symbol), rng)
	case "/unwatch":
		if len(args) != 1 {
			return "Usage: /unwatch SYMBOL"
		}
		removed, err := s.Watchlist.Remove(args[0])
		if err != nil {
			return fmt.Sprintf("❌ Failed to update watchlist: %v", err)
		}
		if !removed {
			return fmt.Sprintf("%s is not on the watchlist", strings.ToUpper(args[0]))
		}
		return fmt.Sprintf("🗑 Stopped watching %s", strings.ToUpper(args[0]))
	case "/list":
		return notifier.FormatWatchlist(s.Watchlist.List())
	case "/digest":
		n := len(s.Watchlist.List())
		if n == 0 {
			return "Watchlist is empty. Add symbols with /watch SYMBOL"
		}
		if !s.startDigest() {
			return "⏳ A digest is already running"
		}
		return fmt.Sprintf("⏳ Digest started for %d symbols", n)
	default:
		return helpText
	}
}

func (s *Scheduler) parseSymbolRange(command string, args []string) (string, model.Range, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", "", fmt.Errorf("Usage: %s SYMBOL [1Y|2Y|5Y|MAX]", command)
	}
	rng := s.DefaultRange
	if len(args) == 2 {
		r, err := model.ParseRange(args[1])
		if err != nil {
			return "", "", err
		}
		rng = r
	}
	return args[0], rng, nil
}

func describeError(symbol string, err error) string {
	symbol = strings.ToUpper(symbol)
	switch {
	case errors.Is(err, engine.ErrInsufficientData):
		return fmt.Sprintf("Not enough price history for %s.", symbol)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Request for %s was cancelled.", symbol)
	default:
		return fmt.Sprintf("❌ Could not load %s: %v", symbol, err)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
