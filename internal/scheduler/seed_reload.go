package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
	"github.com/MrSnakeDoc/icebreaker/internal/sources/seed"
)

// ContentSeeder is the read and mutation surface seeds go through.
type ContentSeeder interface {
	GetContent(ctx context.Context, userID string) (*domain.UserContent, error)
	AddItem(ctx context.Context, userID, category, list string, item domain.Item) error
}

// SeedStatus describes the last seed run.
type SeedStatus struct {
	File     string    `json:"file"`
	LastRun  time.Time `json:"lastRun,omitempty"`
	Entries  int       `json:"entries"`
	Seeded   int       `json:"seededUsers"`
	Skipped  int       `json:"skippedUsers"`
	Failed   int       `json:"failed"`
	LastErr  string    `json:"lastError,omitempty"`
	Interval string    `json:"interval"`
}

// SeedReloader periodically applies a seed collection file to users that have no content yet
type SeedReloader struct {
	loader        *seed.Loader
	mapper        *seed.Mapper
	target        ContentSeeder
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu     sync.RWMutex
	status SeedStatus
}

// NewSeedReloader creates a new seed reloader
func NewSeedReloader(
	seedFile string,
	target ContentSeeder,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seed.NewLoader(seedFile),
		mapper:        seed.NewMapper(),
		target:        target,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		status:        SeedStatus{File: seedFile, Interval: interval.String()},
	}
}

// Start applies the seed once and then on every tick or manual trigger
func (sr *SeedReloader) Start(ctx context.Context) error {
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed", logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed", logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *SeedReloader) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
}

// Status returns a snapshot of the last run
func (sr *SeedReloader) Status() SeedStatus {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.status
}

// Reload reads the file and seeds every user that has no document yet. Users that
// already own content are skipped whole, so later removes and moves survive the next
// run. Only an unreadable file fails the run; bad entries are counted and logged.
func (sr *SeedReloader) Reload(ctx context.Context) error {
	sr.logger.Info("applying seed collection", logger.String("file", sr.loader.Path()))

	f, err := sr.loader.Load()
	if err != nil {
		sr.record(seedRun{}, err)
		return fmt.Errorf("failed to load seed: %w", err)
	}

	entries, mapErr := sr.mapper.MapEntries(f)
	if mapErr != nil {
		sr.logger.Warn("seed file has invalid entries", logger.Error(mapErr))
	}

	run := seedRun{entries: len(entries)}
	var lastErr error
	for _, group := range groupByUser(entries) {
		fresh, err := sr.needsSeed(ctx, group[0].UserID)
		if err != nil {
			run.failed += len(group)
			lastErr = err
			sr.logger.Warn("failed to check seed target",
				logger.String("user_id", group[0].UserID),
				logger.Error(err))
			continue
		}
		if !fresh {
			run.skipped++
			continue
		}
		run.seeded++
		for _, e := range group {
			if err := sr.target.AddItem(ctx, e.UserID, string(e.Category), string(e.List), e.Item); err != nil {
				run.failed++
				lastErr = err
				sr.logger.Warn("failed to apply seed entry",
					logger.String("user_id", e.UserID),
					logger.String("category", string(e.Category)),
					logger.String("item_id", e.Item.ID),
					logger.Error(err))
			}
		}
	}
	if lastErr == nil {
		lastErr = mapErr
	}

	sr.record(run, lastErr)
	sr.logger.Info("seed collection applied",
		logger.Int("entries", run.entries),
		logger.Int("seeded_users", run.seeded),
		logger.Int("skipped_users", run.skipped),
		logger.Int("failed", run.failed))
	return nil
}

// needsSeed reports whether userID has no stored document.
func (sr *SeedReloader) needsSeed(ctx context.Context, userID string) (bool, error) {
	_, err := sr.target.GetContent(ctx, userID)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, domain.ErrNotFound):
		return true, nil
	default:
		return false, err
	}
}

// groupByUser keeps the file order of users and of entries within a user.
func groupByUser(entries []seed.Entry) [][]seed.Entry {
	var groups [][]seed.Entry
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.UserID]
		if !ok {
			i = len(groups)
			index[e.UserID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], e)
	}
	return groups
}

type seedRun struct {
	entries, seeded, skipped, failed int
}

func (sr *SeedReloader) record(run seedRun, err error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.status.LastRun = time.Now()
	sr.status.Entries = run.entries
	sr.status.Seeded = run.seeded
	sr.status.Skipped = run.skipped
	sr.status.Failed = run.failed
	sr.status.LastErr = ""
	if err != nil {
		sr.status.LastErr = err.Error()
	}
}
