package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/spektr-org/insightkit/schema"
)

const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-infer and re-suggest whenever --file changes",
	Long: `Watches the data file, re-infers the schema on every write and prints fresh
suggestions. Cached suggestions for an outdated fingerprint are evicted, and
cache.evict_schedule (cron syntax) clears the whole cache periodically.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if filePath == "" {
		return fmt.Errorf("watch needs --file")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := loadSession(ctx)
	if err != nil {
		return err
	}
	orch, err := newOrchestrator(s.cfg)
	if err != nil {
		return err
	}

	// ── Cache eviction schedule ───────────────────────────────────────────
	if spec := s.cfg.Cache.EvictSchedule; spec != "" {
		c := cron.New()
		if _, err := c.AddFunc(spec, func() {
			log.Printf("🧹 insightkit watch: clearing %d cached results", orch.CacheLen())
			orch.ClearCache()
		}); err != nil {
			return fmt.Errorf("cache.evict_schedule %q: %w", spec, err)
		}
		c.Start()
		defer c.Stop()
		log.Printf("⏰ insightkit watch: cache eviction scheduled %q", spec)
	}

	// ── File watcher ──────────────────────────────────────────────────────
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory: editors replace files instead of writing in place.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	current := s.sch
	emit := func() {
		if err := writeOutput(cmd.OutOrStdout(), orch.Suggest(ctx, current, s.table.Rows), outFormat); err != nil {
			log.Printf("⚠️  insightkit watch: %v", err)
		}
	}
	emit()

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	log.Printf("👀 insightkit watch: watching %s", absPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if p, _ := filepath.Abs(event.Name); p != absPath {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("⚠️  insightkit watch: %v", err)
		case <-reload:
			next, err := reloadSession(ctx, current)
			if err != nil {
				log.Printf("⚠️  insightkit watch: reload failed: %v", err)
				continue
			}
			if next.sch.Fingerprint() != current.Fingerprint() {
				orch.EvictCache(current)
			}
			s, current = next, next.sch
			emit()
		}
	}
}

func reloadSession(ctx context.Context, prev *schema.Schema) (*session, error) {
	next, err := loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if next.sch.Fingerprint() != prev.Fingerprint() {
		log.Printf("🔄 insightkit watch: schema changed %s → %s", prev.Fingerprint(), next.sch.Fingerprint())
	}
	return next, nil
}
