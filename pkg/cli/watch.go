package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/subdesk/pkg/observability"
)

// ErrWatchUnsupported is returned when the record store is not file backed
var ErrWatchUnsupported = errors.New("watch requires the file record store")

func newWatchCommand(app *App) *Command {
	cmd := &Command{
		Name:        "watch",
		Description: "Reload and list subscribers whenever the record file changes",
		Flags:       flag.NewFlagSet("watch", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(app.Out)

	delay := cmd.Flags.Duration("delay", 200*time.Millisecond, "Quiet period before reloading after a change")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if app.WatchPath == "" {
			return ErrWatchUnsupported
		}
		return watchRecords(ctx, app, *delay)
	}
	return cmd
}

// watchRecords follows the record file until ctx is done. The parent
// directory is watched rather than the file itself since saves replace the
// file by rename.
func watchRecords(ctx context.Context, app *App, delay time.Duration) error {
	path, err := filepath.Abs(app.WatchPath)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", app.WatchPath, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	if app.ExportMetrics != nil && app.MetricsSchedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(app.MetricsSchedule, func() {
			defer observability.RecoverPanic(app.Log, "metrics export")
			if err := app.ExportMetrics(); err != nil {
				app.Log.WithError(err).Warn("Metrics export failed")
			}
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("invalid metrics schedule %q: %w", app.MetricsSchedule, err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
	}

	app.Log.WithField("path", path).Info("Watching record file")
	printSubscribers(app.Out, app.Registry.ListAll())

	changes := make(chan struct{}, 1)

	g, gctx := errgroup.WithContext(ctx)

	// Event loop
	g.Go(func() (err error) {
		defer observability.RecoverPanicToError(app.Log, "watch events", &err)
		defer close(changes)
		for {
			select {
			case <-gctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				app.Log.WithField("event", event.Op.String()).Debug("Record file changed")
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				app.Log.WithError(err).Warn("Watcher error")
			}
		}
	})

	// Reloader
	g.Go(func() (err error) {
		defer observability.RecoverPanicToError(app.Log, "record reload", &err)
		for {
			select {
			case <-gctx.Done():
				return nil
			case _, ok := <-changes:
				if !ok {
					return nil
				}
			}

			// Let a burst of events settle before reading the file
			select {
			case <-gctx.Done():
				return nil
			case <-time.After(delay):
			}
			select {
			case <-changes:
			default:
			}

			if err := app.Registry.Load(gctx); err != nil {
				app.Log.WithError(err).Error("Failed to reload subscribers")
				continue
			}
			printSubscribers(app.Out, app.Registry.ListAll())
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		return watcher.Close()
	})

	return g.Wait()
}
