// Package refresh cycles frames on one or more displays.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BeatGlow/aqm1248a/internal/frame"
)

// Panel is the part of a display the loop drives.
type Panel interface {
	Flush() error
	SetPixelData([]byte) error
	Refresh() error
}

// Runner shows Frames on Panel in order, waiting Interval after each one.
type Runner struct {
	Name     string
	Panel    Panel
	Frames   []frame.Frame
	Interval time.Duration
	Logger   zerolog.Logger
}

// Run clears the panel and cycles frames until ctx is done. The first panel
// error stops the loop and is returned; cancellation returns nil.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.Frames) == 0 {
		return errors.New("refresh: no frames")
	}
	if r.Interval <= 0 {
		return fmt.Errorf("refresh: invalid interval %s", r.Interval)
	}

	if err := r.Panel.Flush(); err != nil {
		return fmt.Errorf("refresh: %s: flush: %w", r.Name, err)
	}

	timer := time.NewTimer(r.Interval)
	defer timer.Stop()

	for i := 0; ; i = (i + 1) % len(r.Frames) {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		f := r.Frames[i]
		r.Logger.Debug().Str("frame", f.Name).Msg("show")
		if err := r.show(f); err != nil {
			return fmt.Errorf("refresh: %s: frame %s: %w", r.Name, f.Name, err)
		}

		timer.Reset(r.Interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

func (r *Runner) show(f frame.Frame) error {
	if f.Data == nil {
		return r.Panel.Flush()
	}
	if err := r.Panel.SetPixelData(f.Data); err != nil {
		return err
	}
	return r.Panel.Refresh()
}

// RunAll runs every runner in its own goroutine. When one fails the others
// are cancelled; all errors are joined.
func RunAll(ctx context.Context, runners ...*Runner) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, r := range runners {
		wg.Add(1)
		go func(r *Runner) {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				r.Logger.Error().Err(err).Msg("refresh stopped")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				cancel()
			}
		}(r)
	}
	wg.Wait()
	return errors.Join(errs...)
}
