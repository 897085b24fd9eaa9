package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeatGlow/aqm1248a/internal/frame"
)

// fakePanel records calls and cancels after a number of refreshes.
type fakePanel struct {
	mu      sync.Mutex
	calls   []string
	data    [][]byte
	failOn  string
	stopAt  int
	stop    context.CancelFunc
	refresh int
}

func (p *fakePanel) record(call string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	if call == p.failOn {
		return errors.New("panel failure")
	}
	if call == "flush" || call == "refresh" {
		p.refresh++
		if p.stopAt > 0 && p.refresh == p.stopAt && p.stop != nil {
			p.stop()
		}
	}
	return nil
}

func (p *fakePanel) Flush() error {
	return p.record("flush")
}

func (p *fakePanel) SetPixelData(b []byte) error {
	p.mu.Lock()
	p.data = append(p.data, b)
	p.mu.Unlock()
	return p.record("set")
}

func (p *fakePanel) Refresh() error {
	return p.record("refresh")
}

func (p *fakePanel) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func TestRunCyclesFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakePanel{stopAt: 5, stop: cancel}
	r := &Runner{
		Name:     "test",
		Panel:    p,
		Frames:   []frame.Frame{frame.Blank(), {Name: "one", Data: []byte{1}}},
		Interval: time.Millisecond,
		Logger:   zerolog.Nop(),
	}
	require.NoError(t, r.Run(ctx))

	assert.Equal(t, []string{
		"flush",
		"flush",
		"set", "refresh",
		"flush",
		"set", "refresh",
	}, p.snapshot())
	assert.Equal(t, [][]byte{{1}, {1}}, p.data)
}

func TestRunStopsOnError(t *testing.T) {
	p := &fakePanel{failOn: "refresh"}
	r := &Runner{
		Name:     "test",
		Panel:    p,
		Frames:   []frame.Frame{{Name: "one", Data: []byte{1}}},
		Interval: time.Millisecond,
		Logger:   zerolog.Nop(),
	}
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame one")
	assert.Equal(t, []string{"flush", "set", "refresh"}, p.snapshot())
}

func TestRunValidation(t *testing.T) {
	r := &Runner{Panel: &fakePanel{}, Interval: time.Second}
	assert.Error(t, r.Run(context.Background()))

	r = &Runner{Panel: &fakePanel{}, Frames: []frame.Frame{frame.Blank()}}
	assert.Error(t, r.Run(context.Background()))
}

func TestRunCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	r := &Runner{
		Panel:    &fakePanel{},
		Frames:   []frame.Frame{frame.Blank()},
		Interval: time.Hour,
		Logger:   zerolog.Nop(),
	}
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop on cancellation")
	}
}

func TestRunAll(t *testing.T) {
	good := &fakePanel{}
	bad := &fakePanel{failOn: "refresh"}
	runners := []*Runner{
		{Name: "good", Panel: good, Frames: []frame.Frame{frame.Blank()}, Interval: time.Millisecond, Logger: zerolog.Nop()},
		{Name: "bad", Panel: bad, Frames: []frame.Frame{{Name: "x", Data: []byte{1}}}, Interval: time.Millisecond, Logger: zerolog.Nop()},
	}

	err := RunAll(context.Background(), runners...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.NotContains(t, err.Error(), "good")
	assert.NotEmpty(t, good.snapshot())
}
