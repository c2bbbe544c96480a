package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"

	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// Source hands out finished meshes without blocking.
type Source interface {
	Drain(n int) []*chunk.Mesh
}

// Scene is the part of the world the loop needs to cull and order geometry.
type Scene interface {
	Contains(p chunk.Pos) bool
	PlayerPosition() mgl32.Vec3
}

// Renderer draws one frame's passes.
type Renderer interface {
	Draw(passes []Pass) error
}

// Options configures a Loop.
type Options struct {
	TickRate        int // simulation ticks per second
	MaxFrameSkip    int // ticks run per frame before drawing regardless
	UploadsPerFrame int
}

// Loop is the fixed-tick render loop. Each frame it uploads ready meshes,
// runs the simulation until it has caught up (at most MaxFrameSkip ticks)
// and draws the store.
type Loop struct {
	log   *slog.Logger
	src   Source
	scene Scene
	r     Renderer
	tick  func()
	opts  Options
	step  time.Duration
	store *Store
	next  time.Time

	frames  atomic.Int64
	ticks   atomic.Int64
	lagged  atomic.Int64
	uploads atomic.Int64
}

// NewLoop creates a Loop. tick runs once per simulation tick and may be nil.
func NewLoop(src Source, scene Scene, r Renderer, tick func(), opts Options, log *slog.Logger) *Loop {
	if tick == nil {
		tick = func() {}
	}
	opts.TickRate = max(opts.TickRate, 1)
	opts.MaxFrameSkip = max(opts.MaxFrameSkip, 1)
	if opts.UploadsPerFrame <= 0 {
		opts.UploadsPerFrame = 64
	}
	return &Loop{
		log:   log,
		src:   src,
		scene: scene,
		r:     r,
		tick:  tick,
		opts:  opts,
		step:  time.Second / time.Duration(opts.TickRate),
		store: NewStore(),
	}
}

// Store returns the loop's mesh store.
func (l *Loop) Store() *Store { return l.store }

// Run draws frames until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	t := time.NewTicker(l.step)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			if err := l.Frame(now); err != nil {
				return err
			}
		}
	}
}

// Frame runs one iteration of the loop at time now.
func (l *Loop) Frame(now time.Time) error {
	for _, m := range l.src.Drain(l.opts.UploadsPerFrame) {
		l.store.Upload(m)
		l.uploads.Inc()
	}
	l.store.Prune(l.scene.Contains)

	if l.next.IsZero() {
		l.next = now
	}
	n := 0
	for !now.Before(l.next) && n < l.opts.MaxFrameSkip {
		l.tick()
		l.next = l.next.Add(l.step)
		n++
	}
	l.ticks.Add(int64(n))
	if !now.Before(l.next) {
		// Too far behind; drop the backlog instead of spiralling.
		l.lagged.Inc()
		l.log.Debug("render loop behind, dropping ticks", "behind", now.Sub(l.next))
		l.next = now.Add(l.step)
	}

	if err := l.r.Draw(Plan(l.store.Meshes(), l.scene.PlayerPosition())); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	l.frames.Inc()
	return nil
}

// Stats is a point-in-time summary of the render loop.
type Stats struct {
	Frames  int64 `json:"frames"`
	Ticks   int64 `json:"ticks"`
	Lagged  int64 `json:"lagged"`
	Uploads int64 `json:"uploads"`
	Meshes  int   `json:"meshes"`
}

// Stats returns the loop counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Frames:  l.frames.Load(),
		Ticks:   l.ticks.Load(),
		Lagged:  l.lagged.Load(),
		Uploads: l.uploads.Load(),
		Meshes:  l.store.Len(),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("render: %d frames, %d ticks (%d lagged), %d meshes", s.Frames, s.Ticks, s.Lagged, s.Meshes)
}
