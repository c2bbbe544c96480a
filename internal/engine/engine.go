package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/go-theft-craft/voxel/internal/engine/config"
	"github.com/go-theft-craft/voxel/internal/engine/monitor"
	"github.com/go-theft-craft/voxel/internal/engine/pipeline"
	"github.com/go-theft-craft/voxel/internal/engine/render"
	"github.com/go-theft-craft/voxel/internal/engine/storage"
	"github.com/go-theft-craft/voxel/internal/engine/world"
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
	"github.com/go-theft-craft/voxel/pkg/world/gen"
)

// statsInterval is how often Start logs a stats line.
const statsInterval = 10 * time.Second

// Engine owns the world, the update pipeline and the render loop.
type Engine struct {
	cfg     *config.Config
	log     *slog.Logger
	session uuid.UUID

	blocks   *block.Table
	world    *world.World
	pipeline *pipeline.Pipeline
	loop     *render.Loop
	renderer render.Renderer
	exporter *storage.Exporter
	monitor  *monitor.Server
	tick     func(*Engine)
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRenderer replaces the default headless renderer.
func WithRenderer(r render.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithTick sets a function run once per simulation tick on the render loop,
// typically to move the player.
func WithTick(f func(*Engine)) Option {
	return func(e *Engine) { e.tick = f }
}

// New creates an Engine from cfg.
func New(cfg *config.Config, log *slog.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		session:  uuid.New(),
		renderer: &render.Headless{},
	}
	e.log = log.With("session", e.session.String())
	for _, o := range opts {
		o(e)
	}

	blocks, err := loadBlocks(cfg)
	if err != nil {
		return nil, err
	}
	e.blocks = blocks

	chain, err := gen.New(cfg.GeneratorType, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	e.world = world.New(world.Options{
		ViewDistance:  cfg.ViewDistance,
		CacheCapacity: cfg.CacheCapacity,
		EvictionBatch: cfg.EvictionBatch,
		Daylight:      cfg.Daylight,
	})
	e.pipeline = pipeline.New(e.world, blocks, chain, chunk.NewMesher(blocks, cfg.Daylight), pipeline.Options{
		UpdateBatch:      cfg.UpdateBatch,
		ReadyQueue:       cfg.ReadyQueue,
		EditQueue:        cfg.EditQueue,
		RelaxationPasses: cfg.RelaxationPasses,
		MeshWorkers:      cfg.MeshWorkers,
		StreamInterval:   cfg.StreamInterval,
		StreamBurst:      cfg.StreamBurst,
	}, e.log.With("component", "pipeline"))

	var src render.Source = e.pipeline
	if cfg.ExportDir != "" {
		exp, err := storage.NewExporter(cfg.ExportDir, e.session.String(), e.log.With("component", "export"))
		if err != nil {
			e.pipeline.Close()
			return nil, err
		}
		e.exporter = exp
		src = exportingSource{src: src, exp: exp, log: e.log}
	}

	e.loop = render.NewLoop(src, e.world, e.renderer, e.runTick, render.Options{
		TickRate:     cfg.TickRate,
		MaxFrameSkip: cfg.MaxFrameSkip,
	}, e.log.With("component", "render"))

	if cfg.MonitorAddr != "" {
		e.monitor = monitor.New(e.session.String(), e.Snapshot, time.Second, e.log.With("component", "monitor"))
	}
	return e, nil
}

func loadBlocks(cfg *config.Config) (*block.Table, error) {
	if cfg.BlockPackFile != "" {
		t, err := block.LoadPackFile(cfg.BlockPackFile)
		if err != nil {
			return nil, fmt.Errorf("load block pack file: %w", err)
		}
		return t, nil
	}
	t, err := block.Load(cfg.BlockPack)
	if err != nil {
		return nil, fmt.Errorf("load block pack: %w", err)
	}
	return t, nil
}

func (e *Engine) runTick() {
	if e.tick != nil {
		e.tick(e)
	}
}

// Session returns the engine session id.
func (e *Engine) Session() uuid.UUID { return e.session }

// World returns the engine's world.
func (e *Engine) World() *world.World { return e.world }

// Blocks returns the loaded block table.
func (e *Engine) Blocks() *block.Table { return e.blocks }

// Pipeline returns the update pipeline.
func (e *Engine) Pipeline() *pipeline.Pipeline { return e.pipeline }

// Loop returns the render loop.
func (e *Engine) Loop() *render.Loop { return e.loop }

// Exporter returns the geometry exporter, or nil when export is disabled.
func (e *Engine) Exporter() *storage.Exporter { return e.exporter }

// Snapshot samples world, pipeline and render stats.
func (e *Engine) Snapshot() monitor.Snapshot {
	return monitor.Snapshot{
		Time:     time.Now().UTC(),
		World:    e.world.Stats(),
		Pipeline: e.pipeline.Stats(),
		Render:   e.loop.Stats(),
	}
}

// Start runs the engine and blocks until ctx is cancelled or a component
// fails.
func (e *Engine) Start(ctx context.Context) error {
	defer e.pipeline.Close()

	e.log.Info("engine started",
		"viewDistance", e.cfg.ViewDistance,
		"generator", e.cfg.GeneratorType,
		"seed", e.cfg.Seed,
		"blocks", e.blocks.Name(),
		"meshWorkers", e.cfg.MeshWorkers,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.pipeline.RunUpdates(ctx) })
	g.Go(func() error { return e.pipeline.RunStreaming(ctx) })
	g.Go(func() error { return e.loop.Run(ctx) })
	if e.monitor != nil {
		g.Go(func() error { return e.monitor.Run(ctx, e.cfg.MonitorAddr) })
	}
	g.Go(func() error {
		t := time.NewTicker(statsInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				e.log.Info(e.world.String())
				e.log.Info(e.pipeline.Stats().String())
			}
		}
	})

	err := g.Wait()
	e.log.Info("engine shutting down")
	return err
}

type exportingSource struct {
	src render.Source
	exp *storage.Exporter
	log *slog.Logger
}

func (s exportingSource) Drain(n int) []*chunk.Mesh {
	ms := s.src.Drain(n)
	for _, m := range ms {
		if _, err := s.exp.Export(m); err != nil {
			s.log.Warn("export mesh", "chunk", m.Pos, "error", err)
		}
	}
	return ms
}
