package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"github.com/go-theft-craft/voxel/internal/engine/world"
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
	"github.com/go-theft-craft/voxel/pkg/world/gen"
)

// Options configures a Pipeline.
type Options struct {
	UpdateBatch      int
	ReadyQueue       int
	EditQueue        int
	RelaxationPasses int
	MeshWorkers      int
	StreamInterval   time.Duration
	StreamBurst      int
}

// Edit is a queued block change.
type Edit struct {
	X, Y, Z int
	ID      block.ID
}

// Pipeline owns all chunk mutation. The update goroutine generates, lights
// and meshes dirty chunks nearest-first; the streaming goroutine keeps the
// world grid centred on the player. Finished meshes leave through the ready
// queue.
type Pipeline struct {
	log    *slog.Logger
	world  *world.World
	reg    block.Registry
	chain  *gen.Chain
	mesher *chunk.Mesher
	opts   Options

	edits chan Edit
	ready chan *chunk.Mesh
	pool  pond.Pool

	steps        atomic.Int64
	generated    atomic.Int64
	relit        atomic.Int64
	meshed       atomic.Int64
	requeued     atomic.Int64
	editsApplied atomic.Int64
	editsDropped atomic.Int64
	passFailures atomic.Int64
	streamed     atomic.Int64
}

// New creates a Pipeline. Call Close to release the mesh worker pool.
func New(w *world.World, reg block.Registry, chain *gen.Chain, mesher *chunk.Mesher, opts Options, log *slog.Logger) *Pipeline {
	return &Pipeline{
		log:    log,
		world:  w,
		reg:    reg,
		chain:  chain,
		mesher: mesher,
		opts:   opts,
		edits:  make(chan Edit, max(opts.EditQueue, 1)),
		ready:  make(chan *chunk.Mesh, max(opts.ReadyQueue, 1)),
		pool:   pond.NewPool(max(opts.MeshWorkers, 1)),
	}
}

// Close stops the mesh worker pool.
func (p *Pipeline) Close() {
	p.pool.StopAndWait()
}

// SetBlock queues a block edit for the update goroutine. It reports false
// when the edit queue is full.
func (p *Pipeline) SetBlock(x, y, z int, id block.ID) bool {
	select {
	case p.edits <- Edit{X: x, Y: y, Z: z, ID: id}:
		return true
	default:
		p.editsDropped.Inc()
		return false
	}
}

// Ready returns the queue of finished meshes.
func (p *Pipeline) Ready() <-chan *chunk.Mesh { return p.ready }

// Drain takes up to n meshes from the ready queue without blocking.
func (p *Pipeline) Drain(n int) []*chunk.Mesh {
	var out []*chunk.Mesh
	for range n {
		select {
		case m := <-p.ready:
			out = append(out, m)
		default:
			return out
		}
	}
	return out
}

// RunUpdates runs scheduling passes until ctx is cancelled.
func (p *Pipeline) RunUpdates(ctx context.Context) error {
	idle := time.NewTicker(5 * time.Millisecond)
	defer idle.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if p.Step(ctx) > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case e := <-p.edits:
			p.apply(e)
		case <-idle.C:
		}
	}
}

// RunStreaming re-centres the world at most once per StreamInterval until
// ctx is cancelled.
func (p *Pipeline) RunStreaming(ctx context.Context) error {
	lim := rate.NewLimiter(rate.Every(p.opts.StreamInterval), max(p.opts.StreamBurst, 1))
	for {
		if err := lim.Wait(ctx); err != nil {
			return nil
		}
		res := p.world.Stream()
		if len(res.Loaded) > 0 || res.Skipped > 0 {
			p.streamed.Add(int64(len(res.Loaded)))
			p.log.Debug("streamed chunks", "loaded", len(res.Loaded), "unloaded", len(res.Unloaded), "skipped", res.Skipped)
		}
	}
}

// Step runs one scheduling pass: queued edits are applied, then at most
// UpdateBatch pending chunks are processed nearest-first. It returns the
// number of chunks processed.
func (p *Pipeline) Step(ctx context.Context) int {
	p.applyEdits()

	batch := p.schedule()
	if len(batch) == 0 {
		return 0
	}
	p.steps.Inc()

	held := batch[:0]
	for _, c := range batch {
		if ctx.Err() != nil {
			break
		}
		if !p.hold(c) {
			continue
		}
		held = append(held, c)
		p.light(c)
	}
	// Chunks lit later in the batch push light back into earlier ones.
	for range max(p.opts.RelaxationPasses, 1) {
		again := false
		for _, c := range held {
			if c.IsLightDirty() {
				p.light(c)
				again = true
			}
		}
		if !again {
			break
		}
	}

	for _, c := range p.mesh(held) {
		p.publish(c)
	}
	for _, c := range held {
		c.EndUpdate()
	}
	return len(held)
}

// hold takes the update hold on c. A chunk streamed out of the grid since it
// was scheduled is released and skipped.
func (p *Pipeline) hold(c *chunk.Chunk) bool {
	if !c.TryBeginUpdate() {
		return false
	}
	if cur, ok := p.world.ChunkAt(c.Pos()); !ok || cur != c {
		c.EndUpdate()
		return false
	}
	return true
}

func (p *Pipeline) applyEdits() {
	for {
		select {
		case e := <-p.edits:
			p.apply(e)
		default:
			return
		}
	}
}

func (p *Pipeline) apply(e Edit) {
	if p.world.SetBlock(e.X, e.Y, e.Z, e.ID) {
		p.editsApplied.Inc()
	}
}

// schedule returns the pending chunks closest to the player.
func (p *Pipeline) schedule() []*chunk.Chunk {
	pending := p.world.Pending()
	player := p.world.PlayerPosition()
	slices.SortFunc(pending, func(a, b *chunk.Chunk) int {
		da, db := a.DistanceSq(player), b.DistanceSq(player)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
	if n := max(p.opts.UpdateBatch, 1); len(pending) > n {
		pending = pending[:n]
	}
	return pending
}

// light generates fresh chunks, rebuilds sunlight after edits and runs
// diffusion until it settles. Neighbours that receive light are queued for
// their own pass so they can push light back.
func (p *Pipeline) light(c *chunk.Chunk) {
	if c.IsFresh() {
		rep := p.chain.Generate(c, p.world)
		p.generated.Inc()
		for _, f := range rep.Failed() {
			p.passFailures.Inc()
			p.log.Error("generation pass failed", "pass", f.Pass, "chunk", c.Pos(), "error", f.Err)
		}
		c.SetRelight(true)
		// Faces and occlusion along every edge and corner were built
		// against an empty chunk.
		pos := c.Pos()
		for dx := -1; dx <= 1; dx++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dz == 0 {
					continue
				}
				if nc, ok := p.world.ChunkAt(chunk.Pos{X: pos.X + dx, Z: pos.Z + dz}); ok {
					nc.SetDirty(true)
				}
			}
		}
	}

	if c.NeedsRelight() {
		c.ClearLight()
		c.CalcSunlight(p.reg)
		c.SetRelight(false)
		c.SetLightDirty(true)
		c.SetDirty(true)
		p.relit.Inc()
		// Light the neighbours pushed in was cleared with ours, and their
		// border faces read the light we just rebuilt.
		for _, n := range c.Pos().Neighbors() {
			if nc, ok := p.world.ChunkAt(n); ok {
				nc.SetLightDirty(true)
				nc.SetDirty(true)
			}
		}
	}

	if !c.IsLightDirty() {
		return
	}
	c.SetLightDirty(false)
	res := c.Relax(p.reg, p.world, p.opts.RelaxationPasses)
	if res.Raised > 0 {
		c.SetDirty(true)
		for _, n := range c.Pos().Neighbors() {
			if nc, ok := p.world.ChunkAt(n); ok {
				nc.SetDirty(true)
			}
		}
	}
	for _, n := range res.Spilled {
		if nc, ok := p.world.ChunkAt(n); ok {
			nc.SetDirty(true)
			nc.SetLightDirty(true)
		}
	}
}

// mesh rebuilds geometry for every dirty chunk in parallel and returns the
// chunks it rebuilt. Chunks whose light has not settled stay dirty for a
// later pass.
func (p *Pipeline) mesh(batch []*chunk.Chunk) []*chunk.Chunk {
	var (
		wg    sync.WaitGroup
		built []*chunk.Chunk
	)
	for _, c := range batch {
		if !c.IsDirty() || c.IsLightDirty() {
			continue
		}
		c.SetDirty(false)
		built = append(built, c)
		wg.Add(1)
		p.pool.Submit(func() {
			defer wg.Done()
			c.SetMesh(p.mesher.Build(c, p.world))
			p.meshed.Inc()
		})
	}
	wg.Wait()
	return built
}

// publish hands a chunk's mesh to the renderer. A full queue re-marks the
// chunk dirty so a later pass retries.
func (p *Pipeline) publish(c *chunk.Chunk) {
	select {
	case p.ready <- c.Mesh():
	default:
		c.SetDirty(true)
		p.requeued.Inc()
	}
}

// Stats is a point-in-time summary of pipeline activity.
type Stats struct {
	Steps        int64 `json:"steps"`
	Generated    int64 `json:"generated"`
	Relit        int64 `json:"relit"`
	Meshed       int64 `json:"meshed"`
	Requeued     int64 `json:"requeued"`
	EditsApplied int64 `json:"edits_applied"`
	EditsDropped int64 `json:"edits_dropped"`
	PassFailures int64 `json:"pass_failures"`
	Streamed     int64 `json:"streamed"`
	ReadyQueued  int   `json:"ready_queued"`
	EditsQueued  int   `json:"edits_queued"`
}

// Stats returns the current counters and queue lengths.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Steps:        p.steps.Load(),
		Generated:    p.generated.Load(),
		Relit:        p.relit.Load(),
		Meshed:       p.meshed.Load(),
		Requeued:     p.requeued.Load(),
		EditsApplied: p.editsApplied.Load(),
		EditsDropped: p.editsDropped.Load(),
		PassFailures: p.passFailures.Load(),
		Streamed:     p.streamed.Load(),
		ReadyQueued:  len(p.ready),
		EditsQueued:  len(p.edits),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("pipeline: %d generated, %d meshed, %d relit, ready queue %d, edits %d queued/%d applied",
		s.Generated, s.Meshed, s.Relit, s.ReadyQueued, s.EditsQueued, s.EditsApplied)
}
