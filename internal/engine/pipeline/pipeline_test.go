package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/go-theft-craft/voxel/internal/engine/world"
	"github.com/go-theft-craft/voxel/pkg/world/block"
	"github.com/go-theft-craft/voxel/pkg/world/chunk"
	"github.com/go-theft-craft/voxel/pkg/world/gen"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func defaultOptions() Options {
	return Options{
		UpdateBatch:      16,
		ReadyQueue:       256,
		EditQueue:        64,
		RelaxationPasses: 16,
		MeshWorkers:      2,
		StreamInterval:   time.Millisecond,
		StreamBurst:      1,
	}
}

func newPipeline(t *testing.T, view int, chain *gen.Chain, opts Options) (*Pipeline, *world.World) {
	t.Helper()
	reg := block.Classic()
	w := world.New(world.Options{ViewDistance: view, CacheCapacity: 64, EvictionBatch: 4, Daylight: chunk.DefaultDaylight})
	p := New(w, reg, chain, chunk.NewMesher(reg, chunk.DefaultDaylight), opts, discard())
	t.Cleanup(p.Close)
	return p, w
}

func flat(t *testing.T) *gen.Chain {
	t.Helper()
	ch, err := gen.New("flat", 0)
	if err != nil {
		t.Fatal(err)
	}
	return ch
}

// settle runs scheduling passes until nothing is pending.
func settle(t *testing.T, p *Pipeline) {
	t.Helper()
	for range 200 {
		if p.Step(context.Background()) == 0 {
			return
		}
	}
	t.Fatal("pipeline did not settle")
}

func TestStepSettlesWorld(t *testing.T) {
	p, w := newPipeline(t, 3, flat(t), defaultOptions())
	settle(t, p)

	if n := len(w.Pending()); n != 0 {
		t.Fatalf("%d chunks still pending", n)
	}
	seen := make(map[chunk.Pos]bool)
	for _, m := range p.Drain(1000) {
		seen[m.Pos] = true
		if m.Opaque.Empty() {
			t.Errorf("chunk %v has no opaque geometry", m.Pos)
		}
	}
	if len(seen) != 9 {
		t.Errorf("meshes published for %d chunks, want 9", len(seen))
	}
	if got := w.GetBlock(0, gen.FlatHeight, 0); got != block.Grass {
		t.Errorf("GetBlock at surface = %d, want grass", got)
	}
	if got := w.GetLight(0, gen.FlatHeight+1, 0); got != chunk.MaxLight {
		t.Errorf("GetLight above surface = %d, want %d", got, chunk.MaxLight)
	}
	if s := p.Stats(); s.Generated != 9 || s.PassFailures != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestSettledMeshesMatchRebuild(t *testing.T) {
	opts := defaultOptions()
	opts.UpdateBatch = 1
	p, w := newPipeline(t, 3, flat(t), opts)
	settle(t, p)

	for _, c := range w.Chunks() {
		got := c.Mesh()
		if got == nil {
			t.Errorf("chunk %v never meshed", c.Pos())
			continue
		}
		want := p.mesher.Build(c, w)
		if got.Quads() != want.Quads() {
			t.Errorf("chunk %v settled mesh has %d quads, rebuilt has %d", c.Pos(), got.Quads(), want.Quads())
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("chunk %v mesh mismatch (-rebuilt +settled):\n%s", c.Pos(), diff)
		}
	}
}

func TestPublishedMeshesHaveSettledLight(t *testing.T) {
	p, w := newPipeline(t, 3, flat(t), defaultOptions())
	p.Step(context.Background())

	ms := p.Drain(1000)
	if len(ms) != 9 {
		t.Fatalf("published %d meshes, want 9", len(ms))
	}
	for _, m := range ms {
		c, ok := w.ChunkAt(m.Pos)
		if !ok {
			t.Fatalf("published chunk %v not in grid", m.Pos)
		}
		if c.IsLightDirty() {
			t.Errorf("chunk %v published with unsettled light", m.Pos)
		}
		if got, want := m.Quads(), p.mesher.Build(c, w).Quads(); got != want {
			t.Errorf("chunk %v published %d quads, rebuilt has %d", m.Pos, got, want)
		}
	}
}

func TestHoldSkipsChunkStreamedOut(t *testing.T) {
	p, w := newPipeline(t, 3, flat(t), defaultOptions())
	gone, _ := w.ChunkAt(chunk.Pos{X: -1})
	kept, _ := w.ChunkAt(chunk.Pos{})

	w.SetPlayerPosition(mgl32.Vec3{chunk.SizeX + 8, 60, 8})
	w.Stream()
	if w.Contains(chunk.Pos{X: -1}) {
		t.Fatal("chunk (-1,0,0) still in grid")
	}

	if p.hold(gone) {
		t.Error("hold succeeded on a chunk outside the grid")
	}
	if gone.IsUpdating() {
		t.Error("hold left the update flag set on a skipped chunk")
	}
	if !p.hold(kept) {
		t.Fatal("hold failed on an active chunk")
	}
	kept.EndUpdate()
}

func TestStepNearestFirst(t *testing.T) {
	opts := defaultOptions()
	opts.UpdateBatch = 1
	p, w := newPipeline(t, 4, flat(t), opts)
	w.SetPlayerPosition(mgl32.Vec3{-8, 60, 8})

	if n := p.Step(context.Background()); n != 1 {
		t.Fatalf("Step() = %d, want 1", n)
	}
	ms := p.Drain(10)
	if len(ms) != 1 || ms[0].Pos != (chunk.Pos{X: -1}) {
		t.Fatalf("first mesh = %v, want chunk (-1,0,0)", ms)
	}
}

func TestEditsRelightChunk(t *testing.T) {
	p, w := newPipeline(t, 3, flat(t), defaultOptions())
	settle(t, p)
	p.Drain(1000)

	if !p.SetBlock(8, 10, 8, block.Stone) {
		t.Fatal("SetBlock rejected")
	}
	settle(t, p)

	if got := w.GetBlock(8, 10, 8); got != block.Stone {
		t.Fatalf("GetBlock = %d, want stone", got)
	}
	if got := w.GetLight(8, 9, 8); got != chunk.MaxLight-1 {
		t.Errorf("light under the block = %d, want %d", got, chunk.MaxLight-1)
	}
	if got := w.GetLight(8, 11, 8); got != chunk.MaxLight {
		t.Errorf("light above the block = %d, want %d", got, chunk.MaxLight)
	}
	if s := p.Stats(); s.EditsApplied != 1 {
		t.Errorf("EditsApplied = %d, want 1", s.EditsApplied)
	}
	if len(p.Drain(1000)) == 0 {
		t.Error("edit did not republish geometry")
	}
}

func TestEditQueueFull(t *testing.T) {
	opts := defaultOptions()
	opts.EditQueue = 1
	p, _ := newPipeline(t, 1, flat(t), opts)

	if !p.SetBlock(0, 10, 0, block.Stone) {
		t.Fatal("first edit rejected")
	}
	if p.SetBlock(1, 10, 0, block.Stone) {
		t.Error("edit accepted into a full queue")
	}
	if s := p.Stats(); s.EditsDropped != 1 || s.EditsQueued != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestReadyQueueFullRequeues(t *testing.T) {
	opts := defaultOptions()
	opts.ReadyQueue = 1
	p, w := newPipeline(t, 2, flat(t), opts)

	p.Step(context.Background())
	if s := p.Stats(); s.Requeued != 3 || s.ReadyQueued != 1 {
		t.Fatalf("Stats() = %+v, want 3 requeued and 1 ready", s)
	}

	seen := make(map[chunk.Pos]bool)
	for range 50 {
		for _, m := range p.Drain(1) {
			seen[m.Pos] = true
		}
		p.Step(context.Background())
	}
	for _, m := range p.Drain(1) {
		seen[m.Pos] = true
	}
	if len(seen) != 4 {
		t.Errorf("meshes delivered for %d chunks, want 4", len(seen))
	}
	if n := len(w.Pending()); n != 0 {
		t.Errorf("%d chunks still pending", n)
	}
}

type failingPass struct{}

func (failingPass) Name() string { return "broken" }

func (failingPass) Generate(*chunk.Chunk, chunk.Accessor) error { return errors.New("no terrain") }

func TestPassFailuresCounted(t *testing.T) {
	p, _ := newPipeline(t, 2, gen.NewChain(failingPass{}, gen.FlatPass{}), defaultOptions())
	settle(t, p)

	s := p.Stats()
	if s.PassFailures != 4 {
		t.Errorf("PassFailures = %d, want 4", s.PassFailures)
	}
	if s.Generated != 4 {
		t.Errorf("Generated = %d, want 4", s.Generated)
	}
}

func TestRunFollowsPlayer(t *testing.T) {
	p, w := newPipeline(t, 3, flat(t), defaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.RunUpdates(gctx) })
	g.Go(func() error { return p.RunStreaming(gctx) })

	target := chunk.Pos{X: 5}
	w.SetPlayerPosition(mgl32.Vec3{5*chunk.SizeX + 8, 60, 8})

	deadline := time.Now().Add(5 * time.Second)
	for !w.Contains(target) || len(w.Pending()) > 0 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("world did not follow the player")
		}
		p.Drain(1000)
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := g.Wait(); err != nil {
		t.Fatalf("Run returned %v", err)
	}
}
