package gen

import (
	"errors"
	"fmt"

	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// ErrUnknownGenerator is returned by New for an unregistered generator kind.
var ErrUnknownGenerator = errors.New("unknown generator")

// Pass is one generation step run against a fresh chunk. w resolves
// neighbouring cells and may be nil.
type Pass interface {
	Name() string
	Generate(c *chunk.Chunk, w chunk.Accessor) error
}

// Result records the outcome of one pass.
type Result struct {
	Pass string
	Err  error
}

// Report lists the outcome of every pass run for one chunk.
type Report struct {
	Pos     chunk.Pos
	Results []Result
}

// Failed returns the results whose pass returned an error or panicked.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Err joins every pass failure, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("pass %s: %w", res.Pass, res.Err))
	}
	return errors.Join(errs...)
}

// Chain runs passes in registration order. A failing pass does not stop
// the passes after it.
type Chain struct {
	passes []Pass
}

// NewChain returns a chain over passes.
func NewChain(passes ...Pass) *Chain {
	return &Chain{passes: passes}
}

// Passes returns the registered passes in run order.
func (ch *Chain) Passes() []Pass { return ch.passes }

// Generate runs every pass once on a fresh chunk and clears its fresh flag.
// A chunk that is not fresh is left untouched and yields an empty report.
func (ch *Chain) Generate(c *chunk.Chunk, w chunk.Accessor) Report {
	rep := Report{Pos: c.Pos()}
	if !c.IsFresh() {
		return rep
	}
	for _, p := range ch.passes {
		rep.Results = append(rep.Results, Result{Pass: p.Name(), Err: runPass(p, c, w)})
	}
	c.SetFresh(false)
	return rep
}

func runPass(p Pass, c *chunk.Chunk, w chunk.Accessor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Generate(c, w)
}

// Kinds lists the generator kinds accepted by New.
var Kinds = []string{"default", "flat"}

// New builds the pass chain for a generator kind.
func New(kind string, seed int64) (*Chain, error) {
	switch kind {
	case "default", "":
		return NewDefault(seed), nil
	case "flat":
		return NewChain(FlatPass{}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, kind)
	}
}
