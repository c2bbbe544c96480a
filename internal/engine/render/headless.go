package render

import "go.uber.org/atomic"

// Headless is a Renderer that draws nothing and counts what it was given.
type Headless struct {
	draws atomic.Int64
	quads atomic.Int64
	last  atomic.Int64
}

// Draw implements Renderer.
func (h *Headless) Draw(passes []Pass) error {
	q := 0
	for _, p := range passes {
		h.draws.Add(int64(len(p.Draws)))
		q += p.Quads()
	}
	h.quads.Add(int64(q))
	h.last.Store(int64(q))
	return nil
}

// LastQuads returns the number of quads drawn in the latest frame.
func (h *Headless) LastQuads() int64 { return h.last.Load() }

// Draws returns the total number of draw calls issued.
func (h *Headless) Draws() int64 { return h.draws.Load() }
