package block

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Air is the only block type every table must define.
const Air ID = 0

// Registry is the capability lookup consumed by lighting and meshing.
// All methods are pure and safe for concurrent use.
type Registry interface {
	IsInvisible(id ID) bool
	IsBillboard(id ID) bool
	IsTranslucent(id ID) bool
	CastsShadows(id ID) bool
	IsPenetrable(id ID) bool
	ColorOffset(id ID, f Face) mgl32.Vec4
	TextureOffset(id ID, f Face) mgl32.Vec2
}

// Table is an immutable Registry backed by a dense array.
// Unknown ids resolve to air.
type Table struct {
	name   string
	byID   [256]*Block
	byName map[string]*Block
	// AlwaysTransparent is the id whose neighbours always show their faces.
	alwaysTransparent ID
}

// NewTable builds a Table from blocks. It fails on duplicate ids or names,
// or when air is missing.
func NewTable(name string, blocks []Block, alwaysTransparent ID) (*Table, error) {
	t := &Table{
		name:              name,
		byName:            make(map[string]*Block, len(blocks)),
		alwaysTransparent: alwaysTransparent,
	}
	for i := range blocks {
		b := blocks[i]
		if t.byID[b.ID] != nil {
			return nil, fmt.Errorf("duplicate block id %d (%s)", b.ID, b.Name)
		}
		if _, ok := t.byName[b.Name]; ok {
			return nil, fmt.Errorf("duplicate block name %q", b.Name)
		}
		t.byID[b.ID] = &b
		t.byName[b.Name] = &b
	}
	if t.byID[Air] == nil {
		return nil, fmt.Errorf("table %s: air (id 0) not defined", name)
	}
	return t, nil
}

// Name returns the pack name the table was built from.
func (t *Table) Name() string { return t.name }

// AlwaysTransparent returns the id that never hides a neighbour's face.
func (t *Table) AlwaysTransparent() ID { return t.alwaysTransparent }

func (t *Table) ByID(id ID) (*Block, bool) {
	b := t.byID[id]
	return b, b != nil
}

func (t *Table) ByName(name string) (*Block, bool) {
	b, ok := t.byName[name]
	return b, ok
}

// All returns every block ordered by id.
func (t *Table) All() []*Block {
	out := make([]*Block, 0, len(t.byName))
	for _, b := range t.byID {
		if b != nil {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b *Block) int { return int(a.ID) - int(b.ID) })
	return out
}

func (t *Table) get(id ID) *Block {
	if b := t.byID[id]; b != nil {
		return b
	}
	return t.byID[Air]
}

func (t *Table) IsInvisible(id ID) bool   { return t.get(id).Invisible }
func (t *Table) IsBillboard(id ID) bool   { return t.get(id).Billboard }
func (t *Table) IsTranslucent(id ID) bool { return t.get(id).Translucent }
func (t *Table) CastsShadows(id ID) bool  { return t.get(id).CastsShadows }
func (t *Table) IsPenetrable(id ID) bool  { return t.get(id).Penetrable }

func (t *Table) ColorOffset(id ID, f Face) mgl32.Vec4 {
	return t.get(id).Colors[f]
}

func (t *Table) TextureOffset(id ID, f Face) mgl32.Vec2 {
	return t.get(id).TextureOffset(f)
}
