package block

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed pack.schema.json
var packSchemaJSON string

var packSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("pack.schema.json", packSchemaJSON)
})

type packFile struct {
	Name              string      `json:"name"`
	AlwaysTransparent *ID         `json:"always_transparent"`
	Blocks            []packBlock `json:"blocks"`
}

type packBlock struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Invisible    bool   `json:"invisible"`
	Penetrable   bool   `json:"penetrable"`
	CastsShadows bool   `json:"casts_shadows"`
	Translucent  bool   `json:"translucent"`
	Billboard    bool   `json:"billboard"`
	Tiles        struct {
		Top, Side, Bottom *[2]int
	} `json:"tiles"`
	Colors struct {
		All, Top, Side, Bottom *[4]float32
	} `json:"colors"`
}

// ParsePack validates data against the pack schema and builds a Table.
func ParsePack(data []byte) (*Table, error) {
	schema, err := packSchema()
	if err != nil {
		return nil, fmt.Errorf("compile pack schema: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode pack: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate pack: %w", err)
	}

	var pf packFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pack: %w", err)
	}

	blocks := make([]Block, 0, len(pf.Blocks))
	for _, pb := range pf.Blocks {
		blocks = append(blocks, pb.toBlock())
	}

	var transparent ID
	if pf.AlwaysTransparent != nil {
		transparent = *pf.AlwaysTransparent
	}
	t, err := NewTable(pf.Name, blocks, transparent)
	if err != nil {
		return nil, fmt.Errorf("build pack %s: %w", pf.Name, err)
	}
	return t, nil
}

// LoadPackFile reads and parses a JSON pack from disk.
func LoadPackFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pack: %w", err)
	}
	return ParsePack(data)
}

func (pb packBlock) toBlock() Block {
	b := Block{
		ID:           pb.ID,
		Name:         pb.Name,
		Invisible:    pb.Invisible,
		Penetrable:   pb.Penetrable,
		CastsShadows: pb.CastsShadows,
		Translucent:  pb.Translucent,
		Billboard:    pb.Billboard,
		Colors:       white(),
	}

	tile := func(p *[2]int) [2]int {
		if p == nil {
			return [2]int{}
		}
		return *p
	}
	side := tile(pb.Tiles.Side)
	top, bottom := side, side
	if pb.Tiles.Top != nil {
		top = *pb.Tiles.Top
	}
	if pb.Tiles.Bottom != nil {
		bottom = *pb.Tiles.Bottom
	}
	b.Tiles = tiles(top, side, bottom)

	if c := pb.Colors.All; c != nil {
		for i := range b.Colors {
			b.Colors[i] = mgl32.Vec4(*c)
		}
	}
	if c := pb.Colors.Side; c != nil {
		for _, f := range []Face{Front, Back, Left, Right} {
			b.Colors[f] = mgl32.Vec4(*c)
		}
	}
	if c := pb.Colors.Top; c != nil {
		b.Colors[Top] = mgl32.Vec4(*c)
	}
	if c := pb.Colors.Bottom; c != nil {
		b.Colors[Bottom] = mgl32.Vec4(*c)
	}
	return b
}
