package block

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnknownPack is returned by Load for names nobody registered.
var ErrUnknownPack = errors.New("unknown block pack")

var (
	packsMu sync.RWMutex
	packs   = map[string]func() *Table{}
)

// Register makes a pack factory available under name.
func Register(name string, factory func() *Table) {
	packsMu.Lock()
	defer packsMu.Unlock()
	packs[name] = factory
}

// Load builds the pack registered under name.
func Load(name string) (*Table, error) {
	packsMu.RLock()
	f, ok := packs[name]
	packsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPack, name)
	}
	return f(), nil
}

// RegisteredPacks returns the registered pack names, sorted.
func RegisteredPacks() []string {
	packsMu.RLock()
	defer packsMu.RUnlock()

	names := make([]string, 0, len(packs))
	for name := range packs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
