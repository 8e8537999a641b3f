package source

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownSource is returned by Open for an unregistered kind.
var ErrUnknownSource = errors.New("unknown source kind")

// Constructor creates a Source for the given target (path, URL, ...).
type Constructor func(target string, cfg Config) (Source, error)

var registry = map[string]Constructor{}

// Register adds a source constructor under the given kind. It is meant to
// be called from init functions.
func Register(kind string, ctor Constructor) {
	registry[kind] = ctor
}

// Open builds a Source of the given kind.
func Open(kind, target string, cfg Config) (Source, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, kind)
	}
	return ctor(target, cfg)
}

// Kinds returns the names of all registered source kinds, sorted.
func Kinds() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
