// Package format defines the boundary between the tree model and concrete
// serialization formats. The tree library itself stays format-agnostic: an
// Adapter turns bytes into a node tree and back, and a Registry maps a
// declared format to its adapter. Only the JSON adapter ships here (it needs
// nothing beyond the standard library); YAML and TOML stay declared-only
// format values whose lookup reports ErrUnsupportedFormat.
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kodegenix/kgtree/pkg/tree"
)

// Sentinel errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrUnknownFormatName = errors.New("unknown format name")
)

// Adapter parses and serializes one format.
type Adapter interface {
	// Format identifies which format this adapter handles.
	Format() tree.Format
	// Parse decodes content into a node tree.
	Parse(content []byte) (*tree.Node, error)
	// Stringify encodes a node tree, optionally pretty-printed.
	Stringify(n *tree.Node, pretty bool) ([]byte, error)
}

// Registry maps formats to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[tree.Format]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[tree.Format]Adapter)}
}

// Register installs (or replaces) the adapter for its format.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters[a.Format()] = a
}

// Get returns the adapter for f, or ErrUnsupportedFormat when none is
// registered.
func (r *Registry) Get(f tree.Format) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	return a, nil
}

// defaultRegistry holds the adapters every caller gets without setup: JSON.
var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register(JSONAdapter{})

	return r
}()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// DetectFormat guesses a format from a file path's extension.
func DetectFormat(path string) tree.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return tree.FormatJSON
	case ".yaml", ".yml":
		return tree.FormatYAML
	case ".toml":
		return tree.FormatTOML
	default:
		return tree.FormatUnknown
	}
}

// ParseFormatName maps a user-supplied format name (a CLI flag, a config
// value) to its Format.
func ParseFormatName(name string) (tree.Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return tree.FormatJSON, nil
	case "yaml", "yml":
		return tree.FormatYAML, nil
	case "toml":
		return tree.FormatTOML, nil
	default:
		return tree.FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormatName, name)
	}
}
