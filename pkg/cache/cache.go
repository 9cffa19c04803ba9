// Package cache provides caching for rendered flowcharts.
//
// Rendering is deterministic, so a diagram can be cached by hashing the
// input text together with every option that affects the output. The
// CLI uses a file-backed cache so repeated renders of the same input
// are served without re-running the pipeline.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache implementations satisfy.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// RenderKeyOpts are the options that affect a rendered diagram. Any
// field change must produce a different cache key.
type RenderKeyOpts struct {
	Direction    string
	MaxTextWidth int
	MinBoxWidth  int
	HSpacing     int
	VSpacing     int
	Shadow       bool
	Rounded      bool
	Compact      bool
	Title        string
}

// ImageKeyOpts are the options that affect PNG rasterization of an
// already rendered diagram.
type ImageKeyOpts struct {
	FontSize   int
	Font       string
	Scale      int
	Padding    int
	Background string
	Foreground string
}

// Keyer generates cache keys for the render pipeline.
type Keyer interface {
	// RenderKey generates a key for a rendered text diagram.
	RenderKey(input string, opts RenderKeyOpts) string

	// ImageKey generates a key for a rasterized diagram, derived from
	// the hash of the text output.
	ImageKey(renderHash string, opts ImageKeyOpts) string
}

// DefaultKeyer generates unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RenderKey generates a key for a rendered text diagram.
func (k *DefaultKeyer) RenderKey(input string, opts RenderKeyOpts) string {
	return hashKey("render", input, opts)
}

// ImageKey generates a key for a rasterized diagram.
func (k *DefaultKeyer) ImageKey(renderHash string, opts ImageKeyOpts) string {
	return hashKey("image", renderHash, opts)
}
