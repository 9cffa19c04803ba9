package cache

// ScopedKeyer wraps a Keyer with a prefix so separate contexts (for
// example per-project cache directories shared by several tools) get
// isolated namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RenderKey generates a prefixed key for a rendered text diagram.
func (k *ScopedKeyer) RenderKey(input string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(input, opts)
}

// ImageKey generates a prefixed key for a rasterized diagram.
func (k *ScopedKeyer) ImageKey(renderHash string, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(renderHash, opts)
}
