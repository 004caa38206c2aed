package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each project or
// tenant its own namespace in a shared backend.
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "project:billing:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey implements Keyer.
func (k *ScopedKeyer) LayoutKey(diagramHash string, opts any) string {
	return k.prefix + k.inner.LayoutKey(diagramHash, opts)
}
