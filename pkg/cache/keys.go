package cache

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key for the layout of the diagram whose
	// canonical encoding hashes to diagramHash, computed with opts.
	LayoutKey(diagramHash string, opts any) string
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(diagramHash string, opts any) string {
	return hashKey("layout", diagramHash, opts)
}
