package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful in service deployments where different tenants or
// environments need separate cache namespaces.
//
// Example usage:
//
//	// Tenant-specific keys
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
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

// MatrixKey generates a prefixed key for matrix caching.
func (k *ScopedKeyer) MatrixKey(content string, opts MatrixKeyOpts) string {
	return k.prefix + k.inner.MatrixKey(content, opts)
}

// LogoKey generates a prefixed key for fetched logo caching.
func (k *ScopedKeyer) LogoKey(url string) string {
	return k.prefix + k.inner.LogoKey(url)
}

// ImageKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ImageKey(matrixHash string, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(matrixHash, opts)
}
