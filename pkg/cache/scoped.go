package cache

// ScopedKeyer wraps a Keyer with a prefix so several users of one backend
// do not see each other's entries. The HTTP server scopes its keys this
// way to stay apart from CLI renders sharing the same Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "serve:")
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

// RenderKey generates a prefixed key for render outputs.
func (k *ScopedKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(graphHash, opts)
}

// DiagramKey generates a prefixed key for graph diagrams.
func (k *ScopedKeyer) DiagramKey(graphHash, format string) string {
	return k.prefix + k.inner.DiagramKey(graphHash, format)
}
