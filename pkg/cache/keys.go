package cache

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs always produce equal keys.
type Keyer interface {
	// RenderKey is the key of an encoded render output.
	RenderKey(graphHash string, opts RenderKeyOpts) string

	// DiagramKey is the key of a rendered graph diagram.
	DiagramKey(graphHash, format string) string
}

// RenderKeyOpts holds the render inputs besides the graph.
type RenderKeyOpts struct {
	InputHash string `json:"input"`
	Format    string `json:"format"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}

// DiagramKey returns "diagram:<sha256>".
func (DefaultKeyer) DiagramKey(graphHash, format string) string {
	return hashKey("diagram", graphHash, format)
}
