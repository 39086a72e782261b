package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/nprs/pkg/cache"
	"github.com/matzehuels/nprs/pkg/observability"
	"github.com/matzehuels/nprs/pkg/raster"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Every run
// builds its own graph, so multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL applies to cached render outputs.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLRender,
	}
}

// Execute runs the complete decode → compile → verify → render → encode
// pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Format: opts.Format,
	}
	logger := r.Logger.With("run", result.RunID)

	// Stage 1: Decode
	start := time.Now()
	input, err := raster.Decode(bytes.NewReader(opts.Input))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	result.Stats.DecodeTime = time.Since(start)
	result.Stats.Width, result.Stats.Height = input.Resolution()

	// Stage 2: Compile
	hooks := observability.Pipeline()
	hooks.OnCompileStart(ctx, opts.ScriptName)
	start = time.Now()
	compiled, err := Compile(opts, input)
	if err != nil {
		hooks.OnCompileComplete(ctx, opts.ScriptName, 0, time.Since(start), err)
		return nil, fmt.Errorf("compile: %w", err)
	}
	result.GraphHash = compiled.Hash
	result.Stats.CompileTime = time.Since(start)
	result.Stats.PassCount = compiled.Graph.Len() - 1
	result.Stats.EdgeCount = compiled.EdgeCount()
	hooks.OnCompileComplete(ctx, opts.ScriptName, result.Stats.PassCount, result.Stats.CompileTime, nil)

	logger.Info("compiled script",
		"script", opts.ScriptName,
		"passes", result.Stats.PassCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.CompileTime)

	// Stage 3: Verify
	start = time.Now()
	err = compiled.Graph.Verify()
	result.Stats.VerifyTime = time.Since(start)
	hooks.OnVerify(ctx, result.Stats.PassCount, result.Stats.VerifyTime, err)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	cacheKey := r.Keyer.RenderKey(compiled.Hash, cache.RenderKeyOpts{
		InputHash: cache.Hash(opts.Input),
		Format:    opts.Format,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			result.Output = data
			result.CacheInfo.RenderHit = true
			observability.Cache().OnCacheHit(ctx, "render")
			logger.Info("render cache hit", "bytes", len(data))
			return result, nil
		} else if err != nil {
			logger.Warn("cache lookup failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	// Stage 4: Render
	hooks.OnRenderStart(ctx, result.Stats.PassCount)
	start = time.Now()
	img, err := Render(compiled)
	result.Stats.RenderTime = time.Since(start)
	hooks.OnRenderComplete(ctx, result.Stats.Width, result.Stats.Height, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	logger.Info("rendered graph",
		"width", result.Stats.Width,
		"height", result.Stats.Height,
		"duration", result.Stats.RenderTime)

	// Stage 5: Encode
	start = time.Now()
	out, err := Encode(img, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Output = out
	result.Stats.EncodeTime = time.Since(start)

	if err := r.Cache.Set(ctx, cacheKey, out, r.TTL); err != nil {
		logger.Warn("cache store failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "render", len(out))
	}

	logger.Debug("encoded output", "format", opts.Format, "bytes", len(out), "duration", result.Stats.EncodeTime)
	return result, nil
}

// Check compiles and verifies the script without rendering it. When opts
// carries no input, a 1x1 placeholder stands in for it.
func (r *Runner) Check(ctx context.Context, opts Options) (*Compiled, error) {
	r.applyLogger(&opts)

	input := raster.Transparent(1, 1)
	if len(opts.Input) > 0 {
		var err error
		if input, err = raster.Decode(bytes.NewReader(opts.Input)); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	}

	compiled, err := Compile(opts, input)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if err := compiled.Graph.Verify(); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	r.Logger.Debug("script ok", "script", opts.ScriptName, "passes", compiled.Graph.Len()-1)
	return compiled, nil
}

// Diagram compiles the script and draws its graph. The graph is not
// verified, so diagrams of broken scripts can still be inspected. SVG
// output is cached.
func (r *Runner) Diagram(ctx context.Context, opts Options, format string) ([]byte, bool, error) {
	r.applyLogger(&opts)
	if err := ValidateDiagramFormat(format); err != nil {
		return nil, false, err
	}

	compiled, err := Compile(opts, raster.Transparent(1, 1))
	if err != nil {
		return nil, false, fmt.Errorf("compile: %w", err)
	}

	if format != DiagramSVG {
		data, err := RenderDiagram(ctx, compiled, format)
		return data, false, err
	}

	cacheKey := r.Keyer.DiagramKey(compiled.Hash, format)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "diagram")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "diagram")
	}

	data, err := RenderDiagram(ctx, compiled, format)
	if err != nil {
		return nil, false, fmt.Errorf("diagram: %w", err)
	}
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLDiagram); err == nil {
		observability.Cache().OnCacheSet(ctx, "diagram", len(data))
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
