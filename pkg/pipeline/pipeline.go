// Package pipeline runs nprs scripts end to end.
//
// A run goes through five stages:
//
//  1. Decode: read the input image
//  2. Compile: parse and interpret the script, then build its render graph
//  3. Verify: check the graph and allocate its buffers
//  4. Render: execute the passes
//  5. Encode: write the display pass's buffer in the output format
//
// The CLI and the HTTP server both go through a [Runner] so caching and
// logging behave the same for either entry point. Encoded outputs are
// cached under a key derived from the compiled graph, the input bytes and
// the output format, so two scripts that compile to the same graph share
// cache entries.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Script: src,
//	    Input:  imageBytes,
//	    Args:   []string{"sigma=3.0"},
//	    Format: "png",
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("out.png", result.Output, 0644)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/pass"
	"github.com/matzehuels/nprs/pkg/passes"
	"github.com/matzehuels/nprs/pkg/raster"
)

const (
	// DefaultScriptName labels scripts that were not read from a file.
	DefaultScriptName = "script.nprs"

	// DefaultFormat is the default output image format.
	DefaultFormat = "png"
)

// Diagram formats produced by [Runner.Diagram].
const (
	DiagramDOT  = "dot"
	DiagramSVG  = "svg"
	DiagramJSON = "json"
)

// ValidDiagramFormats is the set of supported diagram formats.
var ValidDiagramFormats = map[string]bool{
	DiagramDOT:  true,
	DiagramSVG:  true,
	DiagramJSON: true,
}

// Options configures one pipeline run.
type Options struct {
	// Script is the nprs source text.
	Script string `json:"script"`
	// ScriptName is used in syntax error positions.
	ScriptName string `json:"script_name,omitempty"`
	// Args are NAME=EXPR argument overrides.
	Args []string `json:"args,omitempty"`
	// Format is the output image format name ("png", "jpeg", ...).
	Format string `json:"format,omitempty"`
	// Refresh skips the cache lookup; the fresh output is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Input is the encoded input image.
	Input []byte `json:"-"`

	Logger   *log.Logger    `json:"-"`
	Registry *pass.Registry `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and HTTP responses.
	RunID string

	// GraphHash is the content hash of the compiled graph.
	GraphHash string

	// Output is the encoded display image.
	Output []byte

	// Format is the output format name.
	Format string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PassCount   int
	EdgeCount   int
	Width       int
	Height      int
	DecodeTime  time.Duration
	CompileTime time.Duration
	VerifyTime  time.Duration
	RenderTime  time.Duration
	EncodeTime  time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether the encoded output came from cache
}

// ValidateFormat checks that format names an image encoding.
func ValidateFormat(format string) error {
	_, err := raster.FormatFromName(format)
	return err
}

// ValidateDiagramFormat checks that format is a supported diagram format.
func ValidateDiagramFormat(format string) error {
	if !ValidDiagramFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid diagram format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for a
// full run. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompile(); err != nil {
		return err
	}
	if len(o.Input) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input image is required")
	}
	o.SetRenderDefaults()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCompile checks the fields needed to compile the script and
// sets compile defaults.
func (o *Options) ValidateForCompile() error {
	if o.Script == "" {
		return errors.New(errors.ErrCodeInvalidInput, "script is required")
	}
	if o.ScriptName == "" {
		o.ScriptName = DefaultScriptName
	}
	if o.Registry == nil {
		o.Registry = passes.Registry()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
