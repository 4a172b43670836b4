package chunkpipe

import (
	"errors"
	"fmt"
	"log/slog"
)

// Documented defaults, carried by DefaultConfig.
const (
	DefaultMaxTokens       = 500
	DefaultOverlapTokens   = 100
	DefaultMaxRowsPerChunk = 10
)

// TableMode selects how table elements are chunked. The two modes are
// mutually exclusive per pipeline; a table is never chunked both ways.
type TableMode string

const (
	// TableModeWhole emits one chunk per table, regardless of size.
	TableModeWhole TableMode = "whole"
	// TableModeRows splits a table's data rows into groups of at most
	// MaxRowsPerChunk, one chunk per group.
	TableModeRows TableMode = "rows"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("chunkpipe: invalid configuration")

// Config configures a Pipeline.
type Config struct {
	// MaxTokens is the token budget per text chunk (default: 500).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// OverlapTokens is the number of trailing tokens repeated at the
	// start of the next chunk. Must be strictly less than MaxTokens.
	// Zero is valid and means no overlap.
	OverlapTokens int `json:"overlap_tokens" yaml:"overlap_tokens"`

	// TableMode selects whole-table or row-group chunking (default: whole).
	TableMode TableMode `json:"table_mode" yaml:"table_mode"`

	// MaxRowsPerChunk bounds the row groups in TableModeRows (default: 10).
	MaxRowsPerChunk int `json:"max_rows_per_chunk" yaml:"max_rows_per_chunk"`

	// Metadata is merged into every emitted chunk's metadata. Keys that
	// collide with the reserved metadata keys are ignored.
	Metadata map[string]string `json:"metadata" yaml:"metadata"`

	// Logger for debug messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with the documented defaults. Use it
// instead of a zero Config when the 100-token overlap default is wanted:
// defaults() cannot fill OverlapTokens, since an explicit zero overlap
// must stay zero.
func DefaultConfig() Config {
	return Config{
		MaxTokens:       DefaultMaxTokens,
		OverlapTokens:   DefaultOverlapTokens,
		TableMode:       TableModeWhole,
		MaxRowsPerChunk: DefaultMaxRowsPerChunk,
	}
}

func (c *Config) defaults() {
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MaxRowsPerChunk == 0 {
		c.MaxRowsPerChunk = DefaultMaxRowsPerChunk
	}
	if c.TableMode == "" {
		c.TableMode = TableModeWhole
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// validate rejects configurations before any text is processed. Overlap
// greater than or equal to MaxTokens is never clamped: it would make the
// window either loop forever or emit duplicate-only chunks.
func (c *Config) validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidConfig, c.MaxTokens)
	}
	if c.OverlapTokens < 0 {
		return fmt.Errorf("%w: overlap_tokens must be non-negative, got %d", ErrInvalidConfig, c.OverlapTokens)
	}
	if c.OverlapTokens >= c.MaxTokens {
		return fmt.Errorf("%w: overlap_tokens (%d) must be strictly less than max_tokens (%d)",
			ErrInvalidConfig, c.OverlapTokens, c.MaxTokens)
	}
	if c.MaxRowsPerChunk <= 0 {
		return fmt.Errorf("%w: max_rows_per_chunk must be positive, got %d", ErrInvalidConfig, c.MaxRowsPerChunk)
	}
	switch c.TableMode {
	case TableModeWhole, TableModeRows:
	default:
		return fmt.Errorf("%w: unknown table_mode %q", ErrInvalidConfig, c.TableMode)
	}
	return nil
}
