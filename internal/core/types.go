package core

import "time"

const (
	EmberName          = "Ember"
	EmberRepositoryURL = "https://github.com/sandevgo/ember"
	EmberVersion       = "0.1.0"
)

// Origin identifies who produced a context record.
type Origin string

const (
	OriginSeed    Origin = "seed"
	OriginModel   Origin = "model"
	OriginHuman   Origin = "human"
	OriginSummary Origin = "summary"
)

// ToolKind is the closed set of tool mentions the detector recognizes.
type ToolKind string

const (
	ToolSearch  ToolKind = "search"
	ToolWrite   ToolKind = "write"
	ToolAsk     ToolKind = "ask"
	ToolThink   ToolKind = "think"
	ToolUnknown ToolKind = "unknown"
)

// ToolInvocation is a tagged tool mention found in generated text.
// It is detected and recorded, never executed.
type ToolInvocation struct {
	Kind        ToolKind `json:"kind"`
	Argument    string   `json:"argument"`
	SourceIndex int      `json:"source_index"`
}

// ThoughtRecord is one committed entry of the cognition context.
// Records are immutable after creation and owned by the context store.
type ThoughtRecord struct {
	Index       int
	CreatedAt   time.Time
	Origin      Origin
	Text        string
	Invocations []ToolInvocation
}

// SeedProfile is the immutable startup configuration: the opening text
// that defines the personality, plus the verbatim tool-definitions block
// if the seed contains one. The tool block is opaque text to the core;
// it exists only to be re-injected after every compression.
type SeedProfile struct {
	Name      string
	CoreText  string
	ToolBlock string
}

// HasToolBlock reports whether the seed carried tool definitions.
func (s SeedProfile) HasToolBlock() bool {
	return s.ToolBlock != ""
}

// CompressionSummary is what replaces the accumulated context after a
// compression. Fallback marks a degraded deterministic truncation.
type CompressionSummary struct {
	RetainedCore  string
	OpenQuestions []string
	ToolBlock     string
	Fallback      bool
}
