// Package seed loads the profile that opens the cognition context: the
// personality-defining text plus the optional tool-definitions block the
// compressor must preserve verbatim.
package seed

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sandevgo/ember/internal/core"
)

const (
	toolBlockHeader     = "Available tools:"
	toolBlockTerminator = "Permission is not needed."
)

// Load reads a seed file. The whole file is the core text; if it
// contains a tool-definitions block, that block is extracted for
// re-injection after compression but stays part of the core text too.
func Load(path string) (core.SeedProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.SeedProfile{}, fmt.Errorf("read seed file: %w", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return core.SeedProfile{}, fmt.Errorf("seed file %s is empty", path)
	}

	return core.SeedProfile{
		Name:      path,
		CoreText:  text,
		ToolBlock: ExtractToolBlock(text),
	}, nil
}

// Builtin returns one of the named built-in profiles.
func Builtin(name string) (core.SeedProfile, error) {
	text, ok := builtinSeeds[name]
	if !ok {
		return core.SeedProfile{}, fmt.Errorf("unknown seed %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return core.SeedProfile{
		Name:      name,
		CoreText:  text,
		ToolBlock: ExtractToolBlock(text),
	}, nil
}

// Names lists the built-in seed names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtinSeeds))
	for name := range builtinSeeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtractToolBlock pulls the verbatim tool-definitions section out of a
// seed text: from the "Available tools:" line through the permission
// line. When the headers are missing but tagged definition lines exist,
// those lines alone form the block. Returns "" when the seed defines no
// tools.
func ExtractToolBlock(text string) string {
	if !strings.Contains(text, "[TOOL:") {
		return ""
	}

	lines := strings.Split(text, "\n")

	var block []string
	inBlock := false
	for _, line := range lines {
		if strings.Contains(line, toolBlockHeader) {
			inBlock = true
		}
		if inBlock {
			block = append(block, line)
			if strings.Contains(line, toolBlockTerminator) {
				return strings.TrimSpace(strings.Join(block, "\n"))
			}
		}
	}

	// No headed section: collect the bare definition lines.
	var defs []string
	for _, line := range lines {
		if strings.Contains(line, "[TOOL:") && strings.Contains(line, "]") {
			defs = append(defs, line)
		}
	}
	if len(defs) == 0 {
		return ""
	}
	return toolBlockHeader + "\n" + strings.TrimSpace(strings.Join(defs, "\n")) +
		"\nYou may use these naturally in your thinking."
}
