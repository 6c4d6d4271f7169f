// Package detect scans generated text for tagged tool mentions of the
// form [TOOL:kind:argument]. Detection is pure classification: nothing
// is executed, the invocations only flow into the record and the journal
// so an external gateway can act on them later.
package detect

import (
	"strings"

	"github.com/sandevgo/ember/internal/core"
)

const tagPrefix = "[TOOL:"

// Parse returns every tool mention in text, in order of appearance.
// Unrecognized kinds and unterminated tags become ToolUnknown; malformed
// syntax never produces an error, the surrounding text stays an ordinary
// thought.
func Parse(text string, sourceIndex int) []core.ToolInvocation {
	var invocations []core.ToolInvocation

	rest := text
	for {
		i := strings.Index(rest, tagPrefix)
		if i < 0 {
			break
		}
		inner := rest[i+len(tagPrefix):]

		end := strings.Index(inner, "]")
		if end < 0 {
			// Unterminated tag: classify the line remainder as unknown.
			remainder := inner
			if nl := strings.IndexByte(remainder, '\n'); nl >= 0 {
				remainder = remainder[:nl]
			}
			invocations = append(invocations, core.ToolInvocation{
				Kind:        core.ToolUnknown,
				Argument:    strings.TrimSpace(remainder),
				SourceIndex: sourceIndex,
			})
			break
		}

		kind, argument := splitTag(inner[:end])
		invocations = append(invocations, core.ToolInvocation{
			Kind:        kind,
			Argument:    argument,
			SourceIndex: sourceIndex,
		})

		rest = rest[i+len(tagPrefix)+end+1:]
	}

	return invocations
}

// splitTag takes the tag body after "[TOOL:" and before "]". The kind is
// everything up to the first colon; the argument is the remainder
// verbatim, so write keeps its filename:content payload intact.
func splitTag(body string) (core.ToolKind, string) {
	kindStr := body
	argument := ""
	if c := strings.IndexByte(body, ':'); c >= 0 {
		kindStr = body[:c]
		argument = body[c+1:]
	}
	return kindOf(kindStr), strings.TrimSpace(argument)
}

func kindOf(s string) core.ToolKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "search":
		return core.ToolSearch
	case "write":
		return core.ToolWrite
	case "ask":
		return core.ToolAsk
	case "think":
		return core.ToolThink
	default:
		return core.ToolUnknown
	}
}
