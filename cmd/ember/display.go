package main

import (
	"fmt"
	"strings"

	"github.com/sandevgo/ember/internal/core"
	"github.com/sandevgo/ember/internal/service/ui"
)

// newThoughtPrinter renders the thought stream to stdout. Logs go to
// stderr, so the stream itself stays pipeable.
func newThoughtPrinter() func(core.ThoughtRecord) {
	return func(rec core.ThoughtRecord) {
		switch rec.Origin {
		case core.OriginSeed:
			fmt.Println(ui.MetaStyle.Render(strings.Repeat("─", 60)))
			fmt.Println(ui.SeedStyle.Render(strings.TrimSpace(rec.Text)))
			fmt.Println(ui.MetaStyle.Render(strings.Repeat("─", 60)))

		case core.OriginModel:
			meta := fmt.Sprintf("[thought #%d — %s]", rec.Index, rec.CreatedAt.Format("15:04:05"))
			if n := len(rec.Invocations); n > 0 {
				meta = fmt.Sprintf("[thought #%d — %s | %d tool mention(s)]",
					rec.Index, rec.CreatedAt.Format("15:04:05"), n)
			}
			fmt.Println()
			fmt.Println(ui.MetaStyle.Render(meta))
			fmt.Println(ui.ThoughtStyle.Render(rec.Text))

		case core.OriginHuman:
			fmt.Println()
			fmt.Println(ui.HumanStyle.Render(strings.TrimSpace(rec.Text)))

		case core.OriginSummary:
			fmt.Println()
			fmt.Println(ui.SummaryStyle.Render("[compression] context distilled to:"))
			fmt.Println(ui.SummaryStyle.Render(rec.Text))
		}
	}
}
