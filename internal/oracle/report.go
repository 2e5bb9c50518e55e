package oracle

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the report as a summary table followed by failing cases
func (r Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Compliance Oracle Report\n\n")
	fmt.Fprintf(&b, "Overall: **%s** (mean pass rate %.4f)\n\n", verdictWord(r.Passed), r.MeanRate)

	b.WriteString("| Family | Pass rate | Threshold | Cases | Result |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, f := range r.Families {
		fmt.Fprintf(&b, "| %s | %.4f | %.2f | %d | %s |\n", f.Label(), f.PassRate, f.Threshold, len(f.Cases), verdictWord(f.Passed))
	}

	var failing []string
	for _, f := range r.Families {
		for _, c := range f.Cases {
			if !c.Passed {
				failing = append(failing, fmt.Sprintf("- `%s` %s: %s", f.Label(), c.Name, c.Detail))
			}
		}
	}
	if len(failing) > 0 {
		b.WriteString("\n## Failing cases\n\n")
		b.WriteString(strings.Join(failing, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the Markdown report to an HTML fragment
func (r Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(r.Markdown()))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func verdictWord(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
