// Package report renders a run summary as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/stats/senses"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Report collects everything shown on the summary page
type Report struct {
	Title       string
	Manifest    *run.RunManifest
	Comparisons []senses.EventComparison
}

// Markdown renders the report body
func (r *Report) Markdown() []byte {
	var b bytes.Buffer
	m := r.Manifest

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "- **Run:** `%s`\n", m.RunID)
	fmt.Fprintf(&b, "- **Command:** `%s`\n", m.Command)
	fmt.Fprintf(&b, "- **Config hash:** `%s`\n", m.ConfigHash.Short())
	fmt.Fprintf(&b, "- **Created:** %s\n\n", m.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if len(m.Params) > 0 {
		b.WriteString("## Parameters\n\n| Parameter | Value |\n|---|---|\n")
		keys := make([]string, 0, len(m.Params))
		for k := range m.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %v |\n", k, m.Params[k])
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Subjects\n\n%d included, %d skipped.\n\n", len(m.Included), len(m.Skipped))
	if len(m.Skipped) > 0 {
		b.WriteString("| Subject | Reason | Detail |\n|---|---|---|\n")
		for _, s := range m.Skipped {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Subject, s.Reason, s.Detail)
		}
		b.WriteString("\n")
	}

	if len(m.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range m.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if len(r.Comparisons) > 0 {
		b.WriteString("## Expert vs Novice\n\n")
		b.WriteString("| Event | n (E/N) | Expert mean | Novice mean | t | df | p | d | Signal |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
		for _, c := range r.Comparisons {
			fmt.Fprintf(&b, "| %s | %d/%d | %s | %s | %s | %s | %s | %s | %s |\n",
				c.Event, c.NExpert, c.NNovice,
				num(c.ExpertMean, 4), num(c.NoviceMean, 4),
				num(c.TStatistic, 3), num(c.DF, 1), num(c.PValue, 4), num(c.EffectSize, 3),
				c.Signal)
		}
		b.WriteString("\n")
	}

	if len(m.Outputs) > 0 {
		b.WriteString("## Outputs\n\n")
		for _, o := range m.Outputs {
			name := filepath.Base(o)
			fmt.Fprintf(&b, "- [%s](%s)\n", name, name)
		}
	}
	return b.Bytes()
}

// HTML renders the Markdown as a standalone page
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(r.Markdown())
	renderer := html.NewRenderer(html.RendererOptions{
		Title: r.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

// WriteFiles writes report-<run>.md and report-<run>.html into dir
func (r *Report) WriteFiles(dir string) (mdPath, htmlPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	base := filepath.Join(dir, "report-"+r.Manifest.RunID.String())
	mdPath, htmlPath = base+".md", base+".html"
	if err := os.WriteFile(mdPath, r.Markdown(), 0o644); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(htmlPath, r.HTML(), 0o644); err != nil {
		return "", "", err
	}
	return mdPath, htmlPath, nil
}

func num(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "∞"
		}
		return "-∞"
	}
	return fmt.Sprintf("%.*f", prec, v)
}
