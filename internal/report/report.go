// Package report prints lint findings and exports lint targets.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"ftl-htmllint/internal/extract"
	"ftl-htmllint/internal/lint"
	"ftl-htmllint/internal/textutil"
)

// Finding is one issue raised against one lint target.
type Finding struct {
	File   string             `json:"file"`
	Locale string             `json:"locale"`
	Target extract.LintTarget `json:"target"`
	Issue  lint.Issue         `json:"issue"`
}

// FileResult is the outcome of linting one resource file.
type FileResult struct {
	Path     string    `json:"path"`
	Locale   string    `json:"locale"`
	Targets  int       `json:"targets"`
	Findings []Finding `json:"findings"`
	Err      error     `json:"-"`
}

// Summary totals a run.
type Summary struct {
	Files    int
	Failed   int
	Targets  int
	Findings int
}

// Summarize totals results.
func Summarize(results []FileResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Targets += r.Targets
		s.Findings += len(r.Findings)
	}
	return s
}

// Console prints results in the classic
//
//	path
//	  - [code] rule: "label = value"
//
// layout.
type Console struct {
	w      io.Writer
	path   *color.Color
	code   *color.Color
	rule   *color.Color
	errCol *color.Color
	ok     *color.Color
}

// NewConsole creates a Console writing to w, colored when useColor is set.
func NewConsole(w io.Writer, useColor bool) *Console {
	c := &Console{
		w:      w,
		path:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.FgRed),
		rule:   color.New(color.FgYellow),
		errCol: color.New(color.FgRed, color.Bold),
		ok:     color.New(color.FgGreen),
	}
	for _, col := range []*color.Color{c.path, c.code, c.rule, c.errCol, c.ok} {
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// Print writes every file with findings or errors, in the given order,
// followed by a summary line.
func (c *Console) Print(results []FileResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(c.w, "%s\n  %s\n", c.path.Sprint(r.Path), c.errCol.Sprintf("error: %v", r.Err))
			continue
		}
		if len(r.Findings) == 0 {
			continue
		}
		fmt.Fprintln(c.w, c.path.Sprint(r.Path))
		for _, f := range r.Findings {
			fmt.Fprintf(c.w, "  - %s %s: \"%s = %s\"\n",
				c.code.Sprintf("[%s]", f.Issue.Code),
				c.rule.Sprint(f.Issue.Rule),
				f.Target.Label(),
				textutil.Escape(f.Target.Value),
			)
		}
	}

	s := Summarize(results)
	line := fmt.Sprintf("%d issue(s) in %d file(s), %d string(s) checked", s.Findings, s.Files, s.Targets)
	if s.Failed > 0 {
		line += fmt.Sprintf(", %d file(s) unreadable", s.Failed)
	}
	if s.Findings == 0 && s.Failed == 0 {
		fmt.Fprintln(c.w, c.ok.Sprint(line))
		return
	}
	fmt.Fprintln(c.w, c.errCol.Sprint(line))
}
