package report

import (
	"encoding/json"
	"fmt"
	"io"

	"ftl-htmllint/internal/extract"
	"ftl-htmllint/internal/textutil"
)

// FileTargets holds the lint targets extracted from one file.
type FileTargets struct {
	Path    string               `json:"path"`
	Locale  string               `json:"locale"`
	Targets []extract.LintTarget `json:"targets"`
}

// WriteTargetsTSV writes one row per lint target.
func WriteTargetsTSV(w io.Writer, files []FileTargets) error {
	if _, err := fmt.Fprintln(w, "file\tlocale\tname\tattribute\tvariant\tvalue"); err != nil {
		return fmt.Errorf("write TSV header: %w", err)
	}

	for _, f := range files {
		for _, t := range f.Targets {
			_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				textutil.Escape(f.Path),
				f.Locale,
				t.Name,
				t.Attribute,
				textutil.Escape(t.Variant),
				textutil.Escape(t.Value),
			)
			if err != nil {
				return fmt.Errorf("write TSV row: %w", err)
			}
		}
	}
	return nil
}

// WriteTargetsJSON writes files as an indented JSON array.
func WriteTargetsJSON(w io.Writer, files []FileTargets) error {
	return writeJSON(w, files)
}

// WriteFindingsJSON writes findings as an indented JSON array.
func WriteFindingsJSON(w io.Writer, findings []Finding) error {
	if findings == nil {
		findings = []Finding{}
	}
	return writeJSON(w, findings)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// Findings flattens the findings of results, in order.
func Findings(results []FileResult) []Finding {
	var out []Finding
	for _, r := range results {
		out = append(out, r.Findings...)
	}
	return out
}
