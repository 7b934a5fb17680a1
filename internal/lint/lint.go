// Package lint validates the markup embedded in translated strings.
package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Issue is a single rule violation.
type Issue struct {
	Code    string `json:"code"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Linter checks one string of markup.
type Linter interface {
	Lint(ctx context.Context, text string) ([]Issue, error)
}

// Rule names and codes.
const (
	RuleTagBans          = "tag-bans"
	RuleIDClassStyle     = "id-class-style"
	RuleTagClose         = "tag-close"
	RuleAttrNoDup        = "attr-no-dup"
	RuleTagNameLowercase = "tag-name-lowercase"
)

var ruleCodes = map[string]string{
	RuleTagBans:          "E001",
	RuleIDClassStyle:     "E002",
	RuleTagClose:         "E003",
	RuleAttrNoDup:        "E004",
	RuleTagNameLowercase: "E005",
}

// idClassStyles maps a style name to the pattern id and class values must
// match.
var idClassStyles = map[string]*regexp.Regexp{
	"dash":       regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`),
	"underscore": regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`),
	"camel":      regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`),
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Options configures an HTMLLinter.
type Options struct {
	// BannedTags are lower-case tag names that may not appear.
	BannedTags []string
	// IDClassStyle is "dash", "underscore", "camel", or "" to disable.
	IDClassStyle string
}

// DefaultOptions bans <style> and <i> and wants dash-case ids and classes.
func DefaultOptions() Options {
	return Options{
		BannedTags:   []string{"style", "i"},
		IDClassStyle: "dash",
	}
}

// HTMLLinter checks markup fragments with the x/net/html tokenizer.
type HTMLLinter struct {
	banned  map[string]bool
	idClass *regexp.Regexp
	style   string
}

// NewHTMLLinter builds a linter. An unknown IDClassStyle is an error.
func NewHTMLLinter(opts Options) (*HTMLLinter, error) {
	l := &HTMLLinter{banned: make(map[string]bool, len(opts.BannedTags))}
	for _, tag := range opts.BannedTags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			l.banned[tag] = true
		}
	}

	switch opts.IDClassStyle {
	case "", "none":
	default:
		re, ok := idClassStyles[opts.IDClassStyle]
		if !ok {
			return nil, fmt.Errorf("unknown id-class-style %q", opts.IDClassStyle)
		}
		l.idClass = re
		l.style = opts.IDClassStyle
	}
	return l, nil
}

// Lint tokenizes text and reports every rule violation in document order.
func (l *HTMLLinter) Lint(ctx context.Context, text string) ([]Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var issues []Issue
	report := func(rule, format string, args ...any) {
		issues = append(issues, Issue{
			Code:    ruleCodes[rule],
			Rule:    rule,
			Message: fmt.Sprintf(format, args...),
		})
	}

	var open []string
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				for i := len(open) - 1; i >= 0; i-- {
					report(RuleTagClose, "tag <%s> is not closed", open[i])
				}
				return issues, nil
			}
			return issues, fmt.Errorf("tokenize markup: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			name, hasAttr := z.TagName()
			tag := string(name)

			if written := rawTagName(raw, 1); written != tag && strings.ToLower(written) == tag {
				report(RuleTagNameLowercase, "tag name <%s> is not lower case", written)
			}
			if l.banned[tag] {
				report(RuleTagBans, "tag <%s> is banned", tag)
			}
			if hasAttr {
				l.checkAttributes(z, tag, report)
			}
			if tt == html.StartTagToken && !voidElements[tag] {
				open = append(open, tag)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}

			idx := lastIndex(open, tag)
			if idx < 0 {
				report(RuleTagClose, "closing tag </%s> has no matching opening tag", tag)
				continue
			}
			for i := len(open) - 1; i > idx; i-- {
				report(RuleTagClose, "tag <%s> is not closed before </%s>", open[i], tag)
			}
			open = open[:idx]
		}
	}
}

func (l *HTMLLinter) checkAttributes(z *html.Tokenizer, tag string, report func(rule, format string, args ...any)) {
	seen := make(map[string]bool)
	for {
		key, val, more := z.TagAttr()
		name := string(key)
		value := string(val)

		if seen[name] {
			report(RuleAttrNoDup, "attribute %q is duplicated on <%s>", name, tag)
		}
		seen[name] = true

		if l.idClass != nil {
			switch name {
			case "id":
				if !l.idClass.MatchString(value) {
					report(RuleIDClassStyle, "id %q is not %s-case", value, l.style)
				}
			case "class":
				for _, class := range strings.Fields(value) {
					if !l.idClass.MatchString(class) {
						report(RuleIDClassStyle, "class %q is not %s-case", class, l.style)
					}
				}
			}
		}

		if !more {
			return
		}
	}
}

// rawTagName reads the tag name as written in raw, starting at offset.
func rawTagName(raw string, offset int) string {
	if offset >= len(raw) {
		return ""
	}
	end := offset
	for end < len(raw) {
		c := raw[end]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '/' || c == '>' {
			break
		}
		end++
	}
	return raw[offset:end]
}

func lastIndex(stack []string, tag string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == tag {
			return i
		}
	}
	return -1
}
