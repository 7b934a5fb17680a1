package filewalker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
)

// FileEntry is a discovered resource file.
type FileEntry struct {
	Path string
	// Locale is the name of the directory holding the file, which is the
	// locale code in the usual locales/<locale>/<file> layout.
	Locale string
}

// Expand resolves glob patterns ("*", "?", "[...]", "{a,b}" and "**") to
// files, sorted by path and deduplicated. A pattern without wildcards
// names a single file, which must exist.
func Expand(patterns []string) ([]FileEntry, error) {
	seen := make(map[string]bool)
	var entries []FileEntry

	add := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		entries = append(entries, FileEntry{
			Path:   p,
			Locale: filepath.Base(filepath.Dir(p)),
		})
	}

	for _, pattern := range patterns {
		matches, err := expandOne(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			log.Warn().Str("pattern", pattern).Msg("No files matched")
		}
		for _, m := range matches {
			add(m)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	log.Debug().Int("count", len(entries)).Strs("patterns", patterns).Msg("Discovered files")
	return entries, nil
}

func expandOne(pattern string) ([]string, error) {
	clean := path.Clean(filepath.ToSlash(pattern))

	if !hasMeta(clean) {
		info, err := os.Stat(filepath.FromSlash(clean))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", pattern, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory, not a file pattern", pattern)
		}
		return []string{filepath.FromSlash(clean)}, nil
	}

	globs, err := compile(clean)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %s: %w", pattern, err)
	}

	base := staticBase(clean)
	var matches []string
	err = filepath.WalkDir(filepath.FromSlash(base), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == filepath.FromSlash(base) {
				return fs.SkipAll
			}
			log.Warn().Err(err).Str("path", p).Msg("Error walking path")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		candidate := filepath.ToSlash(p)
		for _, g := range globs {
			if g.Match(candidate) {
				matches = append(matches, p)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", base, err)
	}
	return matches, nil
}

// compile returns the glob for pattern plus, when it contains "**/", a
// variant where "**/" matches no directory at all.
func compile(pattern string) ([]glob.Glob, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	globs := []glob.Glob{g}

	if strings.Contains(pattern, "**/") {
		if alt, err := glob.Compile(strings.ReplaceAll(pattern, "**/", ""), '/'); err == nil {
			globs = append(globs, alt)
		}
	}
	return globs, nil
}

// staticBase returns the leading directories of pattern that contain no
// wildcard, or "." when the first segment already has one.
func staticBase(pattern string) string {
	segments := strings.Split(pattern, "/")
	var static []string
	for _, seg := range segments[:len(segments)-1] {
		if hasMeta(seg) {
			break
		}
		static = append(static, seg)
	}
	if len(static) == 0 {
		return "."
	}
	if len(static) == 1 && static[0] == "" {
		return "/"
	}
	return strings.Join(static, "/")
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
