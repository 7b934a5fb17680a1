package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftl-htmllint/internal/config"
	"ftl-htmllint/internal/filewalker"
	"ftl-htmllint/internal/fluent"
)

// Test Plan for the lint and extract commands:
// - A clean resource exits zero and prints a green summary
// - Banned markup is reported per file and makes the command fail
// - Unreadable files are reported and make the command fail
// - extract writes TSV or JSON to stdout or to --output

func testConfig() *config.Config {
	return &config.Config{
		WorkerCount:  2,
		BatchSize:    10,
		BannedTags:   []string{"style", "i"},
		IDClassStyle: "dash",
		LogLevel:     "error",
	}
}

// resourceJSON builds a Resource holding one message per id/text pair.
func resourceJSON(t *testing.T, pairs ...string) []byte {
	t.Helper()

	var body []map[string]any
	for i := 0; i+1 < len(pairs); i += 2 {
		body = append(body, map[string]any{
			"type": "Message",
			"id":   map[string]any{"type": "Identifier", "name": pairs[i]},
			"value": map[string]any{
				"type":     "Pattern",
				"elements": []any{map[string]any{"type": "TextElement", "value": pairs[i+1]}},
			},
			"attributes": []any{},
		})
	}
	data, err := json.Marshal(map[string]any{"type": "Resource", "body": body})
	require.NoError(t, err)
	return data
}

func writeLocale(t *testing.T, root, locale string, data []byte) string {
	t.Helper()

	dir := filepath.Join(root, "locales", locale)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(testConfig())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLint_Clean(t *testing.T) {
	root := t.TempDir()
	writeLocale(t, root, "en", resourceJSON(t, "hello", "Hello <b>world</b>", "bye", "Bye"))

	out, err := run(t, "lint", "--no-color", filepath.Join(root, "locales", "*", "app.json"))
	require.NoError(t, err)
	assert.Equal(t, "0 issue(s) in 1 file(s), 2 string(s) checked\n", out)
}

func TestLint_ReportsFindings(t *testing.T) {
	root := t.TempDir()
	writeLocale(t, root, "en", resourceJSON(t, "hello", "Hello"))
	fr := writeLocale(t, root, "fr", resourceJSON(t, "hello", "Salut <i>toi</i>"))

	out, err := run(t, "lint", "--no-color", filepath.Join(root, "locales", "**", "*.json"))
	require.ErrorIs(t, err, errIssuesFound)
	assert.Equal(t, fr+"\n"+
		`  - [E001] tag-bans: "hello = Salut <i>toi</i>"`+"\n"+
		"1 issue(s) in 2 file(s), 2 string(s) checked\n", out)
}

func TestLint_JSONFormat(t *testing.T) {
	root := t.TempDir()
	path := writeLocale(t, root, "de", resourceJSON(t, "x", "<style>a</style>"))

	out, err := run(t, "lint", "--format", "json", path)
	require.ErrorIs(t, err, errIssuesFound)

	var findings []struct {
		File   string `json:"file"`
		Locale string `json:"locale"`
		Issue  struct {
			Code string `json:"code"`
		} `json:"issue"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &findings))
	require.Len(t, findings, 1)
	assert.Equal(t, path, findings[0].File)
	assert.Equal(t, "de", findings[0].Locale)
	assert.Equal(t, "E001", findings[0].Issue.Code)
}

func TestLint_UnreadableFile(t *testing.T) {
	root := t.TempDir()
	path := writeLocale(t, root, "en", []byte(`{"type": "Message"}`))

	out, err := run(t, "lint", "--no-color", path)
	require.ErrorIs(t, err, errIssuesFound)
	assert.Contains(t, out, "error: decode "+path)
	assert.Contains(t, out, "1 file(s) unreadable")
}

func TestLint_Arguments(t *testing.T) {
	_, err := run(t, "lint")
	assert.Error(t, err)

	_, err = run(t, "lint", "--format", "xml", "*.json")
	assert.ErrorContains(t, err, `unknown format "xml"`)

	_, err = run(t, "lint", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "expand patterns")
}

func TestExtract_TSVToStdout(t *testing.T) {
	root := t.TempDir()
	path := writeLocale(t, root, "en", resourceJSON(t, "a", "One", "b", "Two"))

	out, err := run(t, "extract", path)
	require.NoError(t, err)
	assert.Equal(t,
		"file\tlocale\tname\tattribute\tvariant\tvalue\n"+
			path+"\ten\ta\t\t\tOne\n"+
			path+"\ten\tb\t\t\tTwo\n", out)
}

func TestExtract_JSONToFile(t *testing.T) {
	root := t.TempDir()
	path := writeLocale(t, root, "en", resourceJSON(t, "a", "<b>One</b>"))
	output := filepath.Join(root, "targets.json")

	out, err := run(t, "extract", "--export", "json", "--output", output, path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"value": "<b>One</b>"`)
	assert.Contains(t, string(data), `"locale": "en"`)
}

func TestExtract_FailedFile(t *testing.T) {
	root := t.TempDir()
	good := writeLocale(t, root, "en", resourceJSON(t, "a", "One"))
	bad := writeLocale(t, root, "fr", []byte(`not json`))

	out, err := run(t, "extract", good, bad)
	assert.ErrorContains(t, err, "1 file(s) could not be extracted")
	assert.Contains(t, out, good+"\ten\ta")
	assert.NotContains(t, out, bad)
}

type recordingUpserter struct {
	files []string
	err   error
}

func (r *recordingUpserter) UpsertResource(_ context.Context, locale, file string, res *fluent.Resource) error {
	if r.err != nil {
		return r.err
	}
	r.files = append(r.files, locale+":"+file)
	return nil
}

func TestLoadResources_CountsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	en := writeLocale(t, root, "en", resourceJSON(t, "a", "One"))
	fr := writeLocale(t, root, "fr", []byte(`not json`))
	de := writeLocale(t, root, "de", resourceJSON(t, "a", "Eins"))

	sink := &recordingUpserter{}
	loaded, failed, err := loadResources(context.Background(), sink, []filewalker.FileEntry{
		{Path: de, Locale: "de"},
		{Path: en, Locale: "en"},
		{Path: fr, Locale: "fr"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"de:" + de, "en:" + en}, sink.files)
}

func TestLoadResources_StopsOnSinkError(t *testing.T) {
	root := t.TempDir()
	en := writeLocale(t, root, "en", resourceJSON(t, "a", "One"))

	sink := &recordingUpserter{err: errors.New("neo4j down")}
	loaded, _, err := loadResources(context.Background(), sink, []filewalker.FileEntry{{Path: en, Locale: "en"}})
	assert.ErrorContains(t, err, "neo4j down")
	assert.Zero(t, loaded)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.tsv")

	require.NoError(t, writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "a\tb\n")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n", string(data))

	err = writeFile(path, func(io.Writer) error { return errors.New("encode failed") })
	assert.ErrorContains(t, err, "encode failed")

	err = writeFile(dir, func(io.Writer) error { return nil })
	assert.ErrorContains(t, err, "create export file")
}
