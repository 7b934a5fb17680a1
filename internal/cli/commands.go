package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"ftl-htmllint/internal/cache"
	"ftl-htmllint/internal/config"
	"ftl-htmllint/internal/extract"
	"ftl-htmllint/internal/filewalker"
	"ftl-htmllint/internal/fluent"
	"ftl-htmllint/internal/graph"
	"ftl-htmllint/internal/lint"
	"ftl-htmllint/internal/report"
	"ftl-htmllint/internal/store"
	"ftl-htmllint/internal/worker"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func lintCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <glob>...",
		Short: "Check the markup of every string in the matched resources",
		Long: `Extracts every lint target of the matched resource files and checks it
with the markup rules. Exits non-zero when any issue is found or a file
cannot be read.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			persist, _ := cmd.Flags().GetBool("store")
			workers, _ := cmd.Flags().GetInt("workers")
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runLint(cmd.Context(), cfg, cmd.OutOrStdout(), args, lintOptions{
				format:   format,
				persist:  persist,
				workers:  workers,
				useColor: !noColor && !color.NoColor,
			})
		},
	}

	cmd.Flags().String("format", "text", "Output format: text or json")
	cmd.Flags().Bool("store", false, "Save the run and its findings to PostgreSQL")
	cmd.Flags().Int("workers", cfg.WorkerCount, "Number of files processed concurrently")
	cmd.Flags().Bool("no-color", false, "Disable colored output")

	return cmd
}

func extractCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <glob>...",
		Short: "Export the lint targets of the matched resources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, _ := cmd.Flags().GetString("export")
			exportPath, _ := cmd.Flags().GetString("output")
			return runExtract(cmd.Context(), cfg, cmd.OutOrStdout(), args, exportFormat, exportPath)
		},
	}

	cmd.Flags().String("export", "tsv", "Export format: tsv or json")
	cmd.Flags().String("output", "", "Output file (default: standard output)")

	return cmd
}

func graphCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <glob>...",
		Short: "Load message and term references of the matched resources into Neo4j",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dangling, _ := cmd.Flags().GetBool("dangling")
			return runGraph(cmd.Context(), cfg, cmd.OutOrStdout(), args, dangling)
		},
	}

	cmd.Flags().Bool("dangling", true, "List references to entries no resource defines")

	return cmd
}

type lintOptions struct {
	format   string
	persist  bool
	workers  int
	useColor bool
}

// runLint handles the `lint` command.
func runLint(ctx context.Context, cfg *config.Config, out io.Writer, patterns []string, opts lintOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	htmlLinter, err := lint.NewHTMLLinter(lint.Options{
		BannedTags:   cfg.BannedTags,
		IDClassStyle: cfg.IDClassStyle,
	})
	if err != nil {
		return fmt.Errorf("configure linter: %w", err)
	}
	linter := cache.NewLintCache(htmlLinter)

	files, err := filewalker.Expand(patterns)
	if err != nil {
		return fmt.Errorf("expand patterns: %w", err)
	}

	log.Info().Int("files", len(files)).Msg("Starting lint")

	results := lintFiles(ctx, files, linter, opts.workers)
	linter.LogStats()

	switch opts.format {
	case "json":
		if err := report.WriteFindingsJSON(out, report.Findings(results)); err != nil {
			return err
		}
	default:
		report.NewConsole(out, opts.useColor).Print(results)
	}

	summary := report.Summarize(results)
	if opts.persist {
		if err := saveRun(ctx, cfg, patterns, summary, report.Findings(results)); err != nil {
			return err
		}
	}

	log.Info().
		Int("files", summary.Files).
		Int("targets", summary.Targets).
		Int("findings", summary.Findings).
		Msg("Lint complete")

	if summary.Findings > 0 || summary.Failed > 0 {
		return errIssuesFound
	}
	return nil
}

// lintFiles processes files on a worker pool. Results keep the order of
// files; a file that cannot be loaded carries its error.
func lintFiles(ctx context.Context, files []filewalker.FileEntry, linter lint.Linter, workers int) []report.FileResult {
	pool := worker.NewPool[filewalker.FileEntry, report.FileResult](workers,
		func(ctx context.Context, entry filewalker.FileEntry) (report.FileResult, error) {
			return lintFile(ctx, entry, linter)
		},
	)

	var results []report.FileResult
	for _, r := range pool.Execute(ctx, files) {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("file", r.Input.Path).Msg("Lint failed")
			results = append(results, report.FileResult{Path: r.Input.Path, Locale: r.Input.Locale, Err: r.Err})
			continue
		}
		results = append(results, r.Output)
	}
	return results
}

func lintFile(ctx context.Context, entry filewalker.FileEntry, linter lint.Linter) (report.FileResult, error) {
	result := report.FileResult{Path: entry.Path, Locale: entry.Locale}

	targets, err := extractFile(entry)
	if err != nil {
		return result, err
	}
	result.Targets = len(targets)

	for _, target := range targets {
		issues, err := linter.Lint(ctx, target.Value)
		if err != nil {
			return result, fmt.Errorf("lint %s: %w", target.Label(), err)
		}
		for _, issue := range issues {
			result.Findings = append(result.Findings, report.Finding{
				File:   entry.Path,
				Locale: entry.Locale,
				Target: target,
				Issue:  issue,
			})
		}
	}

	log.Debug().
		Str("file", entry.Path).
		Int("targets", result.Targets).
		Int("findings", len(result.Findings)).
		Msg("File linted")
	return result, nil
}

// extractFile loads one resource and walks it with an extractor whose
// warnings name the file.
func extractFile(entry filewalker.FileEntry) ([]extract.LintTarget, error) {
	res, err := fluent.LoadFile(entry.Path)
	if err != nil {
		return nil, err
	}
	logger := log.With().Str("file", entry.Path).Logger()
	return extract.New(logger).WalkResource(res), nil
}

func saveRun(ctx context.Context, cfg *config.Config, patterns []string, summary report.Summary, findings []report.Finding) error {
	pool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	findingStore := store.NewFindingStore(pool, cfg.BatchSize)
	if err := findingStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure finding schema: %w", err)
	}

	run := store.NewRun(patterns)
	run.Files = summary.Files
	run.Targets = summary.Targets
	run.Findings = summary.Findings

	if err := findingStore.SaveRun(ctx, run, findings); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// runExtract handles the `extract` command.
func runExtract(ctx context.Context, cfg *config.Config, out io.Writer, patterns []string, exportFormat, exportPath string) error {
	if exportFormat != "tsv" && exportFormat != "json" {
		return fmt.Errorf("unknown export format %q", exportFormat)
	}

	files, err := filewalker.Expand(patterns)
	if err != nil {
		return fmt.Errorf("expand patterns: %w", err)
	}

	pool := worker.NewPool[filewalker.FileEntry, []extract.LintTarget](cfg.WorkerCount,
		func(ctx context.Context, entry filewalker.FileEntry) ([]extract.LintTarget, error) {
			return extractFile(entry)
		},
	)

	var (
		exported []report.FileTargets
		failed   int
		total    int
	)
	for _, r := range pool.Execute(ctx, files) {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("file", r.Input.Path).Msg("Extract failed")
			failed++
			continue
		}
		total += len(r.Output)
		exported = append(exported, report.FileTargets{
			Path:    r.Input.Path,
			Locale:  r.Input.Locale,
			Targets: r.Output,
		})
	}

	write := func(w io.Writer) error {
		if exportFormat == "json" {
			return report.WriteTargetsJSON(w, exported)
		}
		return report.WriteTargetsTSV(w, exported)
	}
	if exportPath != "" {
		err = writeFile(exportPath, write)
	} else {
		err = write(out)
	}
	if err != nil {
		return fmt.Errorf("export targets: %w", err)
	}

	log.Info().
		Int("files", len(exported)).
		Int("targets", total).
		Str("format", exportFormat).
		Msg("Extraction complete")

	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be extracted", failed)
	}
	return nil
}

// runGraph handles the `graph` command.
func runGraph(ctx context.Context, cfg *config.Config, out io.Writer, patterns []string, listDangling bool) error {
	files, err := filewalker.Expand(patterns)
	if err != nil {
		return fmt.Errorf("expand patterns: %w", err)
	}

	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	builder := graph.NewBuilder(driver)
	if err := builder.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}

	loaded, failed, err := loadResources(ctx, builder, files)
	if err != nil {
		return err
	}

	log.Info().Int("files", loaded).Msg("Reference graph updated")

	if listDangling {
		dangling, err := graph.NewQuerier(driver).DanglingReferences(ctx, "")
		if err != nil {
			return err
		}
		for _, d := range dangling {
			fmt.Fprintf(out, "%s: %s -> %s (%s)\n", d.Locale, d.From, d.To, d.Via)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be loaded", failed)
	}
	return nil
}

// resourceUpserter is the part of graph.Builder the graph command uses.
type resourceUpserter interface {
	UpsertResource(ctx context.Context, locale, file string, res *fluent.Resource) error
}

// loadResources pushes every readable file to sink. Unreadable files are
// logged and counted; a sink error stops the run.
func loadResources(ctx context.Context, sink resourceUpserter, files []filewalker.FileEntry) (loaded, failed int, err error) {
	for _, entry := range files {
		res, err := fluent.LoadFile(entry.Path)
		if err != nil {
			log.Error().Err(err).Str("file", entry.Path).Msg("Load failed")
			failed++
			continue
		}
		if err := sink.UpsertResource(ctx, entry.Locale, entry.Path, res); err != nil {
			return loaded, failed, err
		}
		loaded++
	}
	return loaded, failed, nil
}

// writeFile creates path and runs write on it. A failed close is an error.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}
