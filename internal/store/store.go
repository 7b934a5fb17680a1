// Package store persists lint runs and their findings in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"ftl-htmllint/internal/extract"
	"ftl-htmllint/internal/lint"
	"ftl-htmllint/internal/report"
	"ftl-htmllint/internal/textutil"
	"ftl-htmllint/internal/worker"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Run describes one invocation of the lint command.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Patterns  []string
	Files     int
	Targets   int
	Findings  int
}

// NewRun starts a run record for patterns.
func NewRun(patterns []string) Run {
	return Run{ID: uuid.New(), StartedAt: time.Now().UTC(), Patterns: patterns}
}

// FindingStore writes runs and findings.
type FindingStore struct {
	db        DB
	batchSize int
}

// NewFindingStore creates a store that inserts findings batchSize at a time.
func NewFindingStore(db DB, batchSize int) *FindingStore {
	if batchSize < 1 {
		batchSize = 1
	}
	return &FindingStore{db: db, batchSize: batchSize}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS lint_runs (
		id          uuid PRIMARY KEY,
		started_at  timestamptz NOT NULL,
		patterns    text[] NOT NULL,
		files       integer NOT NULL,
		targets     integer NOT NULL,
		findings    integer NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lint_findings (
		id          bigserial PRIMARY KEY,
		run_id      uuid NOT NULL REFERENCES lint_runs(id) ON DELETE CASCADE,
		position    integer NOT NULL,
		file        text NOT NULL,
		locale      text NOT NULL,
		name        text NOT NULL,
		attribute   text NOT NULL,
		variant     text NOT NULL,
		value       text NOT NULL,
		value_hash  text NOT NULL,
		code        text NOT NULL,
		rule        text NOT NULL,
		message     text NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS lint_findings_run_idx ON lint_findings (run_id, position)`,
	`CREATE INDEX IF NOT EXISTS lint_findings_hash_idx ON lint_findings (value_hash)`,
}

// EnsureSchema creates the tables if they do not exist.
func (s *FindingStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	log.Debug().Msg("Finding store schema ensured")
	return nil
}

const insertRun = `
	INSERT INTO lint_runs (id, started_at, patterns, files, targets, findings)
	VALUES ($1::uuid, $2, $3, $4, $5, $6)`

const insertFinding = `
	INSERT INTO lint_findings
		(run_id, position, file, locale, name, attribute, variant, value, value_hash, code, rule, message)
	VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// SaveRun stores run and its findings, keeping their order.
func (s *FindingStore) SaveRun(ctx context.Context, run Run, findings []report.Finding) error {
	_, err := s.db.Exec(ctx, insertRun,
		run.ID.String(), run.StartedAt, run.Patterns, run.Files, run.Targets, run.Findings)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	position := 0
	for _, chunk := range worker.Batch(findings, s.batchSize) {
		batch := &pgx.Batch{}
		for _, f := range chunk {
			batch.Queue(insertFinding, findingArgs(run.ID, position, f)...)
			position++
		}
		if err := s.sendBatch(ctx, batch); err != nil {
			return err
		}
	}

	log.Info().Str("run", run.ID.String()).Int("findings", len(findings)).Msg("Stored lint run")
	return nil
}

func (s *FindingStore) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}
	}
	return nil
}

func findingArgs(runID uuid.UUID, position int, f report.Finding) []any {
	return []any{
		runID.String(),
		position,
		f.File,
		f.Locale,
		f.Target.Name,
		f.Target.Attribute,
		f.Target.Variant,
		f.Target.Value,
		textutil.Hash(f.Target.Value),
		f.Issue.Code,
		f.Issue.Rule,
		f.Issue.Message,
	}
}

const selectFindings = `
	SELECT file, locale, name, attribute, variant, value, code, rule, message
	FROM lint_findings
	WHERE run_id = $1::uuid
	ORDER BY position`

// ListFindings returns the findings of a run in the order they were saved.
func (s *FindingStore) ListFindings(ctx context.Context, runID uuid.UUID) ([]report.Finding, error) {
	rows, err := s.db.Query(ctx, selectFindings, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}

	findings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.Finding, error) {
		var (
			f report.Finding
			t extract.LintTarget
			i lint.Issue
		)
		err := row.Scan(&f.File, &f.Locale, &t.Name, &t.Attribute, &t.Variant, &t.Value, &i.Code, &i.Rule, &i.Message)
		f.Target = t
		f.Issue = i
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan findings: %w", err)
	}
	return findings, nil
}
