// Package graph mirrors the message and term references of Fluent
// resources into Neo4j so cross-file usage can be queried.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"

	"ftl-htmllint/internal/fluent"
)

// Node is one message or term defined in a resource.
type Node struct {
	Name string
	Kind string // message or term
}

// Edge is a reference from one entry to another.
type Edge struct {
	From string
	fluent.Reference
}

// Collect returns the entries a resource defines and the references between
// them, both in document order.
func Collect(res *fluent.Resource) ([]Node, []Edge) {
	if res == nil {
		return nil, nil
	}

	var (
		nodes []Node
		edges []Edge
	)
	for _, entry := range res.Body {
		name, ok := fluent.EntryName(entry)
		if !ok {
			continue
		}
		kind := "message"
		if _, isTerm := entry.(*fluent.Term); isTerm {
			kind = "term"
		}
		nodes = append(nodes, Node{Name: name, Kind: kind})
		for _, ref := range fluent.References(entry) {
			edges = append(edges, Edge{From: name, Reference: ref})
		}
	}
	return nodes, edges
}

// Builder writes resources into the graph.
type Builder struct {
	driver neo4j.DriverWithContext
}

// NewBuilder creates a new graph builder.
func NewBuilder(driver neo4j.DriverWithContext) *Builder {
	return &Builder{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (b *Builder) EnsureSchema(ctx context.Context) error {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (e:Entry) REQUIRE (e.locale, e.name) IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// UpsertResource merges every entry of res as an (:Entry) node of locale and
// links it to the entries it references. Referenced entries that are not
// defined yet are created with defined=false.
func (b *Builder) UpsertResource(ctx context.Context, locale, file string, res *fluent.Resource) error {
	nodes, edges := Collect(res)
	if len(nodes) == 0 {
		return nil
	}

	session := b.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	nodeRows := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		nodeRows = append(nodeRows, map[string]any{"name": n.Name, "kind": n.Kind})
	}
	_, err := session.Run(ctx, `
		UNWIND $rows AS row
		MERGE (e:Entry {locale: $locale, name: row.name})
		SET e.kind = row.kind,
		    e.file = $file,
		    e.defined = true
	`, map[string]any{"locale": locale, "file": file, "rows": nodeRows})
	if err != nil {
		return fmt.Errorf("upsert entries of %s: %w", file, err)
	}

	for _, e := range edges {
		_, err := session.Run(ctx, `
			MATCH (a:Entry {locale: $locale, name: $from})
			MERGE (b:Entry {locale: $locale, name: $to})
			ON CREATE SET b.defined = false
			MERGE (a)-[r:REFERENCES {via: $via, attribute: $attribute}]->(b)
		`, map[string]any{
			"locale":    locale,
			"from":      e.From,
			"to":        e.Target,
			"via":       e.Via,
			"attribute": e.Attribute,
		})
		if err != nil {
			log.Warn().Err(err).
				Str("from", e.From).
				Str("to", e.Target).
				Msg("Failed to create reference")
		}
	}

	log.Debug().
		Str("file", file).
		Int("entries", len(nodes)).
		Int("references", len(edges)).
		Msg("Resource upserted into graph")
	return nil
}

// Dangling is a reference whose target no resource of the locale defines.
type Dangling struct {
	Locale string
	From   string
	To     string
	Via    string
}

// Querier reads the reference graph.
type Querier struct {
	driver neo4j.DriverWithContext
}

// NewQuerier creates a new graph querier.
func NewQuerier(driver neo4j.DriverWithContext) *Querier {
	return &Querier{driver: driver}
}

// DanglingReferences lists references to undefined entries, for every
// locale when locale is empty.
func (q *Querier) DanglingReferences(ctx context.Context, locale string) ([]Dangling, error) {
	session := q.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (a:Entry)-[r:REFERENCES]->(b:Entry {defined: false})
		WHERE $locale = '' OR a.locale = $locale
		RETURN a.locale AS locale, a.name AS from_name, b.name AS to_name, r.via AS via
		ORDER BY locale, from_name, to_name
	`, map[string]any{"locale": locale})
	if err != nil {
		return nil, fmt.Errorf("query dangling references: %w", err)
	}

	var out []Dangling
	for result.Next(ctx) {
		record := result.Record()
		loc, _ := record.Get("locale")
		from, _ := record.Get("from_name")
		to, _ := record.Get("to_name")
		via, _ := record.Get("via")

		out = append(out, Dangling{
			Locale: fmt.Sprintf("%v", loc),
			From:   fmt.Sprintf("%v", from),
			To:     fmt.Sprintf("%v", to),
			Via:    fmt.Sprintf("%v", via),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read dangling references: %w", err)
	}

	log.Debug().Int("dangling", len(out)).Msg("Graph query complete")
	return out, nil
}
