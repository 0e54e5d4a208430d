package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
// Only documents are searchable through the fallback; gap entries live solely
// in Meilisearch and the gap filter returns no fallback hits.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true; if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search runs plainto_tsquery against an on-the-fly tsvector over the
// document filename and status, ranked with ts_rank.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}
	if q.FilterType == ResultGap {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsVector := "to_tsvector('english', d.original_filename || ' ' || d.status)"
	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	argN := 2

	where := tsVector + " @@ " + tsQuery
	if q.FilterStatus != "" {
		where += fmt.Sprintf(" AND d.status = $%d", argN)
		args = append(args, q.FilterStatus)
		argN++
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM documents d WHERE %s", where)

	dataSQL := fmt.Sprintf(`
		SELECT d.id, d.original_filename, d.status,
			ts_headline('english', d.original_filename, %s, 'MaxFragments=1,MaxWords=30') AS snippet
		FROM documents d
		WHERE %s
		ORDER BY ts_rank(%s, %s) DESC
		LIMIT %d OFFSET %d`,
		tsQuery, where, tsVector, tsQuery, limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Title, &r.Status, &r.Snippet); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultDocument
		r.DocumentID = r.ID
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllDocuments returns all document records for full reindexing.
func (p *PgFTS) LoadAllDocuments(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, original_filename, status
		FROM documents
	`)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	documents := make([]DocumentRecord, 0)
	for rows.Next() {
		var d DocumentRecord
		if err := rows.Scan(&d.ID, &d.Filename, &d.Status); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return documents, nil
}
