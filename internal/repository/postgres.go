package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"venuescout/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository backs the vector index and the telemetry logs. Corpus
// records for both logical collections ("pattern" and "phrase") live in
// one corpus_documents table distinguished by the collection column.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// UpsertDocument inserts or replaces one corpus record. Content is stored
// as the record's JSON payload, metadata as a flat JSONB map used for
// equality filtering at query time.
func (r *PostgresRepository) UpsertDocument(
	ctx context.Context,
	collection, id string,
	embedding []float32,
	content any,
	metadata map[string]string,
) error {
	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	query := `
		INSERT INTO corpus_documents (id, collection, content, metadata, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
		    metadata = EXCLUDED.metadata,
		    embedding = EXCLUDED.embedding,
		    updated_at = NOW()
	`
	_, err = r.db.ExecContext(ctx, query, id, collection, payload, model.JSONMap(metadata), pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", id, err)
	}
	return nil
}

// Query performs a cosine-similarity search over one collection with
// equality filters on metadata fields. Hits come back in descending
// similarity order; score = 1 - cosine distance, in [0,1] for normalized
// embeddings.
func (r *PostgresRepository) Query(
	ctx context.Context,
	collection string,
	vector []float32,
	topK int,
	filter map[string]string,
) ([]model.IndexHit, error) {
	vec := pgvector.NewVector(vector)

	whereClauses := []string{"collection = $2"}
	args := []interface{}{vec, collection}
	argIndex := 3

	// Sorted keys keep the generated SQL deterministic
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		whereClauses = append(whereClauses, fmt.Sprintf("metadata->>'%s' = $%d", k, argIndex))
		args = append(args, filter[k])
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM corpus_documents
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d
	`, strings.Join(whereClauses, " AND "), argIndex)
	args = append(args, topK)

	var rows []struct {
		ID       string        `db:"id"`
		Content  []byte        `db:"content"`
		Metadata model.JSONMap `db:"metadata"`
		Score    float64       `db:"score"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s collection: %w", collection, err)
	}

	hits := make([]model.IndexHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, model.IndexHit{
			ID:       row.ID,
			Score:    row.Score,
			Content:  row.Content,
			Metadata: row.Metadata,
		})
	}
	return hits, nil
}

// LogQuery records one answered travel query
func (r *PostgresRepository) LogQuery(
	ctx context.Context,
	query string,
	intent *model.TravelIntent,
	resultCount int,
	venueNames []string,
	responseTimeMs int,
) error {
	intentJSON, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	logQuery := `
		INSERT INTO query_logs (query, intent, result_count, returned_venues, response_time_ms)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.ExecContext(ctx, logQuery, query, intentJSON, resultCount, pq.Array(venueNames), responseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log query: %w", err)
	}
	return nil
}

// LogBooking records a successful booking reported through the learning
// feedback path. The corpus itself is never mutated here; corpus curation
// consumes these rows offline.
func (r *PostgresRepository) LogBooking(
	ctx context.Context,
	query string,
	intent *model.TravelIntent,
	venue model.Venue,
	satisfaction float64,
) error {
	intentJSON, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}
	venueJSON, err := json.Marshal(venue)
	if err != nil {
		return fmt.Errorf("failed to marshal venue: %w", err)
	}

	logQuery := `
		INSERT INTO booking_feedback (query, intent, venue, satisfaction)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.db.ExecContext(ctx, logQuery, query, intentJSON, venueJSON, satisfaction)
	if err != nil {
		return fmt.Errorf("failed to log booking: %w", err)
	}
	return nil
}
