package repository

import (
	"context"
	"fmt"

	"zoningcheck-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LegalChunkRepository handles database operations for segmented legal chunks
type LegalChunkRepository struct {
	db *pgxpool.Pool
}

// NewLegalChunkRepository creates a new legal chunk repository
func NewLegalChunkRepository(db *pgxpool.Pool) *LegalChunkRepository {
	return &LegalChunkRepository{db: db}
}

// ReplaceForDocument replaces all stored chunks of one document with a fresh
// segmentation, atomically. Re-ingesting a document never leaves stale chunks.
func (r *LegalChunkRepository) ReplaceForDocument(ctx context.Context, docID string, chunks []models.LegalChunk) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM legal_chunks WHERE doc_id = $1`, docID); err != nil {
		return fmt.Errorf("failed to delete chunks for doc %s: %w", docID, err)
	}

	batch := &pgx.Batch{}
	for i, chunk := range chunks {
		batch.Queue(`
			INSERT INTO legal_chunks (
				doc_id, doc_title, document_type, established_date,
				article_id, heading, chunk_text, position
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			chunk.DocID,
			chunk.DocTitle,
			chunk.DocumentType,
			chunk.EstablishedDate,
			chunk.ArticleID,
			chunk.Heading,
			chunk.Text,
			i,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert chunk for doc %s: %w", docID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch for doc %s: %w", docID, err)
	}

	return tx.Commit(ctx)
}

// ListByDocument retrieves all chunks of a document in emission order
func (r *LegalChunkRepository) ListByDocument(ctx context.Context, docID string) ([]models.LegalChunk, error) {
	query := `
		SELECT doc_id, doc_title, document_type, established_date,
			article_id, heading, chunk_text
		FROM legal_chunks
		WHERE doc_id = $1
		ORDER BY position`

	return r.queryChunks(ctx, query, docID)
}

// SearchText retrieves chunks whose heading or text contains the given term,
// case-insensitively, in emission order per document
func (r *LegalChunkRepository) SearchText(ctx context.Context, term string, limit int) ([]models.LegalChunk, error) {
	query := `
		SELECT doc_id, doc_title, document_type, established_date,
			article_id, heading, chunk_text
		FROM legal_chunks
		WHERE heading ILIKE '%' || $1 || '%' OR chunk_text ILIKE '%' || $1 || '%'
		ORDER BY doc_id, position
		LIMIT $2`

	return r.queryChunks(ctx, query, term, limit)
}

func (r *LegalChunkRepository) queryChunks(ctx context.Context, query string, args ...interface{}) ([]models.LegalChunk, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.LegalChunk
	for rows.Next() {
		var chunk models.LegalChunk
		err := rows.Scan(
			&chunk.DocID,
			&chunk.DocTitle,
			&chunk.DocumentType,
			&chunk.EstablishedDate,
			&chunk.ArticleID,
			&chunk.Heading,
			&chunk.Text,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legal chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legal chunks: %w", err)
	}

	return chunks, nil
}
