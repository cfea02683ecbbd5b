package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/lectern-ai/lectern/internal/model"
)

// ChunkFilter narrows a content query to one course and optionally one lesson.
// Both conditions are exact matches combined with AND.
type ChunkFilter struct {
	CourseTitle  string
	LessonNumber *int
}

// ChunkRepo is the content-chunk index.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) Insert(ctx context.Context, chunks []model.CourseChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d != %d", len(chunks), len(embeddings))
	}
	const query = `
		INSERT INTO course_chunks (course_title, lesson_number, chunk_index, content, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	now := time.Now().UnixMilli()
	for i, chunk := range chunks {
		var lesson sql.NullInt32
		if chunk.LessonNumber != nil {
			lesson = sql.NullInt32{Int32: int32(*chunk.LessonNumber), Valid: true}
		}
		_, err := r.db.ExecContext(ctx, query,
			chunk.CourseTitle,
			lesson,
			chunk.ChunkIndex,
			chunk.Content,
			pgvector.NewVector(embeddings[i]),
			now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Query runs an approximate nearest-neighbor search over the chunk index,
// optionally scoped by the filter. Results are ordered by cosine distance,
// closest first.
func (r *ChunkRepo) Query(ctx context.Context, embedding []float32, filter ChunkFilter, limit int) (*model.SearchResults, error) {
	query := `
		SELECT content, course_title, lesson_number, chunk_index, embedding <=> $1 AS distance
		FROM course_chunks
		WHERE embedding IS NOT NULL
	`
	args := []interface{}{pgvector.NewVector(embedding)}
	if filter.CourseTitle != "" {
		args = append(args, filter.CourseTitle)
		query += fmt.Sprintf(" AND course_title = $%d", len(args))
	}
	if filter.LessonNumber != nil {
		args = append(args, *filter.LessonNumber)
		query += fmt.Sprintf(" AND lesson_number = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY distance LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := &model.SearchResults{}
	for rows.Next() {
		var content string
		var meta model.ChunkMeta
		var lesson sql.NullInt32
		var distance float64
		if err := rows.Scan(&content, &meta.CourseTitle, &lesson, &meta.ChunkIndex, &distance); err != nil {
			return nil, err
		}
		if lesson.Valid {
			n := int(lesson.Int32)
			meta.LessonNumber = &n
		}
		results.Documents = append(results.Documents, content)
		results.Metadata = append(results.Metadata, meta)
		results.Distances = append(results.Distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ChunkRepo) DeleteByCourse(ctx context.Context, courseTitle string) error {
	const query = `DELETE FROM course_chunks WHERE course_title = $1`
	_, err := r.db.ExecContext(ctx, query, courseTitle)
	return err
}

func (r *ChunkRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM course_chunks`
	row := r.db.QueryRowContext(ctx, query)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
