package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/lectern-ai/lectern/internal/model"
	appErr "github.com/lectern-ai/lectern/internal/pkg/errors"
)

// CourseRepo is the course-catalog index: one row per course, keyed by its
// canonical title, carrying the title embedding used for fuzzy name
// resolution.
type CourseRepo struct {
	db *sql.DB
}

func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

func (r *CourseRepo) Upsert(ctx context.Context, course *model.Course, embedding []float32) error {
	lessons, err := json.Marshal(course.Lessons)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	const query = `
		INSERT INTO courses (title, course_link, instructor, lessons, embedding, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (title) DO UPDATE SET
			course_link = EXCLUDED.course_link,
			instructor = EXCLUDED.instructor,
			lessons = EXCLUDED.lessons,
			embedding = EXCLUDED.embedding,
			mtime = EXCLUDED.mtime
	`
	_, err = r.db.ExecContext(ctx, query,
		course.Title,
		course.CourseLink,
		course.Instructor,
		lessons,
		pgvector.NewVector(embedding),
		now,
	)
	return err
}

// NearestTitle returns the canonical title of the course whose title
// embedding is closest to the query embedding.
func (r *CourseRepo) NearestTitle(ctx context.Context, embedding []float32) (string, error) {
	const query = `
		SELECT title
		FROM courses
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, pgvector.NewVector(embedding))
	var title string
	if err := row.Scan(&title); err != nil {
		if err == sql.ErrNoRows {
			return "", appErr.ErrNotFound
		}
		return "", err
	}
	return title, nil
}

func (r *CourseRepo) Get(ctx context.Context, title string) (*model.Course, error) {
	const query = `SELECT title, course_link, instructor, lessons FROM courses WHERE title = $1`
	row := r.db.QueryRowContext(ctx, query, title)
	var course model.Course
	var lessons []byte
	if err := row.Scan(&course.Title, &course.CourseLink, &course.Instructor, &lessons); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(lessons, &course.Lessons); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM courses`
	row := r.db.QueryRowContext(ctx, query)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CourseRepo) ListTitles(ctx context.Context) ([]string, error) {
	where := map[string]interface{}{
		"_orderby": "title asc",
	}
	sqlStr, args, err := builder.BuildSelect("courses", where, []string{"title"})
	if err != nil {
		return nil, err
	}
	sqlStr = sqlx.Rebind(sqlx.DOLLAR, sqlStr)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// ListByTitles returns the catalog entries for the given titles, keyed by
// title. Unknown titles are simply absent.
func (r *CourseRepo) ListByTitles(ctx context.Context, titles []string) (map[string]*model.Course, error) {
	result := make(map[string]*model.Course)
	if len(titles) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT title, course_link, instructor, lessons FROM courses WHERE title IN (?)`, titles)
	if err != nil {
		return nil, err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var course model.Course
		var lessons []byte
		if err := rows.Scan(&course.Title, &course.CourseLink, &course.Instructor, &lessons); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(lessons, &course.Lessons); err != nil {
			return nil, err
		}
		result[course.Title] = &course
	}
	return result, rows.Err()
}

func (r *CourseRepo) Delete(ctx context.Context, title string) error {
	const query = `DELETE FROM courses WHERE title = $1`
	_, err := r.db.ExecContext(ctx, query, title)
	return err
}
