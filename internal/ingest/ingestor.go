package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lectern-ai/lectern/internal/docstore"
	"github.com/lectern-ai/lectern/internal/model"
	"github.com/lectern-ai/lectern/internal/search"
)

// Ingestor reads course scripts from the document store, parses and chunks
// them, and writes both index tiers through the retrieval engine.
type Ingestor struct {
	store   docstore.Store
	engine  *search.Engine
	chunker *Chunker
}

func NewIngestor(store docstore.Store, engine *search.Engine, chunkSize, chunkOverlap int) *Ingestor {
	return &Ingestor{
		store:   store,
		engine:  engine,
		chunker: NewChunker(chunkSize, chunkOverlap),
	}
}

// LoadAll indexes every course document in the store. Courses already in the
// catalog are skipped unless clearExisting is set, in which case their
// content chunks are rebuilt. Returns the number of courses and chunks added.
func (ing *Ingestor) LoadAll(ctx context.Context, clearExisting bool) (int, int, error) {
	logger := logutil.GetLogger(ctx)
	keys, err := ing.store.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list course documents: %w", err)
	}
	if len(keys) == 0 {
		return 0, 0, nil
	}

	parsed := make(map[string]*ParsedDocument, len(keys))
	titles := make([]string, 0, len(keys))
	for _, key := range keys {
		doc, err := ing.readDocument(ctx, key)
		if err != nil {
			logger.Warn("skipping unparseable course document", zap.String("key", key), zap.Error(err))
			continue
		}
		parsed[key] = doc
		titles = append(titles, doc.Course.Title)
	}

	existing, err := ing.engine.ExistingCourses(ctx, titles)
	if err != nil {
		return 0, 0, fmt.Errorf("check existing courses: %w", err)
	}

	coursesAdded := 0
	chunksAdded := 0
	for _, key := range keys {
		doc, ok := parsed[key]
		if !ok {
			continue
		}
		title := doc.Course.Title
		if _, found := existing[title]; found {
			if !clearExisting {
				continue
			}
			if err := ing.engine.ClearCourse(ctx, title); err != nil {
				return coursesAdded, chunksAdded, fmt.Errorf("clear course %q: %w", title, err)
			}
		}
		chunks := ing.buildChunks(doc, strings.HasSuffix(strings.ToLower(key), ".md"))
		if err := ing.engine.AddCourseMetadata(ctx, &doc.Course); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("index course %q: %w", title, err)
		}
		if err := ing.engine.AddCourseContent(ctx, chunks); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("index content of %q: %w", title, err)
		}
		coursesAdded++
		chunksAdded += len(chunks)
		logger.Info("course indexed",
			zap.String("title", title),
			zap.Int("lessons", len(doc.Course.Lessons)),
			zap.Int("chunks", len(chunks)),
		)
	}
	return coursesAdded, chunksAdded, nil
}

func (ing *Ingestor) readDocument(ctx context.Context, key string) (*ParsedDocument, error) {
	rc, err := ing.store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseCourseDocument(rc)
}

// buildChunks assigns ascending chunk indexes across the whole course:
// preamble chunks carry no lesson number, lesson chunks carry theirs.
func (ing *Ingestor) buildChunks(doc *ParsedDocument, markdown bool) []model.CourseChunk {
	var chunks []model.CourseChunk
	index := 0
	appendChunks := func(content string, lessonNumber *int) {
		if markdown {
			content = MarkdownToText(content)
		}
		for _, piece := range ing.chunker.Split(content) {
			chunks = append(chunks, model.CourseChunk{
				Content:      piece,
				CourseTitle:  doc.Course.Title,
				LessonNumber: lessonNumber,
				ChunkIndex:   index,
			})
			index++
		}
	}
	if doc.Preamble != "" {
		appendChunks(doc.Preamble, nil)
	}
	for i, text := range doc.LessonTexts {
		if text == "" {
			continue
		}
		number := doc.Course.Lessons[i].LessonNumber
		appendChunks(text, &number)
	}
	return chunks
}
