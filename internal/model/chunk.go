package model

// CourseChunk is one retrievable span of course text. LessonNumber is nil for
// chunks that belong to the course preamble rather than a specific lesson.
type CourseChunk struct {
	Content      string `json:"content"`
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number"`
	ChunkIndex   int    `json:"chunk_index"`
}
