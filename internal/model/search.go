package model

// ChunkMeta carries the per-document attributes returned with every search hit.
type ChunkMeta struct {
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number"`
	ChunkIndex   int    `json:"chunk_index"`
}

// SearchResults is the value returned by every content search. Documents,
// Metadata and Distances are index-aligned and relevance-ranked, most relevant
// first (lower distance = more similar). When Error is set all three are empty.
type SearchResults struct {
	Documents []string    `json:"documents"`
	Metadata  []ChunkMeta `json:"metadata"`
	Distances []float64   `json:"distances"`
	Error     string      `json:"error,omitempty"`
}

func EmptySearchResults(errMsg string) *SearchResults {
	return &SearchResults{Error: errMsg}
}

func (r *SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}

// Source is the provenance record surfaced to the end user for one retrieved
// chunk.
type Source struct {
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
}
