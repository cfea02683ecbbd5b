package model

// Course is the catalog entry for one indexed course. The title is the
// canonical identifier used as the exact filter value for content search.
type Course struct {
	Title      string   `json:"title"`
	CourseLink string   `json:"course_link"`
	Instructor string   `json:"instructor"`
	Lessons    []Lesson `json:"lessons"`
}

type Lesson struct {
	LessonNumber int    `json:"lesson_number"`
	Title        string `json:"title"`
	LessonLink   string `json:"lesson_link,omitempty"`
}

// LessonLink returns the link of the lesson with the given number, if any.
func (c *Course) LessonLink(number int) (string, bool) {
	for _, lesson := range c.Lessons {
		if lesson.LessonNumber == number {
			return lesson.LessonLink, lesson.LessonLink != ""
		}
	}
	return "", false
}

type CourseOutline struct {
	Title      string   `json:"title"`
	CourseLink string   `json:"course_link"`
	Lessons    []Lesson `json:"lessons"`
}
