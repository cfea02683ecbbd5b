package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/lectern-ai/lectern/internal/model"
)

// Course scripts start with a small header block followed by lesson sections:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: Introduction
//	Lesson Link: <url>
//	<lesson transcript...>
var lessonHeaderRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// ParsedDocument is one parsed course script: the catalog entry, any text
// before the first lesson, and the raw text of each lesson aligned with
// Course.Lessons.
type ParsedDocument struct {
	Course      model.Course
	Preamble    string
	LessonTexts []string
}

func ParseCourseDocument(r io.Reader) (*ParsedDocument, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &ParsedDocument{}
	var sections []strings.Builder
	sections = append(sections, strings.Builder{}) // preamble

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "Course Title:"):
			doc.Course.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Title:"))
			continue
		case strings.HasPrefix(trimmed, "Course Link:"):
			doc.Course.CourseLink = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Link:"))
			continue
		case strings.HasPrefix(trimmed, "Course Instructor:"):
			doc.Course.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Instructor:"))
			continue
		}

		if match := lessonHeaderRe.FindStringSubmatch(trimmed); match != nil {
			if number, err := strconv.Atoi(match[1]); err == nil && number >= 0 {
				doc.Course.Lessons = append(doc.Course.Lessons, model.Lesson{
					LessonNumber: number,
					Title:        strings.TrimSpace(match[2]),
				})
				sections = append(sections, strings.Builder{})
				continue
			}
		}

		if strings.HasPrefix(trimmed, "Lesson Link:") && len(doc.Course.Lessons) > 0 {
			link := strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
			doc.Course.Lessons[len(doc.Course.Lessons)-1].LessonLink = link
			continue
		}

		current := &sections[len(sections)-1]
		current.WriteString(line)
		current.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if doc.Course.Title == "" {
		return nil, fmt.Errorf("course document has no title")
	}
	doc.Preamble = strings.TrimSpace(sections[0].String())
	for _, section := range sections[1:] {
		doc.LessonTexts = append(doc.LessonTexts, strings.TrimSpace(section.String()))
	}
	return doc, nil
}
