package ingest

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+(?:\s+|$)|[^.!?]+$`)

// Chunker splits lesson text into sentence-aligned chunks bounded by a
// character budget, carrying a short sentence overlap between consecutive
// chunks so context survives the cut.
type Chunker struct {
	chunkSize int
	overlap   int
}

func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 100
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

func (c *Chunker) Split(content string) []string {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return nil
	}
	var chunks []string
	var current []string
	currentLen := 0
	for _, sentence := range sentences {
		if currentLen > 0 && currentLen+len(sentence)+1 > c.chunkSize {
			chunks = append(chunks, strings.Join(current, " "))
			current, currentLen = c.carryOverlap(current)
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// carryOverlap keeps trailing sentences of the finished chunk, newest last,
// within the overlap budget.
func (c *Chunker) carryOverlap(finished []string) ([]string, int) {
	var carry []string
	carryLen := 0
	for i := len(finished) - 1; i >= 0; i-- {
		if carryLen+len(finished[i])+1 > c.overlap {
			break
		}
		carryLen += len(finished[i]) + 1
		carry = append([]string{finished[i]}, carry...)
	}
	return carry, carryLen
}

func splitSentences(content string) []string {
	normalized := strings.TrimSpace(content)
	if normalized == "" {
		return nil
	}
	matches := sentenceRe.FindAllString(normalized, -1)
	var sentences []string
	for _, match := range matches {
		trimmed := strings.TrimSpace(match)
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	if len(sentences) == 0 {
		return []string{normalized}
	}
	return sentences
}

// MarkdownToText flattens a markdown document to plain text so sentence
// splitting is not confused by markup. Fenced code blocks are kept verbatim.
func MarkdownToText(markdown string) string {
	source := []byte(markdown)
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	var parts []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.FencedCodeBlock:
			var code strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				code.Write(line.Value(source))
			}
			if code.Len() > 0 {
				parts = append(parts, strings.TrimRight(code.String(), "\n"))
			}
		default:
			if txt := extractText(node, source); txt != "" {
				parts = append(parts, txt)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteString(" ")
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
