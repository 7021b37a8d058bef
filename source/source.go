// Package source holds source text and converts byte offsets to line/column positions.
package source

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

// Source is an immutable named source text, safe for concurrent use.
type Source struct {
	name       string
	content    []byte
	lineStarts []int
}

// New creates source. content must not be modified afterwards.
func New(name string, content []byte) *Source {
	s := &Source{name: name, content: content}
	lineCnt := bytes.Count(content, []byte("\n")) + 1
	s.lineStarts = make([]int, lineCnt)
	j := 1
	for i := 0; i < len(content) && j < lineCnt; i++ {
		if content[i] == '\n' {
			s.lineStarts[j] = i + 1
			j++
		}
	}

	return s
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Content() []byte {
	return s.content
}

func (s *Source) Len() int {
	return len(s.content)
}

// Text returns source text between byte offsets, offsets are clamped to content bounds.
func (s *Source) Text(start, end int) string {
	start, end = s.clamp(start), s.clamp(end)
	if start >= end {
		return ""
	}
	return string(s.content[start:end])
}

func (s *Source) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(s.content) {
		return len(s.content)
	}
	return pos
}

// LineCol converts byte offset to 1-based line number and 1-based column counted in runes.
func (s *Source) LineCol(pos int) (line, col int) {
	pos = s.clamp(pos)
	lineIndex := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > pos
	}) - 1

	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCount(s.content[lineStart:pos]) + 1
}

// Pos converts 1-based line and byte column to byte offset.
func (s *Source) Pos(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}

	l := len(s.content)
	if line > len(s.lineStarts) {
		return l
	}

	res := s.lineStarts[line-1] + col - 1
	if res > l {
		return l
	} else {
		return res
	}
}

// Pos is a position in source, implements cstx.SourcePos.
type Pos struct {
	src            *Source
	pos, line, col int
}

// NewPos creates position for byte offset.
func NewPos(s *Source, pos int) Pos {
	res := Pos{src: s, pos: pos}
	if s != nil {
		res.line, res.col = s.LineCol(pos)
	}
	return res
}

func (p Pos) Source() *Source {
	return p.src
}

func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.name
}

func (p Pos) Pos() int {
	return p.pos
}

func (p Pos) Line() int {
	return p.line
}

func (p Pos) Col() int {
	return p.col
}
