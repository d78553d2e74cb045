// Package edit provides an offset-based text splicer: a flat list of
// inserts, deletes, and replacements against an original byte slice,
// materialized into the edited text on demand. It underlies
// support/edit/goedit, which translates go/token.Pos positions into these
// offsets.
//
// No third-party library in the reference pack does this narrow, fully
// deterministic job (cut text, splice text), so it stays on the standard
// library - see DESIGN.md.
package edit

import (
	"sort"
)

type editKind int

const (
	kindInsert editKind = iota
	kindDelete
	kindReplace
)

type editOp struct {
	start   int
	end     int // -1 for a pure insert
	kind    editKind
	content string
}

// Buffer accumulates edits against an immutable original byte slice.
type Buffer struct {
	original []byte
	edits    []editOp
}

// NewBuffer wraps content for editing. content is never mutated.
func NewBuffer(content []byte) *Buffer {
	return &Buffer{original: content}
}

// Insert splices content in immediately before offset pos, without
// consuming any original bytes.
func (b *Buffer) Insert(pos int, content string) {
	b.edits = append(b.edits, editOp{start: pos, end: -1, kind: kindInsert, content: content})
}

// Delete removes the original bytes in [start, end).
func (b *Buffer) Delete(start, end int) {
	b.edits = append(b.edits, editOp{start: start, end: end, kind: kindDelete})
}

// Replace removes the original bytes in [start, end) and splices content
// in their place.
func (b *Buffer) Replace(start, end int, content string) {
	b.edits = append(b.edits, editOp{start: start, end: end, kind: kindReplace, content: content})
}

// HasEdits reports whether any edit has been recorded.
func (b *Buffer) HasEdits() bool {
	return len(b.edits) > 0
}

// String materializes the original content with every recorded edit
// applied, in position order; inserts at the same offset as a delete or
// replace are emitted before it, preserving the order edits were recorded
// in when offsets tie.
func (b *Buffer) String() string {
	if len(b.edits) == 0 {
		return string(b.original)
	}

	ordered := make([]editOp, len(b.edits))
	copy(ordered, b.edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].start != ordered[j].start {
			return ordered[i].start < ordered[j].start
		}
		return ordered[i].kind == kindInsert && ordered[j].kind != kindInsert
	})

	var out []byte
	cursor := 0
	for _, e := range ordered {
		if e.start < 0 {
			continue // token.NoPos sentinel from goedit, nothing to anchor to
		}
		if e.start > cursor {
			out = append(out, b.original[cursor:e.start]...)
			cursor = e.start
		}
		switch e.kind {
		case kindInsert:
			out = append(out, e.content...)
		case kindDelete:
			cursor = maxInt(cursor, e.end)
		case kindReplace:
			out = append(out, e.content...)
			cursor = maxInt(cursor, e.end)
		}
	}
	if cursor < len(b.original) {
		out = append(out, b.original[cursor:]...)
	}
	return string(out)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
