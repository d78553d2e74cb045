package goedit

import (
	"go/token"

	"github.com/xhd2015/augmentum/support/edit"
)

type Edit struct {
	buf  *edit.Buffer
	fset *token.FileSet
}

func New(fset *token.FileSet, content string) *Edit {
	return &Edit{
		fset: fset,
		buf:  edit.NewBuffer([]byte(content)),
	}
}

func (c *Edit) Delete(start token.Pos, end token.Pos) {
	c.buf.Delete(c.offsetOf(start), c.offsetOf(end))
}

func (c *Edit) Insert(start token.Pos, content string) {
	c.buf.Insert(c.offsetOf(start), content)
}

func (c *Edit) Replace(start token.Pos, end token.Pos, content string) {
	c.buf.Replace(c.offsetOf(start), c.offsetOf(end), content)
}

func (c *Edit) String() string {
	return c.buf.String()
}

// Buffer exposes the underlying splicer, for callers that only need to ask
// HasEdits without going through a position-based method.
func (c *Edit) Buffer() *edit.Buffer {
	return c.buf
}

// Fset returns the token.FileSet positions passed to Insert/Delete/Replace
// are resolved against.
func (c *Edit) Fset() *token.FileSet {
	return c.fset
}

func (c *Edit) offsetOf(pos token.Pos) int {
	if pos == token.NoPos {
		return -1
	}
	return c.fset.Position(pos).Offset
}
