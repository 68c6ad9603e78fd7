package peg

// Cursor is an immutable byte offset into the input.
type Cursor struct {
	offset int
}

// At returns a cursor positioned at the given byte offset.
func At(offset int) Cursor {
	return Cursor{offset: offset}
}

// Offset returns the byte offset of the cursor.
func (c Cursor) Offset() int {
	return c.offset
}

// Advance returns a new cursor n bytes further along.
func (c Cursor) Advance(n int) Cursor {
	return Cursor{offset: c.offset + n}
}
