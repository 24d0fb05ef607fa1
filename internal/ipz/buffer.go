package ipz

// Buffer is a borrowed, read-only view of a VPD image. The parser never
// copies or mutates it; all consumption goes through a Cursor.
type Buffer []byte

// Cursor is a forward-advancing position into a Buffer. Every read is
// bounds checked against the cursor's limit and fails with ErrOutOfBounds
// instead of reading adjacent memory. A cursor never moves backward; to
// revisit a TOC offset callers create a new cursor there.
type Cursor struct {
	buf Buffer
	pos int
	end int
}

// Cursor positions a new cursor at offset, limited by the end of the
// buffer.
func (b Buffer) Cursor(offset int) (*Cursor, error) {
	return b.CursorRange(offset, len(b)-offset)
}

// CursorRange positions a new cursor at offset with an explicit extent.
// The range must lie entirely within the buffer.
func (b Buffer) CursorRange(offset, length int) (*Cursor, error) {
	if offset < 0 || length < 0 || offset+length > len(b) {
		return nil, parseErr(ErrOutOfBounds, "", "", offset,
			"cursor range exceeds buffer")
	}
	return &Cursor{buf: b, pos: offset, end: offset + length}, nil
}

// Pos returns the cursor's absolute byte offset in the buffer.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns how many bytes are left before the cursor's limit.
func (c *Cursor) Remaining() int {
	return c.end - c.pos
}

func (c *Cursor) require(n int) error {
	if n < 0 || c.pos+n > c.end {
		return parseErr(ErrOutOfBounds, "", "", c.pos, "read past cursor limit")
	}
	return nil
}

// Bytes returns a view of the next n bytes and advances past them.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	view := c.buf[c.pos : c.pos+n]
	c.pos += n
	return view, nil
}

// Byte reads a single byte.
func (c *Cursor) Byte() (byte, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// Uint16 reads a little-endian 16-bit value.
func (c *Cursor) Uint16() (uint16, error) {
	if err := c.require(2); err != nil {
		return 0, err
	}
	v := uint16(c.buf[c.pos]) | uint16(c.buf[c.pos+1])<<8
	c.pos += 2
	return v, nil
}

// String reads n bytes as a string.
func (c *Cursor) String(n int) (string, error) {
	view, err := c.Bytes(n)
	if err != nil {
		return "", err
	}
	return string(view), nil
}

// Skip advances the cursor without reading.
func (c *Cursor) Skip(n int) error {
	if err := c.require(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// region returns the byte range [offset, offset+length) of the buffer,
// bounds checked.
func (b Buffer) region(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(b) {
		return nil, parseErr(ErrOutOfBounds, "", "", offset,
			"region exceeds buffer")
	}
	return b[offset : offset+length], nil
}
