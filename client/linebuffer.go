package client

import "bytes"

// lineBuffer reassembles newline-delimited records from arbitrarily
// fragmented reads. Feed may carry any slice boundary, including mid-line
// or several lines at once.
type lineBuffer struct {
	buf []byte
}

// Feed appends p and invokes fn for every complete line now available.
// Blank lines and the trailing newline (CRLF included) are dropped.
func (b *lineBuffer) Feed(p []byte, fn func(line []byte)) {
	b.buf = append(b.buf, p...)
	for {
		nl := bytes.IndexByte(b.buf, '\n')
		if nl < 0 {
			return
		}
		line := bytes.TrimSuffix(b.buf[:nl], []byte("\r"))
		if len(line) > 0 {
			fn(line)
		}
		b.buf = b.buf[nl+1:]
	}
}

// Flush invokes fn for a non-empty unterminated remainder after the stream
// ends.
func (b *lineBuffer) Flush(fn func(line []byte)) {
	rest := bytes.TrimSpace(b.buf)
	b.buf = nil
	if len(rest) > 0 {
		fn(rest)
	}
}
