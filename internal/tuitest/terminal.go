package tuitest

import (
	"bytes"
	"io"
)

// queryResponder answers the terminal capability queries bubbletea and
// lipgloss send on startup; without replies they block waiting on a real
// terminal.
type queryResponder struct {
	w   io.Writer
	buf []byte
}

func newQueryResponder(w io.Writer) *queryResponder {
	return &queryResponder{w: w, buf: make([]byte, 0, 128)}
}

func (qr *queryResponder) Process(chunk []byte) {
	qr.buf = append(qr.buf, chunk...)
	qr.scan()
	// Keep a small tail so sequences split across reads still match.
	if len(qr.buf) > 256 {
		qr.buf = qr.buf[len(qr.buf)-64:]
	}
}

func (qr *queryResponder) scan() {
	for {
		answered := false
		if qr.consume([]byte("\x1b[6n"), []byte("\x1b[1;1R")) {
			answered = true
		}
		if qr.consume([]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")) {
			answered = true
		}
		if qr.consume([]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")) {
			answered = true
		}
		if qr.consume([]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")) {
			answered = true
		}
		if qr.consume([]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")) {
			answered = true
		}
		if !answered {
			return
		}
	}
}

func (qr *queryResponder) consume(pattern, response []byte) bool {
	idx := bytes.Index(qr.buf, pattern)
	if idx < 0 {
		return false
	}
	qr.buf = qr.buf[idx+len(pattern):]
	_, _ = qr.w.Write(response)
	return true
}
