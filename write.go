package sfzkit

import (
	"bufio"
	"io"
)

// WriteTo re-emits the document as SFZ text: modifiers first, then each
// top-level header recursively. Opcode names, values and header nesting
// survive a round trip; original whitespace and comments do not.
func (s *SFZ) WriteTo(w io.Writer) (int64, error) {
	return s.write(w, false)
}

// WriteCanonicalTo re-emits the document with every header's opcodes in
// canonical order, for deterministic output independent of source order.
func (s *SFZ) WriteCanonicalTo(w io.Writer) (int64, error) {
	return s.write(w, true)
}

func (s *SFZ) write(w io.Writer, canonical bool) (int64, error) {
	ew := newEmitter(w)
	for _, modifier := range s.modifiers {
		switch m := modifier.(type) {
		case *Define:
			ew.line(m.String())
		case *Include:
			ew.line(m.String())
		}
	}
	if len(s.modifiers) > 0 {
		ew.line("")
	}
	for _, header := range s.headers {
		header.emit(ew, canonical)
	}
	return ew.flush()
}

// WriteTo emits the header's tag line, its opcodes as name=value lines in
// stored order, then each child header recursively.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	ew := newEmitter(w)
	h.emit(ew, false)
	return ew.flush()
}

// WriteCanonicalTo emits the header with opcodes in canonical order.
func (h *Header) WriteCanonicalTo(w io.Writer) (int64, error) {
	ew := newEmitter(w)
	h.emit(ew, true)
	return ew.flush()
}

func (h *Header) emit(ew *emitter, canonical bool) {
	ew.line(h.String())
	opcodes := h.Opcodes()
	if canonical {
		opcodes = OrderedOpcodes(opcodes)
	}
	for _, op := range opcodes {
		ew.line(op.String())
	}
	for _, point := range h.points {
		ew.line(point.Name + "=" + point.Value)
	}
	if len(opcodes) > 0 || len(h.points) > 0 {
		ew.line("")
	}
	for _, child := range h.headers {
		child.emit(ew, canonical)
	}
}

// emitter accumulates write state so tree emission reads flat; the first
// error sticks and suppresses further writes.
type emitter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func newEmitter(w io.Writer) *emitter {
	return &emitter{w: bufio.NewWriter(w)}
}

func (e *emitter) line(text string) {
	if e.err != nil {
		return
	}
	n, err := e.w.WriteString(text)
	e.n += int64(n)
	if err != nil {
		e.err = err
		return
	}
	if err := e.w.WriteByte('\n'); err != nil {
		e.err = err
		return
	}
	e.n++
}

func (e *emitter) flush() (int64, error) {
	if e.err != nil {
		return e.n, e.err
	}
	return e.n, e.w.Flush()
}
