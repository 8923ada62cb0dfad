package syntax

import (
	"bytes"
	"sort"
)

// Node is anything that can take the place of a call site in the output:
// a classified expression rendered verbatim, or a synthesized node built
// from pieces of the original source.
type Node interface {
	render(r *renderer)
}

// KeyProperty is the synthesized `keyName: <value>` entry.
type KeyProperty struct {
	Name  string
	Value Expr
}

func (k *KeyProperty) render(r *renderer) {
	r.buf.WriteString(k.Name)
	r.buf.WriteString(": ")
	k.Value.render(r)
}

// SpreadNode is a synthesized `...<arg>` object entry.
type SpreadNode struct {
	Arg Expr
}

func (s *SpreadNode) render(r *renderer) {
	r.buf.WriteString("...")
	s.Arg.render(r)
}

// ObjectNode is a synthesized object literal.
type ObjectNode struct {
	Entries []Node
}

func (o *ObjectNode) render(r *renderer) {
	if len(o.Entries) == 0 {
		r.buf.WriteString("{}")
		return
	}
	r.buf.WriteString("{ ")
	for i, e := range o.Entries {
		if i > 0 {
			r.buf.WriteString(", ")
		}
		e.render(r)
	}
	r.buf.WriteString(" }")
}

// CallNode is a synthesized call. Callee covers everything from the start
// of the original call up to its argument list, so type arguments and
// optional chaining survive untouched.
type CallNode struct {
	Callee Span
	Args   []Node
}

func (c *CallNode) render(r *renderer) {
	r.copyRange(c.Callee.Start, c.Callee.End)
	r.buf.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			r.buf.WriteString(", ")
		}
		a.render(r)
	}
	r.buf.WriteByte(')')
}

// Render returns the text a node would be written as, against the
// unedited source.
func Render(n Node, source []byte) string {
	r := &renderer{src: source}
	n.render(r)
	return r.buf.String()
}

type edit struct {
	span Span
	node Node
}

// segment maps a run of rendered output back onto the source.
type segment struct {
	out         Span
	src         Span
	synthesized bool
}

type renderer struct {
	src   []byte
	edits []edit
	buf   bytes.Buffer

	// only top-level copies are recorded, so nested output maps to the
	// start of the edit that produced it.
	depth    int
	segments []segment
}

func newRenderer(src []byte, edits []edit) *renderer {
	sorted := make([]edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].span.Start != sorted[j].span.Start {
			return sorted[i].span.Start < sorted[j].span.Start
		}
		return sorted[i].span.End > sorted[j].span.End
	})
	return &renderer{src: src, edits: sorted}
}

// copyRange writes src[start:end], substituting every outermost edit that
// lies inside the range.
func (r *renderer) copyRange(start, end uint) {
	cursor := start
	for _, e := range r.edits {
		if e.span.Start >= end {
			break
		}
		if e.span.Start < cursor || e.span.End > end {
			continue
		}
		r.verbatim(cursor, e.span.Start)

		outStart := uint(r.buf.Len())
		r.depth++
		e.node.render(r)
		r.depth--
		r.record(Span{outStart, uint(r.buf.Len())}, e.span, true)

		cursor = e.span.End
	}
	r.verbatim(cursor, end)
}

func (r *renderer) verbatim(start, end uint) {
	if start >= end {
		return
	}
	outStart := uint(r.buf.Len())
	r.buf.Write(r.src[start:end])
	r.record(Span{outStart, uint(r.buf.Len())}, Span{start, end}, false)
}

func (r *renderer) record(out, src Span, synthesized bool) {
	if r.depth > 0 {
		return
	}
	r.segments = append(r.segments, segment{out: out, src: src, synthesized: synthesized})
}

// Remap translates byte offsets in rendered output back to offsets in the
// source the output was rendered from.
type Remap struct {
	segments []segment
}

// Offset maps an output offset to a source offset. Offsets inside
// synthesized text map to the start of the replaced call.
func (m *Remap) Offset(out uint) uint {
	if m == nil {
		return out
	}
	for _, s := range m.segments {
		if out < s.out.Start || out >= s.out.End {
			continue
		}
		if s.synthesized {
			return s.src.Start
		}
		return s.src.Start + (out - s.out.Start)
	}
	if n := len(m.segments); n > 0 {
		last := m.segments[n-1]
		return last.src.End + (out - last.out.End)
	}
	return out
}
