package syntax

import (
	"go/token"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// File is one parsed source file plus the edits queued against it.
// A File is owned by a single pass and is not safe for concurrent use.
type File struct {
	Name   string
	Lang   Language
	Source []byte

	tree    *tree_sitter.Tree
	root    *tree_sitter.Node
	edits   []edit
	visited map[Span]struct{}
	calls   []*Call
}

// Close releases the underlying tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Root returns the program node.
func (f *File) Root() *tree_sitter.Node { return f.root }

// HasErrors reports whether the parser had to recover from syntax errors.
func (f *File) HasErrors() bool { return f.root.HasError() }

// Text returns the source text of node.
func (f *File) Text(node *tree_sitter.Node) string {
	if node == nil {
		return ""
	}
	return nodeText(node, f.Source)
}

// Position converts a byte offset into a 1-based line/column position.
func (f *File) Position(offset uint) token.Position {
	return PositionAt(f.Name, f.Source, offset)
}

// PositionAt converts a byte offset in source into a 1-based position.
// Columns count bytes, as go/token does.
func PositionAt(filename string, source []byte, offset uint) token.Position {
	if offset > uint(len(source)) {
		offset = uint(len(source))
	}
	line, col := 1, 1
	for _, b := range source[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return token.Position{Filename: filename, Offset: int(offset), Line: line, Column: col}
}

func (f *File) nodePosition(p tree_sitter.Point, offset uint) token.Position {
	return token.Position{
		Filename: f.Name,
		Offset:   int(offset),
		Line:     int(p.Row) + 1,
		Column:   int(p.Column) + 1,
	}
}

// Call is a call expression with a parenthesized argument list.
type Call struct {
	Span Span
	// Callee covers the callee expression together with any type
	// arguments and optional-chaining token, up to the argument list.
	Callee Span
	Args   []Expr

	Start       token.Position
	End         token.Position
	CalleeStart token.Position
	CalleeEnd   token.Position

	node   *tree_sitter.Node
	fn     *tree_sitter.Node
	broken bool
}

// Function returns the callee expression node.
func (c *Call) Function() *tree_sitter.Node { return c.fn }

// Broken reports whether the call contains a parse error.
func (c *Call) Broken() bool { return c.broken }

func (c *Call) render(r *renderer) { r.copyRange(c.Span.Start, c.Span.End) }

// Calls returns every call expression with an argument list, in document
// order. Tagged templates are not calls for this purpose.
func (f *File) Calls() []*Call {
	if f.calls != nil {
		return f.calls
	}
	f.calls = []*Call{}
	Walk(f.root, func(n *tree_sitter.Node) bool {
		if n.Kind() == "call_expression" {
			if call := f.newCall(n); call != nil {
				f.calls = append(f.calls, call)
			}
		}
		return true
	})
	return f.calls
}

func (f *File) newCall(n *tree_sitter.Node) *Call {
	args := n.ChildByFieldName("arguments")
	fn := n.ChildByFieldName("function")
	if args == nil || fn == nil || args.Kind() != "arguments" {
		return nil
	}

	call := &Call{
		Span:        Span{Start: n.StartByte(), End: n.EndByte()},
		Callee:      Span{Start: n.StartByte(), End: args.StartByte()},
		Start:       f.nodePosition(n.StartPosition(), n.StartByte()),
		End:         f.nodePosition(n.EndPosition(), n.EndByte()),
		CalleeStart: f.nodePosition(fn.StartPosition(), fn.StartByte()),
		CalleeEnd:   f.nodePosition(fn.EndPosition(), fn.EndByte()),
		node:        n,
		fn:          fn,
		broken:      n.HasError(),
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg == nil || arg.Kind() == "comment" {
			continue
		}
		call.Args = append(call.Args, Classify(arg, f.Source))
	}
	return call
}

// Visit marks a call as handled for this pass. It returns false when the
// call was already visited, so two locators never process the same site.
func (f *File) Visit(c *Call) bool {
	if _, ok := f.visited[c.Span]; ok {
		return false
	}
	f.visited[c.Span] = struct{}{}
	return true
}

// Replace queues n as the replacement for call.
func (f *File) Replace(c *Call, n Node) {
	f.edits = append(f.edits, edit{span: c.Span, node: n})
}

// Edited reports whether any replacement has been queued.
func (f *File) Edited() bool { return len(f.edits) > 0 }

// Output renders the source with all queued replacements applied, and a
// Remap from output offsets back to source offsets.
func (f *File) Output() ([]byte, *Remap) {
	r := newRenderer(f.Source, f.edits)
	r.copyRange(0, uint(len(f.Source)))
	return r.buf.Bytes(), &Remap{segments: r.segments}
}
