package syntax

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Declarator is a `name = init` binding from a const, let or var declaration.
type Declarator struct {
	Name string
	Init *tree_sitter.Node
}

// Declarators returns every simple identifier declarator in the file,
// in document order. Destructuring patterns are skipped.
func (f *File) Declarators() []Declarator {
	var out []Declarator
	Walk(f.root, func(n *tree_sitter.Node) bool {
		if n.Kind() != "variable_declarator" {
			return true
		}
		name := n.ChildByFieldName("name")
		if name == nil || name.Kind() != "identifier" {
			return true
		}
		out = append(out, Declarator{Name: f.Text(name), Init: n.ChildByFieldName("value")})
		return true
	})
	return out
}

// BoundToArray reports whether name, as seen from the call site, refers to
// a variable initialised with an array literal. Lookup walks outwards
// through the enclosing blocks, loop headers and catch clauses; the nearest
// declaration wins, and a function parameter of the same name shadows
// anything further out. var declarations belong to the enclosing function.
func (f *File) BoundToArray(c *Call, name string) bool {
	init, ok := f.lookup(c.node, name)
	return ok && init != nil && init.Kind() == "array"
}

var functionKinds = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true,
	"generator_function_declaration": true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// lookup returns the initializer bound to name in the nearest scope
// enclosing from. found is false when no declaration is visible.
func (f *File) lookup(from *tree_sitter.Node, name string) (init *tree_sitter.Node, found bool) {
	for n := from.Parent(); n != nil; n = n.Parent() {
		switch kind := n.Kind(); kind {
		case "statement_block", "class_body", "switch_body":
			if init, found := f.declaredIn(n, name); found {
				return init, true
			}
		case "program":
			if init, found := f.declaredIn(n, name); found {
				return init, true
			}
			if init, found := f.hoistedVar(n, name); found {
				return init, true
			}
		case "for_statement":
			if decl := n.ChildByFieldName("initializer"); decl != nil {
				if init, found := f.declaratorFor(decl, name); found {
					return init, true
				}
			}
		case "for_in_statement":
			// `for (k of xs)` without const, let or var assigns an outer binding
			if n.ChildByFieldName("kind") == nil {
				continue
			}
			if left := n.ChildByFieldName("left"); left != nil && f.bindsName(left, name) {
				return nil, true
			}
		case "catch_clause":
			if param := n.ChildByFieldName("parameter"); param != nil && f.bindsName(param, name) {
				return nil, true
			}
		default:
			if !functionKinds[kind] {
				continue
			}
			if f.hasParameter(n, name) {
				return nil, true
			}
			if body := n.ChildByFieldName("body"); body != nil {
				if init, found := f.hoistedVar(body, name); found {
					return init, true
				}
			}
		}
	}
	return nil, false
}

// declaredIn looks for name among the statements directly inside block.
func (f *File) declaredIn(block *tree_sitter.Node, name string) (*tree_sitter.Node, bool) {
	for i := uint(0); i < block.NamedChildCount(); i++ {
		stmt := block.NamedChild(i)
		if stmt == nil {
			continue
		}
		if stmt.Kind() == "export_statement" {
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				stmt = decl
			}
		}

		switch stmt.Kind() {
		case "lexical_declaration", "variable_declaration":
			if init, found := f.declaratorFor(stmt, name); found {
				return init, true
			}
		case "function_declaration", "generator_function_declaration", "class_declaration":
			if id := stmt.ChildByFieldName("name"); id != nil && f.Text(id) == name {
				return nil, true
			}
		case "import_statement":
			if f.importsName(stmt, name) {
				return nil, true
			}
		}
	}
	return nil, false
}

// declaratorFor returns the initializer of the declarator named name in a
// const, let or var declaration.
func (f *File) declaratorFor(decl *tree_sitter.Node, name string) (*tree_sitter.Node, bool) {
	switch decl.Kind() {
	case "lexical_declaration", "variable_declaration":
	default:
		return nil, false
	}
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		d := decl.NamedChild(i)
		if d == nil || d.Kind() != "variable_declarator" {
			continue
		}
		id := d.ChildByFieldName("name")
		if id == nil {
			continue
		}
		if id.Kind() == "identifier" {
			if f.Text(id) == name {
				return d.ChildByFieldName("value"), true
			}
			continue
		}
		if f.bindsName(id, name) {
			return nil, true
		}
	}
	return nil, false
}

// hoistedVar finds a var declaration of name anywhere in scope, including
// nested blocks and loop headers, without entering nested functions.
func (f *File) hoistedVar(scope *tree_sitter.Node, name string) (init *tree_sitter.Node, found bool) {
	for i := uint(0); i < scope.NamedChildCount() && !found; i++ {
		child := scope.NamedChild(i)
		if child == nil {
			continue
		}
		Walk(child, func(n *tree_sitter.Node) bool {
			if found || functionKinds[n.Kind()] {
				return false
			}
			switch n.Kind() {
			case "variable_declaration":
				init, found = f.declaratorFor(n, name)
				return false
			case "for_in_statement":
				if kind := n.ChildByFieldName("kind"); kind != nil && f.Text(kind) == "var" {
					if left := n.ChildByFieldName("left"); left != nil && f.bindsName(left, name) {
						found = true
						return false
					}
				}
			}
			return true
		})
	}
	return init, found
}

func (f *File) hasParameter(fn *tree_sitter.Node, name string) bool {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		params = fn.ChildByFieldName("parameter")
	}
	if params == nil {
		return false
	}
	return f.bindsName(params, name)
}

// bindsName reports whether the binding pattern introduces name.
func (f *File) bindsName(pattern *tree_sitter.Node, name string) bool {
	found := false
	Walk(pattern, func(n *tree_sitter.Node) bool {
		if found {
			return false
		}
		switch n.Kind() {
		case "identifier", "shorthand_property_identifier_pattern":
			// default values are expressions, not bindings
			if p := n.Parent(); p != nil && p.Kind() == "assignment_pattern" {
				if right := p.ChildByFieldName("right"); right != nil && right.StartByte() == n.StartByte() {
					return false
				}
			}
			found = f.Text(n) == name
			return false
		case "type_annotation":
			return false
		}
		return true
	})
	return found
}

func (f *File) importsName(stmt *tree_sitter.Node, name string) bool {
	found := false
	Walk(stmt, func(n *tree_sitter.Node) bool {
		if found {
			return false
		}
		if n.Kind() == "string" {
			return false
		}
		if n.Kind() == "import_specifier" {
			local := n.ChildByFieldName("alias")
			if local == nil {
				local = n.ChildByFieldName("name")
			}
			found = local != nil && f.Text(local) == name
			return false
		}
		if n.Kind() == "identifier" {
			found = f.Text(n) == name
		}
		return true
	})
	return found
}
