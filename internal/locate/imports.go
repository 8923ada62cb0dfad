package locate

import (
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnolang/keyfold/internal/syntax"
)

// DefaultPackage is the module whose exports the locators look for.
const DefaultPackage = "@tanstack/react-query"

var ErrAmbiguousNamespace = errors.New("ambiguous namespace import")

// Selector is how an imported name is referenced in a file: either a bare
// local identifier or a member of a namespace import.
type Selector struct {
	Namespace string
	Name      string
}

func (s Selector) String() string {
	if s.Namespace != "" {
		return s.Namespace + "." + s.Name
	}
	return s.Name
}

// Imports maps the names a locator cares about to their selectors.
type Imports struct {
	namespace string
	locals    map[string]string
}

// ResolveImports reads the import declarations of pkg in f.
//
// A namespace import wins over everything else: every name is then
// addressed as ns.name. Otherwise a named import contributes its local
// alias, and a name that is not imported at all is matched as written.
func ResolveImports(f *syntax.File, pkg string, names []string) (Imports, error) {
	im := Imports{locals: make(map[string]string, len(names))}

	var namespaces []string
	for i := uint(0); i < f.Root().NamedChildCount(); i++ {
		stmt := f.Root().NamedChild(i)
		if stmt == nil || stmt.Kind() != "import_statement" {
			continue
		}
		source := stmt.ChildByFieldName("source")
		if source == nil || syntax.StringValue(source, f.Source) != pkg {
			continue
		}

		syntax.Walk(stmt, func(n *tree_sitter.Node) bool {
			switch n.Kind() {
			case "namespace_import":
				for j := uint(0); j < n.NamedChildCount(); j++ {
					if id := n.NamedChild(j); id != nil && id.Kind() == "identifier" {
						namespaces = append(namespaces, f.Text(id))
					}
				}
				return false
			case "import_specifier":
				name := n.ChildByFieldName("name")
				if name == nil {
					return false
				}
				imported := f.Text(name)
				if name.Kind() == "string" {
					imported = syntax.StringValue(name, f.Source)
				}
				local := imported
				if alias := n.ChildByFieldName("alias"); alias != nil {
					local = f.Text(alias)
				}
				if _, seen := im.locals[imported]; !seen {
					im.locals[imported] = local
				}
				return false
			}
			return true
		})
	}

	if len(namespaces) > 1 {
		return Imports{}, fmt.Errorf("%w of %q in %s", ErrAmbiguousNamespace, pkg, f.Name)
	}
	if len(namespaces) == 1 {
		im.namespace = namespaces[0]
	}
	return im, nil
}

// Selector returns how name is referenced in the file.
func (im Imports) Selector(name string) Selector {
	if im.namespace != "" {
		return Selector{Namespace: im.namespace, Name: name}
	}
	if local, ok := im.locals[name]; ok {
		return Selector{Name: local}
	}
	return Selector{Name: name}
}

// matches reports whether expr is a reference to sel.
func matches(f *syntax.File, expr *tree_sitter.Node, sel Selector) bool {
	if expr == nil {
		return false
	}
	if sel.Namespace == "" {
		return expr.Kind() == "identifier" && f.Text(expr) == sel.Name
	}
	if expr.Kind() != "member_expression" {
		return false
	}
	object := expr.ChildByFieldName("object")
	property := expr.ChildByFieldName("property")
	return object != nil && property != nil &&
		object.Kind() == "identifier" && f.Text(object) == sel.Namespace &&
		f.Text(property) == sel.Name
}

// isCallOf reports whether node is a call of sel, e.g. useQueryClient().
func isCallOf(f *syntax.File, node *tree_sitter.Node, sel Selector) bool {
	return node != nil && node.Kind() == "call_expression" &&
		matches(f, node.ChildByFieldName("function"), sel)
}

// isInstantiationOf reports whether node is `new sel(...)`.
func isInstantiationOf(f *syntax.File, node *tree_sitter.Node, sel Selector) bool {
	return node != nil && node.Kind() == "new_expression" &&
		matches(f, node.ChildByFieldName("constructor"), sel)
}

// methodCall splits a call's callee into receiver and method name when the
// callee is a plain member access.
func methodCall(f *syntax.File, call *syntax.Call) (receiver *tree_sitter.Node, method string, ok bool) {
	fn := call.Function()
	if fn == nil || fn.Kind() != "member_expression" {
		return nil, "", false
	}
	property := fn.ChildByFieldName("property")
	if property == nil || property.Kind() != "property_identifier" {
		return nil, "", false
	}
	return fn.ChildByFieldName("object"), f.Text(property), true
}
