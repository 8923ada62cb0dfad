package locate

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnolang/keyfold/internal/syntax"
)

// clientImports are the exports that produce a query client.
var clientImports = []string{"QueryClient", "useQueryClient"}

// QueryClientLocator matches method calls on a query client, e.g.
// queryClient.invalidateQueries(...) or useQueryClient().refetchQueries(...).
type QueryClientLocator struct {
	file *syntax.File
	pkg  string
}

func NewQueryClientLocator(f *syntax.File, pkg string) *QueryClientLocator {
	return &QueryClientLocator{file: f, pkg: pkg}
}

func (l *QueryClientLocator) Execute(methods []string, replace Replacer) error {
	if len(methods) == 0 {
		return nil
	}
	im, err := ResolveImports(l.file, l.pkg, clientImports)
	if err != nil {
		return err
	}

	wanted := nameSet(methods)
	clients := queryClientIdentifiers(l.file, im)

	var matched []*syntax.Call
	for _, call := range l.file.Calls() {
		receiver, method, ok := methodCall(l.file, call)
		if !ok {
			continue
		}
		if _, ok := wanted[method]; !ok {
			continue
		}
		if isQueryClient(l.file, im, clients, receiver) {
			matched = append(matched, call)
		}
	}

	apply(l.file, matched, replace)
	return nil
}

// queryClientIdentifiers returns the names of variables initialised with
// useQueryClient() or new QueryClient(...).
func queryClientIdentifiers(f *syntax.File, im Imports) map[string]struct{} {
	useClient := im.Selector("useQueryClient")
	newClient := im.Selector("QueryClient")

	ids := make(map[string]struct{})
	for _, d := range f.Declarators() {
		if isCallOf(f, d.Init, useClient) || isInstantiationOf(f, d.Init, newClient) {
			ids[d.Name] = struct{}{}
		}
	}
	return ids
}

func isQueryClient(f *syntax.File, im Imports, clients map[string]struct{}, expr *tree_sitter.Node) bool {
	if expr == nil {
		return false
	}
	if isCallOf(f, expr, im.Selector("useQueryClient")) {
		return true
	}
	if expr.Kind() != "identifier" {
		return false
	}
	_, ok := clients[f.Text(expr)]
	return ok
}
