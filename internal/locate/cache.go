package locate

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnolang/keyfold/internal/syntax"
)

var (
	cacheImports = []string{"QueryCache", "QueryClient", "useQueryClient"}
	cacheMethods = nameSet([]string{"find", "findAll"})
)

// QueryCacheLocator matches find and findAll on a query cache. The method
// names are fixed; the names passed to Execute are ignored.
type QueryCacheLocator struct {
	file *syntax.File
	pkg  string
}

func NewQueryCacheLocator(f *syntax.File, pkg string) *QueryCacheLocator {
	return &QueryCacheLocator{file: f, pkg: pkg}
}

func (l *QueryCacheLocator) Execute(_ []string, replace Replacer) error {
	im, err := ResolveImports(l.file, l.pkg, cacheImports)
	if err != nil {
		return err
	}

	clients := queryClientIdentifiers(l.file, im)
	caches := l.queryCacheIdentifiers(im, clients)

	var matched []*syntax.Call
	for _, call := range l.file.Calls() {
		receiver, method, ok := methodCall(l.file, call)
		if !ok {
			continue
		}
		if _, ok := cacheMethods[method]; !ok || receiver == nil {
			continue
		}

		if receiver.Kind() == "identifier" {
			if _, ok := caches[l.file.Text(receiver)]; ok {
				matched = append(matched, call)
			}
			continue
		}
		if l.isGetQueryCacheCall(im, clients, receiver) {
			matched = append(matched, call)
		}
	}

	apply(l.file, matched, replace)
	return nil
}

// queryCacheIdentifiers returns the names of variables initialised with
// new QueryCache(...) or <client>.getQueryCache().
func (l *QueryCacheLocator) queryCacheIdentifiers(im Imports, clients map[string]struct{}) map[string]struct{} {
	newCache := im.Selector("QueryCache")

	ids := make(map[string]struct{})
	for _, d := range l.file.Declarators() {
		if isInstantiationOf(l.file, d.Init, newCache) || l.isGetQueryCacheCall(im, clients, d.Init) {
			ids[d.Name] = struct{}{}
		}
	}
	return ids
}

func (l *QueryCacheLocator) isGetQueryCacheCall(im Imports, clients map[string]struct{}, node *tree_sitter.Node) bool {
	if node == nil || node.Kind() != "call_expression" {
		return false
	}
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "member_expression" {
		return false
	}
	property := fn.ChildByFieldName("property")
	if property == nil || l.file.Text(property) != "getQueryCache" {
		return false
	}
	return isQueryClient(l.file, im, clients, fn.ChildByFieldName("object"))
}
