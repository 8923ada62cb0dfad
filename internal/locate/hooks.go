package locate

import (
	"github.com/gnolang/keyfold/internal/syntax"
)

// HookLocator matches direct calls of hooks and functions, e.g.
// useQuery(...), RQ.useQuery(...) or an aliased import.
type HookLocator struct {
	file *syntax.File
	pkg  string
}

func NewHookLocator(f *syntax.File, pkg string) *HookLocator {
	return &HookLocator{file: f, pkg: pkg}
}

func (l *HookLocator) Execute(hooks []string, replace Replacer) error {
	if len(hooks) == 0 {
		return nil
	}
	im, err := ResolveImports(l.file, l.pkg, hooks)
	if err != nil {
		return err
	}

	selectors := make([]Selector, 0, len(hooks))
	for _, h := range hooks {
		selectors = append(selectors, im.Selector(h))
	}

	var matched []*syntax.Call
	for _, call := range l.file.Calls() {
		for _, sel := range selectors {
			if matches(l.file, call.Function(), sel) {
				matched = append(matched, call)
				break
			}
		}
	}

	apply(l.file, matched, replace)
	return nil
}
