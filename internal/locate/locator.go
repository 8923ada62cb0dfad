// Package locate finds the call sites a migration pass applies to and
// hands them, one at a time, to a replacement function.
//
// There are three families of call sites:
//   - hook calls such as useQuery(...), matched by callee name
//   - query client method calls such as queryClient.invalidateQueries(...)
//   - query cache lookups, queryCache.find(...) and findAll(...)
//
// Names are resolved against the file's imports, so aliased and
// namespace-qualified references are found as well.
package locate

import (
	"github.com/gnolang/keyfold/internal/syntax"
)

// Replacer produces the node that takes the place of a matched call.
// Returning the call itself leaves the site untouched.
type Replacer func(call *syntax.Call) syntax.Node

// Locator scans a file for matching call sites and applies replace to each.
// Matches are collected before any replacement is queued, in document
// order.
type Locator interface {
	Execute(names []string, replace Replacer) error
}

// apply runs replace over calls, skipping sites an earlier locator of the
// same pass already handled. It returns the number of replacements queued.
func apply(f *syntax.File, calls []*syntax.Call, replace Replacer) int {
	replaced := 0
	for _, call := range calls {
		if !f.Visit(call) {
			continue
		}
		n := replace(call)
		if c, ok := n.(*syntax.Call); ok && c == call {
			continue
		}
		f.Replace(call, n)
		replaced++
	}
	return replaced
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
