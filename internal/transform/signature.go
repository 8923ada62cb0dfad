package transform

import "github.com/gnolang/keyfold/internal/syntax"

// CanSkip reports whether call already has the single-options-object shape.
//
// The first argument must be an object literal carrying at least one named
// property other than keyName. An object holding only the key property is
// not recognised as migrated and goes on to extraction, where it fails
// with an unknown-usage diagnostic.
func CanSkip(call *syntax.Call, keyName string) bool {
	if len(call.Args) == 0 {
		return false
	}
	obj, ok := call.Args[0].(*syntax.ObjectLit)
	if !ok {
		return false
	}
	for _, p := range obj.Props {
		switch p.Kind {
		case syntax.PropSpread:
			continue
		case syntax.PropComputed:
			return true
		default:
			if p.Name != keyName {
				return true
			}
		}
	}
	return false
}
