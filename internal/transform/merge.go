package transform

import (
	"fmt"

	"github.com/gnolang/keyfold/internal/syntax"
)

// MergeOptions returns the entries the legacy options argument contributes
// to the new options object.
//
// An object literal contributes its spreads and every property not named
// keyName, in source order. Any other expression is spread as a whole.
func MergeOptions(second syntax.Expr, keyName string) ([]syntax.Node, error) {
	if second == nil {
		return nil, nil
	}

	switch opts := second.(type) {
	case *syntax.ObjectLit:
		if opts.Broken() {
			return nil, errBrokenArgument
		}
		entries := make([]syntax.Node, 0, len(opts.Props))
		for _, p := range opts.Props {
			if keepProperty(p, keyName) {
				entries = append(entries, p)
			}
		}
		return entries, nil
	case *syntax.Spread:
		return nil, errSpreadOptions
	case *syntax.ArrayLit, *syntax.Ident, *syntax.Other:
		if opts.Broken() {
			return nil, errBrokenArgument
		}
		return []syntax.Node{&syntax.SpreadNode{Arg: opts}}, nil
	default:
		panic(fmt.Sprintf("transform: unhandled expression kind %s", opts.Kind()))
	}
}

// keepProperty drops stray key properties so the result holds exactly one.
func keepProperty(p syntax.Property, keyName string) bool {
	return p.IsSpread() || !p.HasName() || p.Name != keyName
}
