package transform

import (
	"fmt"

	"github.com/gnolang/keyfold/internal/syntax"
)

// Scope answers binding questions about identifiers visible at a call site.
type Scope interface {
	BoundToArray(call *syntax.Call, name string) bool
}

// ExtractKey builds the key property from the call's first argument.
//
// An array literal becomes the key value as written. An identifier is
// accepted only when scope resolves it to a variable initialised with an
// array literal, and the key then references the identifier. Everything
// else yields an *UnknownUsageError.
func ExtractKey(call *syntax.Call, scope Scope, keyName, filename string) (*syntax.KeyProperty, error) {
	if len(call.Args) == 0 {
		return nil, newUnknownUsageError(call, filename)
	}

	switch arg := call.Args[0].(type) {
	case *syntax.ArrayLit:
		return &syntax.KeyProperty{Name: keyName, Value: arg}, nil
	case *syntax.Ident:
		if scope != nil && scope.BoundToArray(call, arg.Name) {
			return &syntax.KeyProperty{Name: keyName, Value: arg}, nil
		}
		return nil, newUnknownUsageError(call, filename)
	case *syntax.ObjectLit, *syntax.Spread, *syntax.Other:
		return nil, newUnknownUsageError(call, filename)
	default:
		panic(fmt.Sprintf("transform: unhandled expression kind %s", arg.Kind()))
	}
}
