package transform

import (
	"github.com/gnolang/keyfold/internal/syntax"
)

// Rebuild assembles the migrated call: one options object holding the key
// and the merged entries, followed by every argument from index 2 on,
// untouched.
func Rebuild(call *syntax.Call, key *syntax.KeyProperty, merged []syntax.Node) (*syntax.CallNode, error) {
	if call.Broken() {
		return nil, errBrokenArgument
	}

	entries := make([]syntax.Node, 0, 1+len(merged))
	entries = append(entries, key)
	entries = append(entries, merged...)

	args := []syntax.Node{&syntax.ObjectNode{Entries: entries}}
	if len(call.Args) > 2 {
		for _, rest := range call.Args[2:] {
			args = append(args, rest)
		}
	}

	return &syntax.CallNode{Callee: call.Callee, Args: args}, nil
}
