// Package nolint finds keyfold-ignore comments and answers whether a call
// site is covered by one.
//
//	// keyfold-ignore                 the next statement
//	useQuery(key, opts) // keyfold-ignore   the statement on this line
//	// keyfold-ignore:queryKey        the next statement, queryKey pass only
//	// keyfold-ignore-file            the whole file
package nolint

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnolang/keyfold/internal/syntax"
)

const (
	ignorePrefix = "keyfold-ignore"
	fileSuffix   = "-file"
)

// Manager holds the ignored ranges of one file.
type Manager struct {
	scopes []ignoreScope
}

// ignoreScope is a byte range where call sites are left alone.
type ignoreScope struct {
	// keys restricts the scope to passes with these key names. Empty means
	// every pass.
	keys  map[string]struct{}
	start uint
	end   uint
}

// ParseComments collects the keyfold-ignore comments of f.
func ParseComments(f *syntax.File) *Manager {
	manager := &Manager{}
	syntax.Walk(f.Root(), func(node *tree_sitter.Node) bool {
		if node.Kind() != "comment" {
			return true
		}
		ns, err := parseComment(node, f)
		if err != nil {
			// not a directive
			return false
		}
		manager.scopes = append(manager.scopes, ns)
		return false
	})
	return manager
}

// parseComment parses a single comment and determines its scope.
func parseComment(comment *tree_sitter.Node, f *syntax.File) (ignoreScope, error) {
	var ns ignoreScope

	text := commentBody(f.Text(comment))
	if !strings.HasPrefix(text, ignorePrefix) {
		return ns, fmt.Errorf("not an ignore comment")
	}
	rest := text[len(ignorePrefix):]

	wholeFile := strings.HasPrefix(rest, fileSuffix)
	if wholeFile {
		rest = rest[len(fileSuffix):]
	}

	// the directive is either bare or followed by a colon and key names
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid ignore comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid ignore comment: no key names after colon")
		}
	}
	ns.keys = parseKeyNames(rest)

	if wholeFile {
		ns.start = 0
		ns.end = uint(len(f.Source))
		return ns, nil
	}

	row := comment.StartPosition().Row

	// Inline: code precedes the comment on its line. Everything from the
	// start of that code (or of the line) up to the comment is covered.
	if prev := comment.PrevSibling(); prev != nil && prev.EndPosition().Row == row {
		ns.start = lineStart(f.Source, comment.StartByte())
		if prev.StartByte() < ns.start {
			ns.start = prev.StartByte()
		}
		ns.end = comment.EndByte()
		return ns, nil
	}

	// Standalone: covers the next statement, skipping other comments.
	next := comment.NextNamedSibling()
	for next != nil && next.Kind() == "comment" {
		next = next.NextNamedSibling()
	}
	ns.start = comment.StartByte()
	ns.end = comment.EndByte()
	if next != nil {
		ns.end = next.EndByte()
	}
	return ns, nil
}

// commentBody strips the comment markers and surrounding space.
func commentBody(text string) string {
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(text[2:], "*/")
	}
	return strings.TrimSpace(text)
}

// parseKeyNames parses the comma-separated key names of a directive.
func parseKeyNames(text string) map[string]struct{} {
	keys := make(map[string]struct{})
	if text == "" {
		return keys
	}
	for _, key := range strings.Split(text, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			keys[key] = struct{}{}
		}
	}
	return keys
}

func lineStart(source []byte, offset uint) uint {
	for offset > 0 && source[offset-1] != '\n' {
		offset--
	}
	return offset
}

// IsIgnored reports whether a call starting at offset must be left alone by
// the pass migrating keyName.
func (m *Manager) IsIgnored(offset uint, keyName string) bool {
	if m == nil {
		return false
	}
	for _, ns := range m.scopes {
		if offset < ns.start || offset > ns.end {
			continue
		}
		// no key names means every pass
		if len(ns.keys) == 0 {
			return true
		}
		if _, ok := ns.keys[keyName]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of directives found.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.scopes)
}
