package syntax

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language selects which tree-sitter grammar to use for parsing.
type Language int

const (
	JavaScript Language = iota
	TypeScript
	TSX
)

func (l Language) String() string {
	switch l {
	case JavaScript:
		return "javascript"
	case TypeScript:
		return "typescript"
	case TSX:
		return "tsx"
	default:
		return fmt.Sprintf("language(%d)", int(l))
	}
}

var ErrUnsupportedLanguage = errors.New("unsupported language")

var extensionLanguages = map[string]Language{
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".ts":  TypeScript,
	".mts": TypeScript,
	".cts": TypeScript,
	".tsx": TSX,
}

// LanguageForFile picks the grammar from the file extension.
// JSX lives in the JavaScript grammar, so .jsx needs no separate entry.
func LanguageForFile(filename string) (Language, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	l, ok := extensionLanguages[ext]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, ext)
	}
	return l, nil
}

// Extensions returns every file extension LanguageForFile understands.
func Extensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	return exts
}

var (
	languagesOnce sync.Once
	parserPools   map[Language]*sync.Pool
)

func grammar(l Language) (unsafe.Pointer, error) {
	switch l {
	case JavaScript:
		return tree_sitter_javascript.Language(), nil
	case TypeScript:
		return tree_sitter_typescript.LanguageTypescript(), nil
	case TSX:
		return tree_sitter_typescript.LanguageTSX(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, l)
	}
}

func initLanguages() {
	languagesOnce.Do(func() {
		parserPools = make(map[Language]*sync.Pool, 3)
		for _, l := range []Language{JavaScript, TypeScript, TSX} {
			ptr, _ := grammar(l)
			tsLang := tree_sitter.NewLanguage(ptr)
			parserPools[l] = &sync.Pool{
				New: func() any {
					p := tree_sitter.NewParser()
					if err := p.SetLanguage(tsLang); err != nil {
						panic(fmt.Sprintf("set language: %v", err))
					}
					return p
				},
			}
		}
	})
}

func parseTree(l Language, source []byte) (*tree_sitter.Tree, error) {
	initLanguages()

	pool, ok := parserPools[l]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, l)
	}

	p, _ := pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to get parser for language %s", l)
	}
	tree := p.Parse(source, nil)
	pool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("parse failed for language %s", l)
	}
	return tree, nil
}

// Parse parses source into a File. The caller must call Close when done.
func Parse(l Language, filename string, source []byte) (*File, error) {
	tree, err := parseTree(l, source)
	if err != nil {
		return nil, err
	}
	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, fmt.Errorf("parse returned nil root node")
	}

	return &File{
		Name:    filename,
		Lang:    l,
		Source:  source,
		tree:    tree,
		root:    root,
		visited: make(map[Span]struct{}),
	}, nil
}

// DumpTree returns the S-expression representation of the parsed source.
func DumpTree(l Language, source []byte) (string, error) {
	tree, err := parseTree(l, source)
	if err != nil {
		return "", err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return "", fmt.Errorf("parse returned nil root node")
	}
	return root.ToSexp(), nil
}

// WalkFunc is called for each node during traversal.
// Return false to skip children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the tree in depth-first order, which is document order.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}
