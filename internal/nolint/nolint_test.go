package nolint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/keyfold/internal/syntax"
)

func parseTS(t *testing.T, src string) *syntax.File {
	t.Helper()
	f, err := syntax.Parse(syntax.TypeScript, "test.ts", []byte(src))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func offsetOf(t *testing.T, src, snippet string) uint {
	t.Helper()
	i := strings.Index(src, snippet)
	require.GreaterOrEqual(t, i, 0, "snippet %q not found", snippet)
	return uint(i)
}

func TestParseKeyNames(t *testing.T) {
	t.Parallel()
	result := parseKeyNames("queryKey, mutationKey,,")
	assert.Equal(t, map[string]struct{}{"queryKey": {}, "mutationKey": {}}, result)
	assert.Empty(t, parseKeyNames(""))
}

func TestCommentBody(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "keyfold-ignore", commentBody("// keyfold-ignore"))
	assert.Equal(t, "keyfold-ignore-file", commentBody("/* keyfold-ignore-file */"))
	assert.Equal(t, "keyfold-ignore:queryKey", commentBody("//keyfold-ignore:queryKey"))
}

func TestIsIgnored(t *testing.T) {
	t.Parallel()
	src := `// keyfold-ignore
useQuery(['a'], opts)
useQuery(['b'], opts)
useQuery(['c'], opts) // keyfold-ignore:queryKey
function f() {
  // keyfold-ignore:mutationKey
  // unrelated
  useIsMutating(['d'], opts)
}
/* not a keyfold-ignore directive */
useQuery(['e'])
// keyfold-ignored
useQuery(['f'])
// keyfold-ignore:
useQuery(['g'])
useQuery([ // keyfold-ignore
  'h',
])
`
	manager := ParseComments(parseTS(t, src))
	assert.Equal(t, 4, manager.Len())

	tests := []struct {
		call    string
		keyName string
		want    bool
	}{
		{"useQuery(['a']", "queryKey", true},
		{"useQuery(['a']", "mutationKey", true},
		{"useQuery(['b']", "queryKey", false},
		{"useQuery(['c']", "queryKey", true},
		{"useQuery(['c']", "mutationKey", false},
		{"useIsMutating(['d']", "mutationKey", true},
		{"useIsMutating(['d']", "queryKey", false},
		{"useQuery(['e']", "queryKey", false},
		{"useQuery(['f']", "queryKey", false},
		{"useQuery(['g']", "queryKey", false},
		{"useQuery([ //", "queryKey", true},
	}
	for _, tt := range tests {
		got := manager.IsIgnored(offsetOf(t, src, tt.call), tt.keyName)
		assert.Equal(t, tt.want, got, "%s (%s)", tt.call, tt.keyName)
	}
}

func TestIsIgnoredWholeFile(t *testing.T) {
	t.Parallel()
	src := "import { useQuery } from '@tanstack/react-query'\n/* keyfold-ignore-file */\nuseQuery(['a'])\n"
	manager := ParseComments(parseTS(t, src))

	assert.True(t, manager.IsIgnored(0, "queryKey"))
	assert.True(t, manager.IsIgnored(offsetOf(t, src, "useQuery(['a']"), "mutationKey"))

	src = "// keyfold-ignore-file:mutationKey\nuseQuery(['a'])\n"
	manager = ParseComments(parseTS(t, src))
	assert.False(t, manager.IsIgnored(offsetOf(t, src, "useQuery("), "queryKey"))
	assert.True(t, manager.IsIgnored(offsetOf(t, src, "useQuery("), "mutationKey"))
}

func TestNilManager(t *testing.T) {
	t.Parallel()
	var manager *Manager
	assert.False(t, manager.IsIgnored(0, "queryKey"))
	assert.Zero(t, manager.Len())
}
