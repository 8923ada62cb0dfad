package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/keyfold/internal/syntax"
)

func parse(t *testing.T, source string) *syntax.File {
	t.Helper()
	f, err := syntax.Parse(syntax.TSX, "test.tsx", []byte(source))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

// record returns a Replacer that leaves every call alone and collects the
// callee of each call it sees.
func record(f *syntax.File, seen *[]string) Replacer {
	return func(call *syntax.Call) syntax.Node {
		*seen = append(*seen, f.Text(call.Function()))
		return call
	}
}

func TestHookLocator(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		source string
		hooks  []string
		want   []string
	}{
		{
			name:   "named import",
			source: "import { useQuery } from '@tanstack/react-query'\nuseQuery(['a'])\nuseQueries([])\nuseIsFetching(['b'])",
			hooks:  []string{"useIsFetching", "useQuery"},
			want:   []string{"useQuery", "useIsFetching"},
		},
		{
			name:   "aliased import",
			source: "import { useQuery as useQ } from '@tanstack/react-query'\nuseQ(['a'])\nuseQuery(['b'])",
			hooks:  []string{"useQuery"},
			want:   []string{"useQ"},
		},
		{
			name:   "namespace import",
			source: "import * as RQ from '@tanstack/react-query'\nRQ.useQuery(['a'])\nuseQuery(['b'])\nOther.useQuery(['c'])",
			hooks:  []string{"useQuery"},
			want:   []string{"RQ.useQuery"},
		},
		{
			name:   "not imported",
			source: "useQuery(['a'])",
			hooks:  []string{"useQuery"},
			want:   []string{"useQuery"},
		},
		{
			name:   "imported from another package",
			source: "import { useQuery as useSWR } from 'swr'\nuseQuery(['a'])\nuseSWR(['b'])",
			hooks:  []string{"useQuery"},
			want:   []string{"useQuery"},
		},
		{
			name:   "nested calls in document order",
			source: "useQuery(['a', useQuery(['b'])])\nuseQuery(['c'])",
			hooks:  []string{"useQuery"},
			want:   []string{"useQuery", "useQuery", "useQuery"},
		},
		{
			name:   "inside jsx",
			source: "const El = () => <div>{useQuery(['a']).data}</div>",
			hooks:  []string{"useQuery"},
			want:   []string{"useQuery"},
		},
		{
			name:   "no hooks",
			source: "useQuery(['a'])",
			hooks:  nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := parse(t, tt.source)

			var seen []string
			err := NewHookLocator(f, DefaultPackage).Execute(tt.hooks, record(f, &seen))
			require.NoError(t, err)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestQueryClientLocator(t *testing.T) {
	t.Parallel()
	methods := []string{"invalidateQueries", "refetchQueries", "cancelQueries"}
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name: "useQueryClient variable",
			source: `import { useQueryClient } from '@tanstack/react-query'
const queryClient = useQueryClient()
queryClient.invalidateQueries(['a'])
queryClient.getQueryData(['a'])
other.invalidateQueries(['b'])`,
			want: []string{"queryClient.invalidateQueries"},
		},
		{
			name:   "direct hook call",
			source: "useQueryClient().refetchQueries(['a'])",
			want:   []string{"useQueryClient().refetchQueries"},
		},
		{
			name: "new QueryClient",
			source: `import { QueryClient } from '@tanstack/react-query'
export const client = new QueryClient({ defaultOptions: {} })
client.cancelQueries(['a'])`,
			want: []string{"client.cancelQueries"},
		},
		{
			name: "aliased constructor",
			source: `import { QueryClient as QC } from '@tanstack/react-query'
const client = new QC()
const other = new QueryClient()
client.cancelQueries(['a'])
other.cancelQueries(['b'])`,
			want: []string{"client.cancelQueries"},
		},
		{
			name: "namespace import",
			source: `import * as RQ from '@tanstack/react-query'
const client = RQ.useQueryClient()
client.invalidateQueries(['a'])
RQ.useQueryClient().refetchQueries(['b'])`,
			want: []string{"client.invalidateQueries", "RQ.useQueryClient().refetchQueries"},
		},
		{
			name:   "unknown receiver",
			source: "queryClient.invalidateQueries(['a'])",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := parse(t, tt.source)

			var seen []string
			err := NewQueryClientLocator(f, DefaultPackage).Execute(methods, record(f, &seen))
			require.NoError(t, err)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestQueryCacheLocator(t *testing.T) {
	t.Parallel()
	source := `import { QueryCache, QueryClient, useQueryClient } from '@tanstack/react-query'
const queryClient = useQueryClient()
const client = new QueryClient()
const queryCache = new QueryCache()
const cache = client.getQueryCache()
queryCache.find(['a'])
queryClient.getQueryCache().findAll(['b'])
cache.find(['c'])
queryCache.getAll()
unrelated.find(['d'])
items.find(x => x)`

	f := parse(t, source)

	var seen []string
	err := NewQueryCacheLocator(f, DefaultPackage).Execute([]string{"ignored"}, record(f, &seen))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"queryCache.find",
		"queryClient.getQueryCache().findAll",
		"cache.find",
	}, seen)
}

func TestAmbiguousNamespace(t *testing.T) {
	t.Parallel()
	f := parse(t, "import * as A from '@tanstack/react-query'\nimport * as B from '@tanstack/react-query'\nA.useQuery(['a'])")

	var seen []string
	err := NewHookLocator(f, DefaultPackage).Execute([]string{"useQuery"}, record(f, &seen))
	assert.ErrorIs(t, err, ErrAmbiguousNamespace)
	assert.Empty(t, seen)
}

func TestCustomPackage(t *testing.T) {
	t.Parallel()
	f := parse(t, "import * as RQ from 'react-query'\nRQ.useQuery(['a'])")

	var seen []string
	err := NewHookLocator(f, "react-query").Execute([]string{"useQuery"}, record(f, &seen))
	require.NoError(t, err)
	assert.Equal(t, []string{"RQ.useQuery"}, seen)
}

func TestVisitedCallsAreSkipped(t *testing.T) {
	t.Parallel()
	f := parse(t, "useQuery(['a'])\nuseIsFetching(['b'])")

	var first, second []string
	require.NoError(t, NewHookLocator(f, DefaultPackage).Execute([]string{"useQuery"}, record(f, &first)))
	require.NoError(t, NewHookLocator(f, DefaultPackage).Execute([]string{"useQuery", "useIsFetching"}, record(f, &second)))

	assert.Equal(t, []string{"useQuery"}, first)
	assert.Equal(t, []string{"useIsFetching"}, second)
}

func TestApplyQueuesReplacements(t *testing.T) {
	t.Parallel()
	f := parse(t, "useQuery(['a']); useQuery(['b'])")

	calls := f.Calls()
	n := apply(f, calls, func(call *syntax.Call) syntax.Node {
		if f.Text(call.Function()) == "useQuery" && call.Span.Start == 0 {
			return &syntax.CallNode{Callee: call.Callee}
		}
		return call
	})
	assert.Equal(t, 1, n)

	out, _ := f.Output()
	assert.Equal(t, "useQuery(); useQuery(['b'])", string(out))
}

func TestSelectorString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "RQ.useQuery", Selector{Namespace: "RQ", Name: "useQuery"}.String())
	assert.Equal(t, "useQ", Selector{Name: "useQ"}.String())
}
