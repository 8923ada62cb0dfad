package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnolang/keyfold/internal/syntax"
	tt "github.com/gnolang/keyfold/internal/types"
)

const testFile = "src/todos.ts"

// migrate runs a Replacer over every top-level call in source.
func migrate(t *testing.T, source string, cfg Config, scope Scope) (string, []tt.Issue, Stats) {
	t.Helper()
	f := parse(t, source)
	if scope == nil {
		scope = f
	}
	r := NewReplacer(cfg, scope, testFile, nil)

	var outer *syntax.Call
	for _, c := range f.Calls() {
		if outer != nil && outer.Span.Contains(c.Span) {
			continue
		}
		outer = c
		if n := r.Replace(c); n != syntax.Node(c) {
			f.Replace(c, n)
		}
	}

	out, _ := f.Output()
	return string(out), r.Issues(), r.Stats()
}

func queryPass() Config {
	return DefaultPasses()[0]
}

func TestReplacerScenarios(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		source string
		cfg    Config
		want   string
		issues []string
		stats  Stats
	}{
		{
			name:   "array key with options",
			source: "useQuery(['todos', id], { enabled: true })",
			cfg:    queryPass(),
			want:   "useQuery({ queryKey: ['todos', id], enabled: true })",
			stats:  Stats{Rewritten: 1},
		},
		{
			name:   "client method",
			source: "queryClient.invalidateQueries(['todos'])",
			cfg:    queryPass(),
			want:   "queryClient.invalidateQueries({ queryKey: ['todos'] })",
			stats:  Stats{Rewritten: 1},
		},
		{
			name:   "already migrated mutation filters",
			source: "useIsMutating({ mutationKey: key, onSuccess: cb })",
			cfg:    DefaultPasses()[1],
			want:   "useIsMutating({ mutationKey: key, onSuccess: cb })",
			stats:  Stats{Skipped: 1},
		},
		{
			name:   "dynamic key",
			source: "useQuery(someDynamicExpr())",
			cfg:    queryPass(),
			want:   "useQuery(someDynamicExpr())",
			issues: []string{RuleUnknownUsage},
			stats:  Stats{Failed: 1},
		},
		{
			name:   "trailing argument",
			source: "const key = ['todos']\nuseQuery(key, opts, extraArg)",
			cfg:    queryPass(),
			want:   "const key = ['todos']\nuseQuery({ queryKey: key, ...opts }, extraArg)",
			stats:  Stats{Rewritten: 1},
		},
		{
			name:   "object holding only the key is reported",
			source: "useQuery({ queryKey: ['todos'] })",
			cfg:    queryPass(),
			want:   "useQuery({ queryKey: ['todos'] })",
			issues: []string{RuleUnknownUsage},
			stats:  Stats{Failed: 1},
		},
		{
			name:   "spread options need manual review",
			source: "useQuery(['todos'], ...rest)",
			cfg:    queryPass(),
			want:   "useQuery(['todos'], ...rest)",
			issues: []string{RuleManualReview},
			stats:  Stats{Failed: 1},
		},
		{
			name:   "mutation key",
			source: "useIsMutating(['save'], { exact: true })",
			cfg:    DefaultPasses()[1],
			want:   "useIsMutating({ mutationKey: ['save'], exact: true })",
			stats:  Stats{Rewritten: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, issues, stats := migrate(t, tc.source, tc.cfg, nil)
			assert.Equal(t, tc.want, out)
			assert.Equal(t, tc.stats, stats)

			var rules []string
			for _, issue := range issues {
				rules = append(rules, issue.Rule)
				assert.Equal(t, testFile, issue.Filename)
				assert.Equal(t, tt.SeverityWarning, issue.Severity)
			}
			assert.Equal(t, tc.issues, rules)
		})
	}
}

func TestReplacerFailureContainment(t *testing.T) {
	t.Parallel()
	source := "useQuery(['a']);\nuseQuery(getKey());\nuseQuery(keys.b, { enabled });\nuseQuery(['c'], opts);\n"

	out, issues, stats := migrate(t, source, queryPass(), nil)

	want := "useQuery({ queryKey: ['a'] });\nuseQuery(getKey());\nuseQuery(keys.b, { enabled });\nuseQuery({ queryKey: ['c'], ...opts });\n"
	assert.Equal(t, want, out)
	assert.Equal(t, Stats{Rewritten: 2, Failed: 2}, stats)

	require.Len(t, issues, 2)
	assert.Equal(t, 2, issues[0].Start.Line)
	assert.Equal(t, 3, issues[1].Start.Line)
	assert.Contains(t, issues[0].Message, `"src/todos.ts" at line 2:1`)
	assert.NotEmpty(t, issues[0].Note)
}

func TestReplacerIdempotence(t *testing.T) {
	t.Parallel()
	sources := []string{
		"useQuery(['todos', id], { enabled: true })",
		"const key = ['todos']\nuseQuery(key, { staleTime: 10 }, extraArg)",
		"useQuery(['todos'], { queryKey: ['x'], select, ...rest })",
	}

	for _, source := range sources {
		first, _, _ := migrate(t, source, queryPass(), nil)
		second, issues, stats := migrate(t, first, queryPass(), nil)

		assert.Equal(t, first, second)
		assert.Empty(t, issues)
		assert.Equal(t, 0, stats.Rewritten)
		assert.Equal(t, 1, stats.Skipped)
	}
}

func TestReplacerPropertyPreservation(t *testing.T) {
	t.Parallel()
	source := "useQuery(['a'], { queryKey: ['b'], enabled: true, 'queryKey': 1, select, ...rest, onError() {} })"

	out, issues, _ := migrate(t, source, queryPass(), nil)

	assert.Empty(t, issues)
	assert.Equal(t, "useQuery({ queryKey: ['a'], enabled: true, select, ...rest, onError() {} })", out)
}

type panicScope struct{}

func (panicScope) BoundToArray(*syntax.Call, string) bool {
	panic("scope lookup failed")
}

func TestReplacerRecoversFromFaults(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.DebugLevel)
	f := parse(t, "useQuery(key)")
	call := lastCall(t, f)

	r := NewReplacer(queryPass(), panicScope{}, testFile, zap.New(core))
	out := r.Replace(call)

	assert.Same(t, call, out)
	require.Len(t, r.Issues(), 1)
	issue := r.Issues()[0]
	assert.Equal(t, RuleManualReview, issue.Rule)
	assert.Equal(t,
		`An unknown error occurred while processing the "src/todos.ts" file. Please review this file, because the codemod couldn't be applied.`,
		issue.Message,
	)
	assert.NotContains(t, issue.Message, "scope lookup failed")
	assert.Equal(t, Stats{Failed: 1}, r.Stats())

	debug := logs.FilterMessage("call site could not be migrated").All()
	require.Len(t, debug, 1)
	assert.Contains(t, debug[0].ContextMap()["error"], "scope lookup failed")
}

func TestReplacerLogsWarnings(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.WarnLevel)
	f := parse(t, "useQuery(someDynamicExpr())")

	r := NewReplacer(queryPass(), f, testFile, zap.New(core))
	r.Replace(lastCall(t, f))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, RuleUnknownUsage, entries[0].ContextMap()["rule"])
	assert.Equal(t, testFile, entries[0].ContextMap()["file"])
}
