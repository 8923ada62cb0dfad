package transform

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/keyfold/internal/syntax"
	tt "github.com/gnolang/keyfold/internal/types"
)

const (
	RuleUnknownUsage = "unknown-usage"
	RuleManualReview = "manual-review"

	category = "migration"
)

// Stats counts what happened to the call sites of one pass.
type Stats struct {
	Rewritten int
	Skipped   int
	Failed    int
}

// Replacer migrates call sites one at a time and collects a diagnostic for
// every site it has to leave alone. A Replacer belongs to a single file
// pass.
type Replacer struct {
	cfg      Config
	scope    Scope
	filename string
	logger   *zap.Logger

	issues []tt.Issue
	stats  Stats
}

func NewReplacer(cfg Config, scope Scope, filename string, logger *zap.Logger) *Replacer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replacer{
		cfg:      cfg,
		scope:    scope,
		filename: filename,
		logger:   logger,
	}
}

// Replace returns the node that should stand in for call. Skipped and
// failed calls come back as call itself.
func (r *Replacer) Replace(call *syntax.Call) (out syntax.Node) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(call, fmt.Errorf("panic: %v", p))
			out = call
		}
	}()

	if CanSkip(call, r.cfg.KeyName) {
		r.stats.Skipped++
		return call
	}

	rebuilt, err := r.rewrite(call)
	if err != nil {
		r.fail(call, err)
		return call
	}

	r.stats.Rewritten++
	return rebuilt
}

func (r *Replacer) rewrite(call *syntax.Call) (*syntax.CallNode, error) {
	key, err := ExtractKey(call, r.scope, r.cfg.KeyName, r.filename)
	if err != nil {
		return nil, err
	}

	var second syntax.Expr
	if len(call.Args) > 1 {
		second = call.Args[1]
	}
	merged, err := MergeOptions(second, r.cfg.KeyName)
	if err != nil {
		return nil, fmt.Errorf("merge options: %w", err)
	}

	rebuilt, err := Rebuild(call, key, merged)
	if err != nil {
		return nil, fmt.Errorf("rebuild call: %w", err)
	}
	return rebuilt, nil
}

func (r *Replacer) fail(call *syntax.Call, err error) {
	r.stats.Failed++

	var unknown *UnknownUsageError
	if errors.As(err, &unknown) {
		r.report(call, RuleUnknownUsage, unknown.Error(),
			"the first argument must be an array literal or a variable initialised with one")
		return
	}

	r.logger.Debug("call site could not be migrated",
		zap.String("file", r.filename),
		zap.Int("line", call.Start.Line),
		zap.Error(err),
	)
	r.report(call, RuleManualReview, fmt.Sprintf(faultMessage, r.filename), "")
}

func (r *Replacer) report(call *syntax.Call, rule, message, note string) {
	r.logger.Warn(message,
		zap.String("rule", rule),
		zap.String("file", r.filename),
		zap.Int("line", call.Start.Line),
		zap.Int("column", call.Start.Column),
	)
	r.issues = append(r.issues, tt.Issue{
		Rule:     rule,
		Category: category,
		Filename: r.filename,
		Message:  message,
		Note:     note,
		Severity: tt.SeverityWarning,
		Start:    call.Start,
		End:      call.End,
	})
}

// Issues returns the diagnostics collected so far, in the order the call
// sites were visited.
func (r *Replacer) Issues() []tt.Issue { return r.issues }

func (r *Replacer) Stats() Stats { return r.stats }
