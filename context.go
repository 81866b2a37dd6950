package sweetest

import (
	"context"

	"github.com/ethereum-optimism/infra/op-sweetest/hooks"
	"github.com/ethereum-optimism/infra/op-sweetest/output"
	"github.com/ethereum-optimism/infra/op-sweetest/queue"
	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

// suiteContext is the state of one suite from the moment it is declared until
// its report has been filed.
type suiteContext struct {
	name  string
	depth int

	// failed only ever goes from false to true.
	failed bool

	// parent is nil for a root suite. It is only dereferenced while this
	// suite executes, which always happens inside the parent's execution.
	parent *suiteContext

	queue  *queue.Queue
	output *output.Accumulator
	hooks  *hooks.Registry

	// Set when execution starts.
	result *types.ResultNode
	ctx    context.Context
}

func newSuiteContext(name string, parent *suiteContext) *suiteContext {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &suiteContext{
		name:   name,
		depth:  depth,
		parent: parent,
		queue:  queue.New(),
		output: output.New(),
		hooks:  hooks.NewRegistry(),
	}
}

// lineage returns the suites from the root down to s.
func (s *suiteContext) lineage() []*suiteContext {
	var chain []*suiteContext
	for c := s; c != nil; c = c.parent {
		chain = append(chain, c)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// path returns the slash separated suite names from the root to s.
func (s *suiteContext) path() string {
	if s.parent == nil {
		return s.name
	}
	return s.parent.path() + "/" + s.name
}
