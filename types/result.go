package types

import (
	"fmt"
	"time"
)

// NodeType defines the type of node in the result tree
type NodeType string

const (
	NodeTypeSuite NodeType = "suite"
	NodeTypeCase  NodeType = "case"
)

// ResultNode is the structured counterpart of a suite report: one node per
// executed suite or case, children kept in declaration order.
type ResultNode struct {
	Name     string        `yaml:"name"`
	Type     NodeType      `yaml:"type"`
	Depth    int           `yaml:"depth"`
	Status   Status        `yaml:"status"`
	Message  string        `yaml:"message,omitempty"`
	Duration time.Duration `yaml:"duration"`

	Children []*ResultNode `yaml:"children,omitempty"`
	Parent   *ResultNode   `yaml:"-"`
}

// Stats contains aggregated case counts for a node
type Stats struct {
	Total  int    `yaml:"total"`
	Passed int    `yaml:"passed"`
	Failed int    `yaml:"failed"`
	Status Status `yaml:"status"`
}

// NewSuiteNode creates a suite node and links it under parent, if any.
func NewSuiteNode(name string, depth int, parent *ResultNode) *ResultNode {
	n := &ResultNode{
		Name:   name,
		Type:   NodeTypeSuite,
		Depth:  depth,
		Status: StatusPass,
		Parent: parent,
	}
	if parent != nil {
		parent.Children = append(parent.Children, n)
	}
	return n
}

// AddCase appends a case result under a suite node.
func (n *ResultNode) AddCase(name string, status Status, message string, duration time.Duration) *ResultNode {
	c := &ResultNode{
		Name:     name,
		Type:     NodeTypeCase,
		Depth:    n.Depth + 1,
		Status:   status,
		Message:  message,
		Duration: duration,
		Parent:   n,
	}
	n.Children = append(n.Children, c)
	return c
}

// Stats counts the cases in the subtree rooted at n.
func (n *ResultNode) Stats() Stats {
	stats := Stats{}
	if n.Type == NodeTypeCase {
		stats.Total = 1
		if n.Status == StatusFail {
			stats.Failed = 1
		} else {
			stats.Passed = 1
		}
	}
	for _, child := range n.Children {
		childStats := child.Stats()
		stats.Total += childStats.Total
		stats.Passed += childStats.Passed
		stats.Failed += childStats.Failed
	}
	stats.Status = StatusFromFailed(stats.Failed > 0)
	return stats
}

// Path returns the slash separated names from the root to n.
func (n *ResultNode) Path() string {
	if n.Parent == nil {
		return n.Name
	}
	return n.Parent.Path() + "/" + n.Name
}

// Walk visits n and its descendants depth-first in declaration order. The
// traversal of a subtree stops when visit returns false.
func (n *ResultNode) Walk(visit func(*ResultNode) bool) {
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// FailedCases returns the failing case nodes under n in execution order.
func (n *ResultNode) FailedCases() []*ResultNode {
	var failed []*ResultNode
	n.Walk(func(node *ResultNode) bool {
		if node.Type == NodeTypeCase && node.Status == StatusFail {
			failed = append(failed, node)
		}
		return true
	})
	return failed
}

// String renders a one-line summary, e.g. "math: 3 cases, 2 passed, 1 failed".
func (n *ResultNode) String() string {
	stats := n.Stats()
	noun := "cases"
	if stats.Total == 1 {
		noun = "case"
	}
	return fmt.Sprintf("%s: %d %s, %d passed, %d failed", n.Name, stats.Total, noun, stats.Passed, stats.Failed)
}
