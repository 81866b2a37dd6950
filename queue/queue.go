// Package queue holds the deferred work declared by a suite body.
package queue

// ItemKind tags a queued item.
type ItemKind string

const (
	KindSuite ItemKind = "suite"
	KindTest  ItemKind = "test"
)

// Item is one unit of deferred work: a nested suite or a test case.
type Item struct {
	Kind ItemKind
	Name string
	Fn   func()
}

// Queue is a FIFO of items in declaration order. It is filled while a suite
// body runs and drained once by the suite that owns it.
type Queue struct {
	items []Item
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// EnqueueTest appends a test case.
func (q *Queue) EnqueueTest(name string, fn func()) {
	q.items = append(q.items, Item{Kind: KindTest, Name: name, Fn: fn})
}

// EnqueueSuite appends a nested suite.
func (q *Queue) EnqueueSuite(name string, fn func()) {
	q.items = append(q.items, Item{Kind: KindSuite, Name: name, Fn: fn})
}

// Len returns the number of items waiting to be drained.
func (q *Queue) Len() int {
	return len(q.items)
}

// Drain calls visit once per item in insertion order and empties the queue.
// Items enqueued while draining are not visited.
func (q *Queue) Drain(visit func(Item)) {
	items := q.items
	q.items = nil
	for _, item := range items {
		visit(item)
	}
}
