package studio

import (
	"context"
	"sync"

	"adcanvas/internal/canvas/graph"
)

// Op names the user intent a task serves.
type Op string

const (
	OpGenerate Op = "generate"
	OpRemix    Op = "remix"
	OpCombine  Op = "combine"
	OpCaption  Op = "caption"
	OpTemplate Op = "template"
)

// Task is the handle of one in-flight generation that fills one node.
type Task struct {
	ID     string
	NodeID string
	Op     Op

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func newTask(parent context.Context, id, nodeID string, op Op) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{ID: id, NodeID: nodeID, Op: op, ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Done is closed once the node has settled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err is the outcome; nil while running and on success.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel aborts the task's network calls.
func (t *Task) Cancel() { t.cancel() }

func (t *Task) finish(err error) {
	t.err = err
	t.cancel()
	close(t.done)
}

// TaskSet indexes running tasks by node so that removing a node cancels
// the work that would fill it.
type TaskSet struct {
	mu     sync.Mutex
	byNode map[string][]*Task
}

func NewTaskSet() *TaskSet { return &TaskSet{byNode: make(map[string][]*Task)} }

func (s *TaskSet) add(t *Task) {
	s.mu.Lock()
	s.byNode[t.NodeID] = append(s.byNode[t.NodeID], t)
	s.mu.Unlock()
}

func (s *TaskSet) remove(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byNode[t.NodeID]
	for i, x := range list {
		if x == t {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.byNode, t.NodeID)
		return
	}
	s.byNode[t.NodeID] = list
}

// For returns the running tasks of a node.
func (s *TaskSet) For(nodeID string) []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Task(nil), s.byNode[nodeID]...)
}

// Len is the number of running tasks.
func (s *TaskSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.byNode {
		n += len(l)
	}
	return n
}

func (s *TaskSet) CancelNodes(ids ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		for _, t := range s.byNode[id] {
			t.cancel()
			n++
		}
	}
	return n
}

func (s *TaskSet) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byNode {
		for _, t := range l {
			t.cancel()
		}
	}
}

// Track cancels tasks whose nodes leave st. The observer only touches the
// task set, so it is safe to run under the store lock.
func (s *TaskSet) Track(st *graph.Store) (cancel func()) {
	return st.Observe(func(ev graph.Event) {
		switch ev.Type {
		case graph.EventNodesRemoved:
			s.CancelNodes(ev.NodeIDs...)
		case graph.EventRestored:
			s.CancelAll()
		}
	})
}
