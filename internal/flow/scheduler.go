// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package flow

// Scheduler orders an arbitrary directed graph of T values to minimize
// feedback arcs, using the Eades-Lin-Smyth heuristic (P. Eades, X. Lin,
// W. F. Smyth, "A Fast Effective Heuristic For The Feedback Arc Set
// Problem", Information Processing Letters, Vol. 47, 1993).
//
// A topological sort is always possible over a graph with no cycles; this
// module's evaluation order additionally has to cope with benign
// combinational loops that arise from processes and instance
// interdependencies without introducing nondeterminism. Rather than reject
// such graphs, Scheduler orders them so that as few edges as possible point
// backwards, since a schedule with zero backward edges converges in a
// single pass and one with a few can converge in a handful.
//
// Vertices needing relinking as their neighborhoods change are kept in
// circular doubly-linked lists, bucketed by delta = len(succs) - len(preds):
// vertices with no successors go straight to a sink list, vertices with no
// predecessors go straight to a source list, everything else waits in a
// delta-keyed bin. Each round drains all sinks and sources, then peels one
// vertex from the highest nonempty delta bin, which is the O(V+E) part that
// gives this heuristic its practical speed over an exact FAS solver.
type Scheduler[T any] struct {
	vertices []*vertex[T]
	sources  *vertex[T]
	sinks    *vertex[T]
	bins     map[int]*vertex[T]
}

type vertex[T any] struct {
	data  T
	empty bool // true for list sentinels, which carry no data

	prev, next *vertex[T]
	preds      map[*vertex[T]]bool
	succs      map[*vertex[T]]bool
}

func newSentinel[T any]() *vertex[T] {
	v := &vertex[T]{empty: true}
	v.prev, v.next = v, v
	return v
}

func newVertex[T any](data T) *vertex[T] {
	return &vertex[T]{
		data:  data,
		preds: make(map[*vertex[T]]bool),
		succs: make(map[*vertex[T]]bool),
	}
}

func (v *vertex[T]) isEmptyList() bool { return v.next == v }

func (v *vertex[T]) link(list *vertex[T]) {
	v.next = list
	v.prev = list.prev
	list.prev.next = v
	list.prev = v
}

func (v *vertex[T]) unlink() {
	v.prev.next = v.next
	v.next.prev = v.prev
	v.next, v.prev = nil, nil
}

func (v *vertex[T]) delta() int { return len(v.succs) - len(v.preds) }

// NewScheduler returns an empty scheduler.
func NewScheduler[T any]() *Scheduler[T] {
	return &Scheduler[T]{
		sources: newSentinel[T](),
		sinks:   newSentinel[T](),
		bins:    make(map[int]*vertex[T]),
	}
}

// Ref identifies a vertex added with Add, for use with AddEdge.
type Ref[T any] struct{ v *vertex[T] }

// Add registers one vertex carrying data, initially with no edges.
func (s *Scheduler[T]) Add(data T) Ref[T] {
	v := newVertex(data)
	s.vertices = append(s.vertices, v)
	return Ref[T]{v}
}

// AddEdge records a directed edge from -> to.
func (s *Scheduler[T]) AddEdge(from, to Ref[T]) {
	from.v.succs[to.v] = true
	to.v.preds[from.v] = true
}

func (s *Scheduler[T]) relink(v *vertex[T]) {
	switch {
	case len(v.succs) == 0:
		v.link(s.sinks)
	case len(v.preds) == 0:
		v.link(s.sources)
	default:
		d := v.delta()
		bin, ok := s.bins[d]
		if !ok {
			bin = newSentinel[T]()
			s.bins[d] = bin
		}
		v.link(bin)
	}
}

func (s *Scheduler[T]) remove(v *vertex[T]) *vertex[T] {
	v.unlink()
	for pred := range v.preds {
		if pred == v {
			continue
		}
		pred.unlink()
		delete(pred.succs, v)
		s.relink(pred)
	}
	for succ := range v.succs {
		if succ == v {
			continue
		}
		succ.unlink()
		delete(succ.preds, v)
		s.relink(succ)
	}
	v.preds = make(map[*vertex[T]]bool)
	v.succs = make(map[*vertex[T]]bool)
	return v
}

// Schedule consumes the graph and returns its vertices' data in an order
// that minimizes feedback edges. It must be called at most once.
func (s *Scheduler[T]) Schedule() []T {
	var s1 []*vertex[T]
	var s2r []*vertex[T]

	for _, v := range s.vertices {
		s.relink(v)
	}

	for {
		binsEmpty := true
		for !s.sinks.isEmptyList() {
			s2r = append(s2r, s.remove(s.sinks.next))
		}
		for !s.sources.isEmptyList() {
			s1 = append(s1, s.remove(s.sources.next))
		}
		if s.sinks.isEmptyList() && s.sources.isEmptyList() {
			best := minInt
			for d, bin := range s.bins {
				if !bin.isEmptyList() && d > best {
					best = d
				}
			}
			if best != minInt {
				binsEmpty = false
				s1 = append(s1, s.remove(s.bins[best].next))
			}
			if binsEmpty {
				break
			}
			continue
		}
	}

	out := make([]T, 0, len(s1)+len(s2r))
	for _, v := range s1 {
		out = append(out, v.data)
	}
	for i := len(s2r) - 1; i >= 0; i-- {
		out = append(out, s2r[i].data)
	}
	return out
}

const minInt = -int(^uint(0)>>1) - 1
