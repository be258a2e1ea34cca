// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package flow

import "testing"

func indexOf(order []string, v string) int {
	for i, s := range order {
		if s == v {
			return i
		}
	}
	return -1
}

func TestScheduleLinearChain(t *testing.T) {
	s := NewScheduler[string]()
	a, b, c := s.Add("a"), s.Add("b"), s.Add("c")
	s.AddEdge(a, b)
	s.AddEdge(b, c)

	order := s.Schedule()
	if len(order) != 3 {
		t.Fatalf("len(order) = %d, want 3", len(order))
	}
	if indexOf(order, "a") > indexOf(order, "b") || indexOf(order, "b") > indexOf(order, "c") {
		t.Fatalf("Schedule() = %v, want a before b before c", order)
	}
}

func TestScheduleDiamond(t *testing.T) {
	s := NewScheduler[string]()
	a, b, c, d := s.Add("a"), s.Add("b"), s.Add("c"), s.Add("d")
	s.AddEdge(a, b)
	s.AddEdge(a, c)
	s.AddEdge(b, d)
	s.AddEdge(c, d)

	order := s.Schedule()
	if indexOf(order, "a") > indexOf(order, "b") || indexOf(order, "a") > indexOf(order, "c") {
		t.Fatalf("Schedule() = %v, want a before b and c", order)
	}
	if indexOf(order, "b") > indexOf(order, "d") || indexOf(order, "c") > indexOf(order, "d") {
		t.Fatalf("Schedule() = %v, want b and c before d", order)
	}
}

func TestScheduleSelfLoopDoesNotHang(t *testing.T) {
	s := NewScheduler[string]()
	a := s.Add("a")
	s.AddEdge(a, a)

	order := s.Schedule()
	if len(order) != 1 || order[0] != "a" {
		t.Fatalf("Schedule() = %v, want [a]", order)
	}
}

func TestScheduleFeedbackLoopMinimizesBackEdges(t *testing.T) {
	// a -> b -> c -> a is a 3-cycle: a rotation of it has exactly one back
	// edge, the minimum, while a reversed order has two. The scheduler must
	// terminate, return all three vertices, and leave only one back edge.
	s := NewScheduler[string]()
	a, b, c := s.Add("a"), s.Add("b"), s.Add("c")
	s.AddEdge(a, b)
	s.AddEdge(b, c)
	s.AddEdge(c, a)

	order := s.Schedule()
	if len(order) != 3 {
		t.Fatalf("len(order) = %d, want 3", len(order))
	}
	seen := map[string]bool{}
	for _, v := range order {
		seen[v] = true
	}
	for _, v := range []string{"a", "b", "c"} {
		if !seen[v] {
			t.Fatalf("Schedule() = %v missing %q", order, v)
		}
	}
	back := 0
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}} {
		if indexOf(order, e[0]) > indexOf(order, e[1]) {
			back++
		}
	}
	if back != 1 {
		t.Fatalf("Schedule() = %v has %d back edges, want 1", order, back)
	}
}

func TestScheduleEmptyGraph(t *testing.T) {
	s := NewScheduler[int]()
	if order := s.Schedule(); len(order) != 0 {
		t.Fatalf("Schedule() on empty scheduler = %v, want empty", order)
	}
}
