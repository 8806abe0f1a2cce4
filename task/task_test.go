// SPDX-License-Identifier: Unlicense OR MIT

package task

import (
	"reflect"
	"testing"
)

func TestQueueOrder(t *testing.T) {
	var q Queue
	var got []int
	for i := 0; i < 3; i++ {
		i := i
		q.Post(func() { got = append(got, i) })
	}
	if n := q.Len(); n != 3 {
		t.Fatalf("Len() = %d, want 3", n)
	}
	if n := q.RunPending(); n != 3 {
		t.Errorf("RunPending() = %d, want 3", n)
	}
	if want := []int{0, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("ran %v, want %v", got, want)
	}
}

func TestQueueCancel(t *testing.T) {
	var q Queue
	ran := false
	h := q.Post(func() { ran = true })
	if !h.Pending() {
		t.Fatal("new callback not pending")
	}
	h.Cancel()
	if h.Pending() {
		t.Error("cancelled callback still pending")
	}
	if n := q.RunPending(); n != 0 {
		t.Errorf("RunPending() = %d, want 0", n)
	}
	if ran {
		t.Error("cancelled callback ran")
	}
}

func TestQueueDefersNestedPosts(t *testing.T) {
	var q Queue
	var got []string
	q.Post(func() {
		got = append(got, "outer")
		q.Post(func() { got = append(got, "inner") })
	})
	q.RunPending()
	if want := []string{"outer"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("first run: %v, want %v", got, want)
	}
	if n := q.RunUntilIdle(); n != 1 {
		t.Errorf("RunUntilIdle() = %d, want 1", n)
	}
	if want := []string{"outer", "inner"}; !reflect.DeepEqual(got, want) {
		t.Errorf("second run: %v, want %v", got, want)
	}
}

func TestQueueClear(t *testing.T) {
	var q Queue
	h := q.Post(func() { t.Error("cleared callback ran") })
	q.Clear()
	if h.Pending() || q.Len() != 0 {
		t.Error("Clear left pending callbacks")
	}
	q.RunUntilIdle()
}

func TestFactoryInvalidate(t *testing.T) {
	var f Factory
	var q Queue
	calls := 0
	q.Post(f.Bind(func() { calls++ }))
	tok := f.Token()
	f.Invalidate()
	if tok.Valid() {
		t.Error("token valid after Invalidate")
	}
	q.Post(f.Bind(func() { calls++ }))
	q.RunPending()
	if calls != 1 {
		t.Errorf("%d bound callbacks ran, want 1", calls)
	}
	if (Token{}).Valid() {
		t.Error("zero Token is valid")
	}
}
