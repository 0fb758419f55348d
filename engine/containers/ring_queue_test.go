package containers

import (
	"errors"
	"testing"
)

func TestRingQueueWrapsAround(t *testing.T) {
	rq := NewRingQueue[int](3)
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("Dequeue() on empty queue error = %v, want ErrQueueEmpty", err)
	}

	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d) failed: %v", i, err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue() on full queue error = %v, want ErrQueueFull", err)
	}

	// free two slots and refill so the write index wraps
	for _, want := range []int{1, 2} {
		if got, err := rq.Dequeue(); err != nil || got != want {
			t.Fatalf("Dequeue() = %d, %v, want %d", got, err, want)
		}
	}
	for _, v := range []int{4, 5} {
		if err := rq.Enqueue(v); err != nil {
			t.Fatalf("Enqueue(%d) failed: %v", v, err)
		}
	}

	if front, err := rq.Peek(); err != nil || front != 3 {
		t.Errorf("Peek() = %d, %v, want 3", front, err)
	}
	var got []int
	for !rq.IsEmpty() {
		v, _ := rq.Dequeue()
		got = append(got, v)
	}
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("drained %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drained %v, want %v", got, want)
			break
		}
	}
}
