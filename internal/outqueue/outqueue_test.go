package outqueue

import "testing"

func TestPushPullRoundTrip(t *testing.T) {
	q := New(4)
	q.Push([]int16{1, 2, 3, 4})

	dst := make([]int16, 4)
	n := q.Pull(dst)
	if n != 4 {
		t.Fatalf("got %d, want 4", n)
	}
	for i, v := range []int16{1, 2, 3, 4} {
		if dst[i] != v {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], v)
		}
	}
}

func TestPullFromEmptyQueueReturnsZero(t *testing.T) {
	q := New(4)
	dst := make([]int16, 4)
	if n := q.Pull(dst); n != 0 {
		t.Fatalf("got %d, want 0", n)
	}
}

func TestPullPartialFillsWhatItCan(t *testing.T) {
	q := New(4)
	q.Push([]int16{1, 2})
	dst := make([]int16, 4)
	n := q.Pull(dst)
	if n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
}

func TestOverflowDropsOldestSamples(t *testing.T) {
	q := New(4)
	for i := 0; i < MaxFrames+5; i++ {
		q.Push([]int16{int16(i), int16(i), int16(i), int16(i)})
	}
	if q.Len() != MaxFrames*4 {
		t.Fatalf("queue len = %d, want %d", q.Len(), MaxFrames*4)
	}
	if q.Dropped() != 5*4 {
		t.Fatalf("dropped = %d, want %d", q.Dropped(), 5*4)
	}

	dst := make([]int16, 4)
	q.Pull(dst)
	// The oldest surviving frame is the 6th pushed (index 5), since the
	// first 5 were evicted.
	want := int16(5)
	if dst[0] != want {
		t.Errorf("dst[0] = %d, want %d", dst[0], want)
	}
}

func TestResetClearsQueueAndDropCounter(t *testing.T) {
	q := New(4)
	for i := 0; i < MaxFrames+2; i++ {
		q.Push([]int16{1, 2, 3, 4})
	}
	q.Reset()
	if q.Len() != 0 {
		t.Fatalf("len after reset = %d, want 0", q.Len())
	}
	if q.Dropped() != 0 {
		t.Fatalf("dropped after reset = %d, want 0", q.Dropped())
	}
}

func TestQueueIsSafeForConcurrentUse(t *testing.T) {
	q := New(4)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			q.Push([]int16{1, 2, 3, 4})
		}
		close(done)
	}()
	dst := make([]int16, 4)
	for i := 0; i < 1000; i++ {
		q.Pull(dst)
	}
	<-done
}
