package lock

import (
	"sync"
	"testing"
	"time"
)

func TestManager_LockBlocksSecondAcquirer(t *testing.T) {
	m := NewManager()
	g := m.Lock("/a")

	acquired := make(chan struct{})
	go func() {
		g2 := m.Lock("/a")
		close(acquired)
		g2.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock should have blocked while first guard is held")
	case <-time.After(20 * time.Millisecond):
	}

	g.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock never acquired after release")
	}
}

func TestGuard_ReleaseIsIdempotent(t *testing.T) {
	m := NewManager()
	g := m.Lock("/a")
	g.Release()
	g.Release() // must not panic or double-unlock

	done := make(chan struct{})
	go func() {
		m.Lock("/a").Release()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("path never became lockable again")
	}
}

func TestManager_LockManyDedupsAndSortsPaths(t *testing.T) {
	m := NewManager()
	guards := m.LockMany([]string{"/b", "/a", "/b"})
	if len(guards) != 2 {
		t.Fatalf("got %d guards, want 2 (duplicate path should be deduped)", len(guards))
	}
	ReleaseAll(guards)
}

func TestManager_LockManyAvoidsCrossOrderDeadlock(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	wg.Add(2)

	run := func(paths []string) {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			guards := m.LockMany(paths)
			ReleaseAll(guards)
		}
	}

	go run([]string{"/a", "/b"})
	go run([]string{"/b", "/a"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlocked acquiring the same path set in opposite orders")
	}
}
