package executor

import (
	"sync"
	"testing"
)

func TestSerialRunsExactlyOnce(t *testing.T) {
	q := NewSerial()
	var mu sync.Mutex
	count := 0
	done := make(chan struct{}, 10)

	for i := 0; i < 10; i++ {
		q.Async(func() {
			mu.Lock()
			count++
			mu.Unlock()
			done <- struct{}{}
		})
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Fatalf("count = %d, want 10", count)
	}
}

func TestInlineRunsSynchronously(t *testing.T) {
	ran := false
	Inline{}.Async(func() { ran = true })
	if !ran {
		t.Fatal("expected inline queue to run synchronously")
	}
}
