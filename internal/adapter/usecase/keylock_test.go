package usecase

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerialisesPerKey(t *testing.T) {
	k := newKeyedMutex()
	a, b := new(int), new(int)
	counters := map[string]*int{"a": a, "b": b}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		key := "a"
		if i%2 == 1 {
			key = "b"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()
			*counters[key]++
		}()
	}
	wg.Wait()

	if *a != 50 || *b != 50 {
		t.Fatalf("unexpected counters: a=%d b=%d", *a, *b)
	}
	if len(k.locks) != 0 {
		t.Fatalf("expected lock table to be empty, got %d entries", len(k.locks))
	}
}
