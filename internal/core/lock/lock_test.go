package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLocal_SerializesSameKey(t *testing.T) {
	l := NewLocal()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = Do(context.Background(), l, "room:1", func() error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxSeen)
	}
	if n := l.size(); n != 0 {
		t.Fatalf("expected idle keys to be reclaimed, %d left", n)
	}
}

func TestLocal_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocal()
	unlockA, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("lock on another key should not block: %v", err)
	}
	unlockB()
}

func TestLocal_ContextCancel(t *testing.T) {
	l := NewLocal()
	unlock, _ := l.Lock(context.Background(), "k")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	unlock()
	unlock() // 重复调用无副作用
	if n := l.size(); n != 0 {
		t.Fatalf("expected 0 keys, got %d", n)
	}
}

func TestDo_PropagatesError(t *testing.T) {
	want := errors.New("boom")
	if err := Do(context.Background(), NewLocal(), "x", func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("got %v", err)
	}
}

func TestDoAll_DedupsKeys(t *testing.T) {
	l := NewLocal()
	ran := false
	err := DoAll(context.Background(), l, []string{"room:b", "room:a", "room:b", ""}, func() error {
		ran = true
		if n := l.size(); n != 2 {
			t.Errorf("expected 2 held keys, got %d", n)
		}
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("DoAll: ran=%v err=%v", ran, err)
	}
	if n := l.size(); n != 0 {
		t.Fatalf("expected release, %d keys left", n)
	}
}

func TestDoScoped_RetriesWithFreshKeys(t *testing.T) {
	l := NewLocal()
	scopes := [][]string{{"room:r1"}, {"room:r2"}}
	calls := 0
	var heldAtWrite []string
	err := DoScoped(context.Background(), l, func() ([]string, error) {
		ks := scopes[calls]
		calls++
		return ks, nil
	}, func(held []string) error {
		if !Covers(held, []string{"room:r2"}) {
			return ErrScopeChanged
		}
		heldAtWrite = held
		return nil
	})
	if err != nil {
		t.Fatalf("DoScoped: %v", err)
	}
	if calls != 2 || len(heldAtWrite) != 1 || heldAtWrite[0] != "room:r2" {
		t.Fatalf("calls=%d held=%v", calls, heldAtWrite)
	}
}

func TestDoScoped_GivesUp(t *testing.T) {
	attempts := 0
	err := DoScoped(context.Background(), NewLocal(), func() ([]string, error) {
		attempts++
		return []string{"k"}, nil
	}, func([]string) error { return ErrScopeChanged })
	if !errors.Is(err, ErrScopeChanged) || attempts != maxScopeAttempts {
		t.Fatalf("attempts=%d err=%v", attempts, err)
	}
}

func TestCovers(t *testing.T) {
	held := []string{"room:a", "session:s"}
	if !Covers(held, []string{"room:a", ""}) {
		t.Fatal("held key reported missing")
	}
	if Covers(held, []string{"room:a", "room:b"}) {
		t.Fatal("missing key reported held")
	}
}
