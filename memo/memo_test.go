package memo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	apperrors "github.com/kbukum/batchkit/errors"
)

func TestDo_ComputesOnceThenHits(t *testing.T) {
	c := New(t.TempDir())
	calls := 0
	square := func(x int) (int, error) {
		calls++
		return x * x, nil
	}
	f := Wrap(c, "square", square)

	for range 3 {
		v, err := f(7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 49 {
			t.Fatalf("expected 49, got %d", v)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 computation, got %d", calls)
	}
	if hits, misses := c.Stats(); hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits 1 miss, got %d/%d", hits, misses)
	}

	if _, err := f(8); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("different args must miss, calls=%d", calls)
	}
}

func TestDo_PersistsAcrossCaches(t *testing.T) {
	dir := t.TempDir()
	type result struct {
		Sum   int
		Names []string
	}
	compute := func() (result, error) { return result{Sum: 3, Names: []string{"a", "b"}}, nil }

	if _, err := Do(New(dir), "sum", []int{1, 2}, compute); err != nil {
		t.Fatal(err)
	}
	got, err := Do(New(dir), "sum", []int{1, 2}, func() (result, error) {
		t.Fatal("second cache should hit disk")
		return result{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Sum != 3 || len(got.Names) != 2 {
		t.Errorf("unexpected value %+v", got)
	}
}

func TestDo_EntryLayout(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	key, err := c.Key("fn", map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatal(err)
	}
	again, _ := c.Key("fn", map[string]int{"a": 1, "b": 2})
	if key != again {
		t.Error("map argument order must not change the key")
	}
	if len(key) != 64+len("_fn") || key[64:] != "_fn" {
		t.Errorf("unexpected key %q", key)
	}
	if other, _ := c.Key("other", map[string]int{"a": 1, "b": 2}); other == key {
		t.Error("name must be part of the key")
	}

	if _, err := Do(c, "fn", map[string]int{"a": 1, "b": 2}, func() (int, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, key)); err != nil {
		t.Errorf("expected entry file: %v", err)
	}
}

func TestDo_CorruptEntryRecomputed(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	key, _ := c.Key("fn", 1)
	if err := os.WriteFile(filepath.Join(dir, key), []byte("not gob"), 0o600); err != nil {
		t.Fatal(err)
	}
	v, err := Do(c, "fn", 1, func() (string, error) { return "fresh", nil })
	if err != nil || v != "fresh" {
		t.Fatalf("expected recomputed value, got %q %v", v, err)
	}
	v, err = Do(c, "fn", 1, func() (string, error) { return "again", nil })
	if err != nil || v != "fresh" {
		t.Fatalf("expected rewritten entry, got %q %v", v, err)
	}
}

func TestDo_ErrorsNotCached(t *testing.T) {
	c := New(t.TempDir())
	boom := errors.New("boom")
	if _, err := Do(c, "fn", 1, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := Do(c, "fn", 1, func() (int, error) { return 5, nil })
	if err != nil || v != 5 {
		t.Fatalf("expected recomputation after error, got %d %v", v, err)
	}
}

func TestKey_Unencodable(t *testing.T) {
	c := New(t.TempDir())
	_, err := Do(c, "fn", make(chan int), func() (int, error) { return 1, nil })
	if !apperrors.Is(err, apperrors.ErrCodeCache) {
		t.Fatalf("expected CACHE_ERROR, got %v", err)
	}
}

func TestTransform(t *testing.T) {
	c := New(t.TempDir())
	var mu sync.Mutex
	calls := 0
	sum := Transform(c, "sum", func(_ context.Context, items []int) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		total := 0
		for _, v := range items {
			total += v
		}
		return total, nil
	})

	for range 2 {
		v, err := sum(context.Background(), []int{1, 2, 3})
		if err != nil || v != 6 {
			t.Fatalf("expected 6, got %d %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
