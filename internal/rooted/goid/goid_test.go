package goid

import (
	"sync"
	"testing"
)

// TestParse_ValidInput tests ID parsing with well-formed stack headers.
func TestParse_ValidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{
			name:  "single_digit",
			input: "goroutine 1 [running]:\n",
			want:  1,
		},
		{
			name:  "double_digit",
			input: "goroutine 42 [running]:\n",
			want:  42,
		},
		{
			name:  "large_number",
			input: "goroutine 999999 [running]:\n",
			want:  999999,
		},
		{
			name:  "with_stack_trace",
			input: "goroutine 123 [running]:\ngithub.com/...\n",
			want:  123,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parse([]byte(tt.input)); got != tt.want {
				t.Errorf("parse() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestParse_InvalidInput tests ID parsing with malformed headers.
func TestParse_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "too_short", input: "goroutine"},
		{name: "wrong_prefix", input: "thread 123 [running]:\n"},
		{name: "no_number", input: "goroutine  [running]:\n"},
		{name: "invalid_number", input: "goroutine abc [running]:\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parse([]byte(tt.input)); got != 0 {
				t.Errorf("parse() = %d, want 0 for invalid input", got)
			}
		})
	}
}

// TestCurrent verifies extraction is stable within a goroutine and distinct
// across goroutines.
func TestCurrent(t *testing.T) {
	id1 := Current()
	if id1 == 0 {
		t.Fatal("Current() returned 0 - parsing failed")
	}
	if id2 := Current(); id2 != id1 {
		t.Errorf("Current() inconsistent: got %d then %d", id1, id2)
	}

	var other int64
	done := make(chan struct{})
	go func() {
		other = Current()
		close(done)
	}()
	<-done

	if other == 0 {
		t.Fatal("Current() returned 0 in spawned goroutine")
	}
	if other == id1 {
		t.Errorf("Current() returned same ID %d for two goroutines", id1)
	}
}

// TestCurrent_Concurrent verifies all concurrently extracted IDs are distinct.
func TestCurrent_Concurrent(t *testing.T) {
	const goroutines = 16

	ids := make([]int64, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids[g] = Current()
		}(g)
	}
	wg.Wait()

	seen := make(map[int64]bool, goroutines)
	for _, id := range ids {
		if id == 0 {
			t.Fatal("Current() returned 0")
		}
		if seen[id] {
			t.Fatalf("duplicate goroutine ID %d", id)
		}
		seen[id] = true
	}
}

// BenchmarkCurrent measures the cost of the stack-parsing path, which bounds
// the per-operation overhead of enabling affinity checks.
func BenchmarkCurrent(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Current()
	}
}
