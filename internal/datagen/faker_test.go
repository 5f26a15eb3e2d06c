//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"testing"
	"time"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker()
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFakerWithSeed(seed)
	f2 := NewFakerWithSeed(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.Int(0, 1000)
		v2 := f2.Int(0, 1000)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %d != %d", v1, v2)
		}
	}
}

func TestFakerID(t *testing.T) {
	f := NewFaker()
	id := f.ID()
	if len(id) != idLength {
		t.Errorf("ID length = %d, want %d", len(id), idLength)
	}
	if id == f.ID() {
		t.Error("consecutive IDs should differ")
	}
}

func TestFakerStars(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		s := f.Stars()
		if s < 1 || s > 5 {
			t.Fatalf("Stars() = %v, out of range", s)
		}
		if s*2 != float64(int(s*2)) {
			t.Fatalf("Stars() = %v, not a half step", s)
		}
	}
}

func TestFakerDateRange(t *testing.T) {
	f := NewFaker()
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		d := f.DateRange(start, end)
		if d.Before(start) || d.After(end) {
			t.Errorf("DateRange() = %v, out of range", d)
		}
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c"}

	for i := 0; i < 10; i++ {
		result := Choose(f, items)
		found := false
		for _, item := range items {
			if result == item {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Choose returned item not in list: %s", result)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	f := NewFaker()
	var items []string
	result := Choose(f, items)
	if result != "" {
		t.Errorf("Choose on empty slice should return zero value, got %s", result)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFaker()
	items := []string{"rare", "common"}
	weights := []int{1, 99}

	counts := make(map[string]int)
	for i := 0; i < 1000; i++ {
		counts[ChooseWeighted(f, items, weights)]++
	}

	if counts["common"] < counts["rare"] {
		t.Errorf("Weighted selection not working: common=%d, rare=%d",
			counts["common"], counts["rare"])
	}
}

func TestSample(t *testing.T) {
	f := NewFaker()
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{3, 3},
		{5, 5},
		{9, 5},
	}

	for _, tt := range tests {
		got := Sample(f, items, tt.n)
		if len(got) != tt.want {
			t.Errorf("Sample(%d) returned %d items, want %d", tt.n, len(got), tt.want)
		}
		seen := map[int]bool{}
		for _, v := range got {
			if seen[v] {
				t.Errorf("Sample(%d) returned duplicate %d", tt.n, v)
			}
			seen[v] = true
		}
	}

	if len(items) != 5 || items[0] != 1 || items[4] != 5 {
		t.Errorf("Sample modified its input: %v", items)
	}
}
