package rng

import "testing"

func TestNextIsDeterministic(t *testing.T) {
	a := New(12345)
	b := New(12345)

	for i := 0; i < 1000; i++ {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("sequence diverged at draw %d: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d out of [0,1): %v", i, va)
		}
	}
}

func TestNextDifferentSeeds(t *testing.T) {
	a := New(1)
	b := New(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			same = false
		}
	}
	if same {
		t.Fatal("distinct seeds produced identical sequences")
	}
}

func TestRangeBounds(t *testing.T) {
	s := New(42)
	for i := 0; i < 10000; i++ {
		v := s.Range(-5, 5)
		if v < -5 || v >= 5 {
			t.Fatalf("Range out of bounds: %v", v)
		}
	}
}

func TestRangeIntInclusive(t *testing.T) {
	s := New(7)
	seenLo, seenHi := false, false
	for i := 0; i < 20000; i++ {
		v := s.RangeInt(3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("RangeInt out of bounds: %v", v)
		}
		if v == 3 {
			seenLo = true
		}
		if v == 5 {
			seenHi = true
		}
	}
	if !seenLo || !seenHi {
		t.Fatal("RangeInt did not cover both ends of an inclusive range")
	}
}

func TestRangeIntDegenerate(t *testing.T) {
	s := New(1)
	if got := s.RangeInt(4, 4); got != 4 {
		t.Fatalf("RangeInt(4,4) = %d, want 4", got)
	}
	if got := s.RangeInt(9, 2); got != 9 {
		t.Fatalf("RangeInt with hi<lo should fall back to lo, got %d", got)
	}
}

func TestChanceExtremes(t *testing.T) {
	s := New(99)
	if s.Chance(0) {
		t.Fatal("Chance(0) should never fire")
	}
	if !s.Chance(1) {
		t.Fatal("Chance(1) should always fire")
	}
}
