package tiles

import "testing"

func TestSet_Operations(t *testing.T) {
	a := NewSet(Coord{0, 0}, Coord{1, 0}, Coord{2, 0})
	b := NewSet(Coord{1, 0}, Coord{5, 5})

	u := a.Clone()
	u.Union(b)
	if u.Len() != 4 {
		t.Errorf("Union Len() = %d, want 4", u.Len())
	}

	i := a.Clone()
	i.Intersect(b)
	if !i.Equal(NewSet(Coord{1, 0})) {
		t.Errorf("Intersect = %v", i.Sorted())
	}

	d := a.Clone()
	d.Difference(b)
	if !d.Equal(NewSet(Coord{0, 0}, Coord{2, 0})) {
		t.Errorf("Difference = %v", d.Sorted())
	}

	if !a.Overlaps(b) {
		t.Error("Overlaps() = false, want true")
	}
	if d.Overlaps(b) {
		t.Error("Overlaps() after Difference = true, want false")
	}
}

func TestSet_Sorted(t *testing.T) {
	s := NewSet(Coord{1, 1}, Coord{0, 1}, Coord{3, 0})
	got := s.Sorted()
	want := []Coord{{3, 0}, {0, 1}, {1, 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted() = %v, want %v", got, want)
		}
	}
}

func TestSet_NilIsReadable(t *testing.T) {
	var s Set
	if s.Has(Coord{0, 0}) || s.Len() != 0 {
		t.Error("nil set should be empty")
	}
	if c := s.Clone(); c == nil {
		t.Error("Clone of nil set returned nil")
	}
}
