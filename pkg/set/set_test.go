package set_test

import (
	"slices"
	"testing"

	"github.com/stateforward/go-fsm/pkg/set"
)

func TestSet(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		s := set.New("a", "b", "c", "a")
		if s.Size() != 3 {
			t.Errorf("Expected size 3, got %d", s.Size())
		}
		if !s.ContainsAll("a", "b", "c") {
			t.Error("Expected set to contain 'a', 'b' and 'c'")
		}
	})

	t.Run("Order", func(t *testing.T) {
		s := set.New("c", "a")
		s.Add("b", "c")
		if !slices.Equal(s.Slice(), []string{"c", "a", "b"}) {
			t.Errorf("Expected insertion order, got %v", s.Slice())
		}
	})

	t.Run("Remove", func(t *testing.T) {
		s := set.New("a", "b", "c")
		s.Remove("b")
		s.Remove("missing")
		if s.Contains("b") {
			t.Error("Expected set to not contain 'b'")
		}
		if !slices.Equal(s.Slice(), []string{"a", "c"}) {
			t.Errorf("Expected [a c], got %v", s.Slice())
		}
		s.Add("b")
		if !slices.Equal(s.Slice(), []string{"a", "c", "b"}) {
			t.Errorf("Expected [a c b], got %v", s.Slice())
		}
	})

	t.Run("Zero", func(t *testing.T) {
		var s set.Set[int]
		if s.Contains(1) {
			t.Error("Expected empty set to not contain 1")
		}
		s.Add(1)
		if !s.Contains(1) || s.Size() != 1 {
			t.Error("Expected set to contain 1")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		s := set.New(1, 2, 3)
		s.Clear()
		if s.Size() != 0 || s.Contains(1) {
			t.Errorf("Expected empty set, got %v", s.Slice())
		}
	})

	t.Run("Items", func(t *testing.T) {
		s := set.New(3, 1, 2)
		items := slices.Collect(s.Items())
		if !slices.Equal(items, []int{3, 1, 2}) {
			t.Errorf("Expected [3 1 2], got %v", items)
		}
		for item := range s.Items() {
			if item != 3 {
				t.Errorf("Expected first item 3, got %d", item)
			}
			break
		}
	})
}
