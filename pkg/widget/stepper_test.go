package widget

import (
	"testing"

	"pgregory.net/rapid"
)

func TestStepperWalksToEndAndStays(t *testing.T) {
	s := NewStepper(5)
	for i := 0; i < 4; i++ {
		if !s.Next() {
			t.Fatalf("Expected Next to move at index %d", s.Index())
		}
	}
	if s.Index() != 4 || !s.AtEnd() {
		t.Fatalf("Expected index 4 at end, got %d", s.Index())
	}
	if s.Next() {
		t.Error("Expected Next at last frame to be a no-op")
	}
	if s.Index() != 4 {
		t.Errorf("Expected index to stay 4, got %d", s.Index())
	}
}

func TestStepperWalksBackToStartAndStays(t *testing.T) {
	s := NewStepper(3)
	s.Next()
	s.Next()
	s.Back()
	s.Back()
	if s.Back() {
		t.Error("Expected Back at first frame to be a no-op")
	}
	if s.Index() != 0 || !s.AtStart() {
		t.Errorf("Expected index 0, got %d", s.Index())
	}
}

func TestStepperSingleFrame(t *testing.T) {
	s := NewStepper(0)
	if s.Len() != 1 {
		t.Fatalf("Expected 1 frame, got %d", s.Len())
	}
	if s.Next() || s.Back() {
		t.Error("Expected a single frame stepper to never move")
	}
}

func TestStepperBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "n")
		s := NewStepper(n)

		for i := 0; i < n-1; i++ {
			s.Next()
		}
		if s.Index() != n-1 {
			t.Fatalf("after %d nexts expected %d, got %d", n-1, n-1, s.Index())
		}
		s.Next()
		if s.Index() != n-1 {
			t.Fatalf("extra next moved to %d", s.Index())
		}
		for i := 0; i < n-1; i++ {
			s.Back()
		}
		if s.Index() != 0 {
			t.Fatalf("after %d backs expected 0, got %d", n-1, s.Index())
		}
		s.Back()
		if s.Index() != 0 {
			t.Fatalf("extra back moved to %d", s.Index())
		}
	})
}
