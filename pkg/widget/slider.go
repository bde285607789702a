// Package widget holds the local state of interactive elements embedded in a
// chapter: bounded sliders, step sequences, single-choice quizzes, toggles
// and selectors. Instances are owned by an Arena slot and never shared.
package widget

import (
	"math"

	"github.com/samber/lo"
)

// State is the lifecycle phase of a continuous or step widget.
type State int

const (
	Initial State = iota
	Updated
)

func (s State) String() string {
	if s == Updated {
		return "updated"
	}
	return "initial"
}

// Slider is a bounded numeric parameter. The stored value always lies in
// [Min, Max].
type Slider struct {
	min, max, step float64
	initial        float64
	value          float64
	state          State
}

// NewSlider builds a slider. Swapped bounds are reordered, a non-positive
// step becomes 1 and the initial value is clamped.
func NewSlider(min, max, step, initial float64) *Slider {
	if min > max {
		min, max = max, min
	}
	if step <= 0 {
		step = 1
	}
	initial = lo.Clamp(initial, min, max)
	return &Slider{min: min, max: max, step: step, initial: initial, value: initial}
}

func (s *Slider) Min() float64   { return s.min }
func (s *Slider) Max() float64   { return s.max }
func (s *Slider) Step() float64  { return s.step }
func (s *Slider) Value() float64 { return s.value }
func (s *Slider) State() State   { return s.state }

// Int is Value rounded to the nearest integer, for integer-stepped sliders.
func (s *Slider) Int() int { return int(math.Round(s.value)) }

// Set stores clamp(v, min, max). NaN is ignored.
func (s *Slider) Set(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.value = lo.Clamp(v, s.min, s.max)
	s.state = Updated
}

// Inc moves one step up, snapped to the step grid.
func (s *Slider) Inc() { s.Set(s.snap(s.value + s.step)) }

// Dec moves one step down, snapped to the step grid.
func (s *Slider) Dec() { s.Set(s.snap(s.value - s.step)) }

// Reset restores the initial value.
func (s *Slider) Reset() {
	s.value = s.initial
	s.state = Initial
}

// Fraction is the position of the value within the range, in [0, 1].
func (s *Slider) Fraction() float64 {
	if s.max == s.min {
		return 0
	}
	return (s.value - s.min) / (s.max - s.min)
}

// snap rounds to the nearest grid point min + k*step and trims float noise so
// repeated increments of 0.1 display as 0.3 rather than 0.30000000000000004.
func (s *Slider) snap(v float64) float64 {
	k := math.Round((v - s.min) / s.step)
	return math.Round((s.min+k*s.step)*1e9) / 1e9
}
