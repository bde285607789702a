package widget

// Stepper is an index into a fixed sequence of frames. The index always lies
// in [0, Len()-1].
type Stepper struct {
	n     int
	index int
	state State
}

// NewStepper builds a stepper over n frames. n < 1 is treated as 1.
func NewStepper(n int) *Stepper {
	if n < 1 {
		n = 1
	}
	return &Stepper{n: n}
}

func (s *Stepper) Index() int    { return s.index }
func (s *Stepper) Len() int      { return s.n }
func (s *Stepper) State() State  { return s.state }
func (s *Stepper) AtStart() bool { return s.index == 0 }
func (s *Stepper) AtEnd() bool   { return s.index == s.n-1 }

// Next advances one frame. Returns false at the last frame.
func (s *Stepper) Next() bool {
	if s.AtEnd() {
		return false
	}
	s.index++
	s.state = Updated
	return true
}

// Back goes one frame back. Returns false at the first frame.
func (s *Stepper) Back() bool {
	if s.AtStart() {
		return false
	}
	s.index--
	s.state = Updated
	return true
}

// Reset returns to the first frame.
func (s *Stepper) Reset() {
	s.index = 0
	s.state = Initial
}
