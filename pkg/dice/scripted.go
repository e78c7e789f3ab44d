package dice

import "sync"

// ScriptedSource replays a fixed sequence of draws. Each value is the
// Intn result (zero-based); when the script runs out it returns 0.
// Values outside [0, n) are clamped.
type ScriptedSource struct {
	mu     sync.Mutex
	values []int
	calls  []int
}

// NewScriptedSource returns a source that yields values in order.
func NewScriptedSource(values ...int) *ScriptedSource {
	return &ScriptedSource{values: values}
}

// Faces returns a source whose Roll results show the given die faces.
// Only meaningful for rolls that start at one.
func Faces(faces ...int) *ScriptedSource {
	values := make([]int, len(faces))
	for i, f := range faces {
		values[i] = f - 1
	}
	return NewScriptedSource(values...)
}

func (s *ScriptedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, n)
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[0]
	s.values = s.values[1:]
	if v < 0 {
		v = 0
	}
	if v >= n {
		v = n - 1
	}
	return v
}

// Push appends more values to the script.
func (s *ScriptedSource) Push(values ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, values...)
}

// Calls returns the n argument of every Intn call so far.
func (s *ScriptedSource) Calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.calls))
	copy(out, s.calls)
	return out
}

// Remaining reports how many scripted values are unused.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
