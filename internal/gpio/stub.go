package gpio

// StubWriter is an in-memory RegisterWriter for tests and for running on
// hosts without /dev/mem. It records every Set/Clear call as well as the
// resulting register value, so tests can assert on both the final state and
// the sequence of writes.
type StubWriter struct {
	Register uint32
	Calls    []StubCall
}

// StubCall records one Set or Clear invocation.
type StubCall struct {
	Op   string // "set" or "clear"
	Mask uint32
}

// NewStubWriter returns an empty stub writer.
func NewStubWriter() *StubWriter {
	return &StubWriter{}
}

func (s *StubWriter) Set(mask uint32) {
	s.Register |= mask
	s.Calls = append(s.Calls, StubCall{Op: "set", Mask: mask})
}

func (s *StubWriter) Clear(mask uint32) {
	s.Register &^= mask
	s.Calls = append(s.Calls, StubCall{Op: "clear", Mask: mask})
}
