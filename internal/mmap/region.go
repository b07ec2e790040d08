package mmap

// Region is a window [off, off+n) into a Mapping. It does not own memory and
// becomes empty once the mapping is closed.
type Region struct {
	m   *Mapping
	off int
	n   int
}

// Region returns the window of n bytes starting at off.
func (m *Mapping) Region(off, n int) (Region, error) {
	if m.closed.Load() {
		return Region{}, ErrClosed
	}
	if off < 0 || n < 0 || off > m.size-n {
		return Region{}, ErrOutOfBounds
	}
	return Region{m: m, off: off, n: n}, nil
}

// Bytes returns the window, or nil once the mapping is closed.
func (r Region) Bytes() []byte {
	if r.m.closed.Load() {
		return nil
	}
	return r.m.data[r.off : r.off+r.n : r.off+r.n]
}

// Advise applies an access hint to the window only.
func (r Region) Advise(pattern AccessPattern) error {
	if r.m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(r.m.data[r.off:r.off+r.n], pattern)
}
