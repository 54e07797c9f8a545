package indicators

// window stores flattened observations in a fixed-size ring buffer,
// discarding the oldest entry once the buffer is full.
type window struct {
	entries [][]float64
	head    int // Next write position
	count   int
	size    int
}

func newWindow(size int) *window {
	if size <= 0 {
		size = DefaultQueueSize
	}

	return &window{
		entries: make([][]float64, size),
		size:    size,
	}
}

func (w *window) push(v []float64) {
	w.entries[w.head] = v
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

// items returns the entries in chronological order.
func (w *window) items() [][]float64 {
	if w.count == 0 {
		return nil
	}

	result := make([][]float64, w.count)

	if w.count < w.size {
		// Buffer not yet full - entries are in order from 0 to count-1
		copy(result, w.entries[:w.count])
	} else {
		// Buffer is full - read in order from head to head-1
		for i := 0; i < w.count; i++ {
			result[i] = w.entries[(w.head+i)%w.size]
		}
	}

	return result
}

func (w *window) reset() {
	w.entries = make([][]float64, w.size)
	w.head = 0
	w.count = 0
}
