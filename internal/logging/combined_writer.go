package logging

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter tees writes to every writer. A failing writer does not stop
// the others; all failures are combined into the returned error.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	cw.Writers = append(cw.Writers, writers...)
	return cw
}

// Write reports len(p) when at least one writer accepted the whole buffer.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	ok := false
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		if written == len(p) {
			ok = true
		}
	}
	if ok {
		return len(p), err
	}
	return 0, err
}
