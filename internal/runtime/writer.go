package runtime

import (
	"errors"
	"fmt"
	"io"
	"syscall"
)

// pipeWriter marks write failures caused by a closed reader, such as
// `pinterest-ads campaigns list | head -1`, so they end the process with
// exit code 0.
type pipeWriter struct {
	w io.Writer
}

func (p *pipeWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if err != nil && errors.Is(err, syscall.EPIPE) {
		return n, fmt.Errorf("write output: %w", syscall.EPIPE)
	}
	return n, err
}
