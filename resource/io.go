package resource

import (
	"context"
	"io"
)

// Reader reads model data under the IO limit of a Controller and counts the
// bytes it consumed. Reads fail once ctx is done.
type Reader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
	n   int64
}

// NewReader wraps r. A nil controller only counts.
func NewReader(ctx context.Context, r io.Reader, rc *Controller) *Reader {
	return &Reader{ctx: ctx, r: r, rc: rc}
}

func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.r.Read(p)
	r.n += int64(n)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// Count returns the bytes read so far.
func (r *Reader) Count() int64 { return r.n }
