package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Digest accumulates a hash over a sequence of values.
type Digest struct {
	d   *xxhash.Digest
	buf [4]byte
}

// NewDigest returns an empty Digest.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// AddUint32 mixes v into the digest.
func (d *Digest) AddUint32(v uint32) {
	binary.LittleEndian.PutUint32(d.buf[:4], v)
	_, _ = d.d.Write(d.buf[:4])
}

// AddString mixes s into the digest, followed by a separator byte so that
// ("ab","c") and ("a","bc") differ.
func (d *Digest) AddString(s string) {
	_, _ = d.d.WriteString(s)
	_, _ = d.d.Write([]byte{0})
}

// Sum64 returns the current hash.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}
