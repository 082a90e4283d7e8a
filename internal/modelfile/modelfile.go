// Package modelfile opens model files (phrase tables, ARPA language models)
// that may be stored plain, zstd compressed or lz4 compressed.
//
// Plain files are memory mapped. Compressed files are decoded as a stream.
// The format is detected from the leading magic bytes, so the file
// extension does not matter.
package modelfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/phrasego/resource"
)

// Compression identifies the encoding of a model file.
type Compression uint8

const (
	// CompressionNone indicates a plain text file.
	CompressionNone Compression = iota
	// CompressionZSTD indicates a zstd frame stream.
	CompressionZSTD
	// CompressionLZ4 indicates an lz4 frame stream.
	CompressionLZ4
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// String returns the name of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// Detect classifies a file by its first bytes.
func Detect(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZSTD
	case bytes.HasPrefix(head, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// File is an opened model file. Read returns the decoded text.
type File struct {
	r           io.Reader
	disk        *resource.Reader
	mapped      int64
	compression Compression
	closers     []func() error
}

// Open opens path for reading. A non-nil controller throttles the bytes read
// from disk.
func Open(ctx context.Context, path string, rc *resource.Controller) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("modelfile: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("modelfile: stat %s: %w", path, err)
	}

	disk := resource.NewReader(ctx, f, rc)
	br := bufio.NewReader(disk)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		_ = f.Close()
		return nil, fmt.Errorf("modelfile: read %s: %w", path, err)
	}

	mf := &File{disk: disk, compression: Detect(head), closers: []func() error{f.Close}}

	switch mf.compression {
	case CompressionZSTD:
		dec, err := zstd.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("modelfile: zstd %s: %w", path, err)
		}
		mf.r = dec
		mf.closers = append([]func() error{func() error { dec.Close(); return nil }}, mf.closers...)
	case CompressionLZ4:
		mf.r = lz4.NewReader(br)
	default:
		if fi.Size() == 0 || rc != nil {
			// Empty files cannot be mapped; throttled reads go through br.
			mf.r = br
			break
		}
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("modelfile: mmap %s: %w", path, err)
		}
		mf.r = bytes.NewReader(m)
		mf.mapped = int64(len(m))
		mf.closers = append([]func() error{m.Unmap}, mf.closers...)
	}
	return mf, nil
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

// Compression returns the detected encoding.
func (f *File) Compression() Compression {
	return f.compression
}

// DiskBytes returns the bytes of the file consumed so far. A mapped file
// counts as consumed in full.
func (f *File) DiskBytes() int64 {
	if f.mapped > 0 {
		return f.mapped
	}
	return f.disk.Count()
}

// Close releases the mapping and the file.
func (f *File) Close() error {
	var errs []error
	for _, c := range f.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}
