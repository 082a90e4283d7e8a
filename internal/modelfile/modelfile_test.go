package modelfile

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/phrasego/resource"
)

const content = "das ||| the ||| -0.5\nhaus ||| house ||| -0.25\n"

func write(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func zstdBytes(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func lz4Bytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
		want Compression
	}{
		{"plain", func(*testing.T) []byte { return []byte(content) }, CompressionNone},
		{"zstd", func(t *testing.T) []byte { return zstdBytes(t, content) }, CompressionZSTD},
		{"lz4", func(t *testing.T) []byte { return lz4Bytes(t, content) }, CompressionLZ4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, "table", tt.data(t))

			f, err := Open(context.Background(), path, nil)
			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, tt.want, f.Compression())
			got, err := io.ReadAll(f)
			require.NoError(t, err)
			assert.Equal(t, content, string(got))
		})
	}
}

func TestOpen_Empty(t *testing.T) {
	f, err := Open(context.Background(), write(t, "empty", nil), nil)
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, f.Close())
}

func TestOpen_RateLimited(t *testing.T) {
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	f, err := Open(context.Background(), write(t, "table", []byte(content)), rc)
	require.NoError(t, err)
	defer f.Close()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.Equal(t, int64(len(content)), f.DiskBytes())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompressionString(t *testing.T) {
	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "zstd", CompressionZSTD.String())
	assert.Equal(t, "lz4", CompressionLZ4.String())
}
