package stream

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/hupe1980/bigarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	compressible := func(i int64) byte { return byte(i % 16) }

	tests := []struct {
		name        string
		compression Compression
		init        func(int64) byte
	}{
		{"none", CompressionNone, compressible},
		{"lz4", CompressionLZ4, compressible},
		{"zstd", CompressionZSTD, compressible},
		{"lz4 incompressible", CompressionLZ4, pattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newBytes(t, 10_000, 12, tt.init)

			var buf bytes.Buffer
			n, err := Encode(context.Background(), &buf, src, WithCompression(tt.compression))
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			dst, err := Decode(context.Background(), &buf)
			require.NoError(t, err)
			assert.Equal(t, src.Size(), dst.Size())
			assert.Equal(t, src.SegmentSize(), dst.SegmentSize())
			assert.True(t, bigarray.ContentEquals(src, dst))
		})
	}
}

func TestEncode_Compresses(t *testing.T) {
	src := newBytes(t, 1<<16, 14, func(int64) byte { return 'a' })

	var raw, packed bytes.Buffer
	_, err := Encode(context.Background(), &raw, src)
	require.NoError(t, err)
	_, err = Encode(context.Background(), &packed, src, WithCompression(CompressionZSTD))
	require.NoError(t, err)

	assert.Less(t, packed.Len(), raw.Len()/10)
}

func TestEncode_UnknownCompression(t *testing.T) {
	src := newBytes(t, 16, 4, pattern)
	_, err := Encode(context.Background(), io.Discard, src, WithCompression(Compression(9)))
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestDecode_InvalidHeader(t *testing.T) {
	_, err := Decode(context.Background(), bytes.NewReader([]byte("BGAF")))
	assert.ErrorIs(t, err, ErrInvalidHeader)

	_, err = Decode(context.Background(), bytes.NewReader(make([]byte, headerSize)))
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestDecode_Truncated(t *testing.T) {
	src := newBytes(t, 100, 5, pattern)

	var buf bytes.Buffer
	_, err := Encode(context.Background(), &buf, src)
	require.NoError(t, err)

	_, err = Decode(context.Background(), bytes.NewReader(buf.Bytes()[:buf.Len()-10]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFrameReader_SizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf, CompressionNone)
	require.NoError(t, fw.WriteFrame([]byte("hello")))
	assert.Equal(t, int64(frameHeaderSize+5), fw.Written())

	fr := NewFrameReader(&buf, CompressionNone)
	err := fr.ReadFrame(make([]byte, 4))
	assert.ErrorIs(t, err, ErrCorruptFrame)
}

func TestFrameReader_CorruptPayload(t *testing.T) {
	var frame [frameHeaderSize + 4]byte
	binary.LittleEndian.PutUint32(frame[0:], 64)
	binary.LittleEndian.PutUint32(frame[4:], 4)
	copy(frame[frameHeaderSize:], []byte{0xff, 0xff, 0xff, 0xff})

	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		fr := NewFrameReader(bytes.NewReader(frame[:]), c)
		assert.ErrorIs(t, fr.ReadFrame(make([]byte, 64)), ErrCorruptFrame, c.String())
	}
}

func TestSegmentBits(t *testing.T) {
	assert.Equal(t, byte(1), segmentBits(2))
	assert.Equal(t, byte(20), segmentBits(1<<20))
}

func TestFrameReader_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf, CompressionNone)
	require.NoError(t, fw.WriteFrame([]byte("segment")))

	data := buf.Bytes()
	data[len(data)-1] ^= 0x01

	fr := NewFrameReader(bytes.NewReader(data), CompressionNone)
	assert.ErrorIs(t, fr.ReadFrame(make([]byte, 7)), ErrCorruptFrame)
}

func TestDecode_OversizedHeader(t *testing.T) {
	var hdr [headerSize]byte
	copy(hdr[:4], magic[:])
	hdr[4] = formatVersion
	hdr[5] = byte(CompressionNone)
	hdr[6] = 30
	binary.LittleEndian.PutUint64(hdr[8:], 1<<40)

	t.Run("no frames", func(t *testing.T) {
		_, err := Decode(context.Background(), bytes.NewReader(hdr[:]))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("truncated frame", func(t *testing.T) {
		var frame [frameHeaderSize]byte
		binary.LittleEndian.PutUint32(frame[0:], 1<<30)

		data := append(append(hdr[:], frame[:]...), "short"...)
		_, err := Decode(context.Background(), bytes.NewReader(data))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("size beyond layout", func(t *testing.T) {
		bad := hdr
		bad[6] = 4
		binary.LittleEndian.PutUint64(bad[8:], 1<<40)
		_, err := Decode(context.Background(), bytes.NewReader(bad[:]))
		assert.ErrorIs(t, err, ErrInvalidHeader)
		assert.ErrorIs(t, err, bigarray.ErrInvalidSize)
	})
}

func TestReadN(t *testing.T) {
	src := bytes.Repeat([]byte{7}, 3*readChunk+5)

	got, err := readN(bytes.NewReader(src), nil, len(src))
	require.NoError(t, err)
	assert.Equal(t, src, got)

	got, err = readN(bytes.NewReader(src[:10]), nil, 1<<30)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Len(t, got, 10)
	assert.LessOrEqual(t, cap(got), 2*readChunk)
}
