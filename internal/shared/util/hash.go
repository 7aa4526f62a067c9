package util

import (
	"fmt"
	"io"

	"github.com/zeebo/xxh3"
)

// ChecksumReader hashes and counts bytes as they are read.
type ChecksumReader struct {
	r io.Reader
	h *xxh3.Hasher
	n int64
}

// NewChecksumReader wraps r so its content is hashed with xxh3 while streaming.
func NewChecksumReader(r io.Reader) *ChecksumReader {
	return &ChecksumReader{r: r, h: xxh3.New()}
}

func (c *ChecksumReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		_, _ = c.h.Write(p[:n])
		c.n += int64(n)
	}
	return n, err
}

// Size returns the number of bytes read so far.
func (c *ChecksumReader) Size() int64 { return c.n }

// Sum returns the 16 hex character checksum of the bytes read so far.
func (c *ChecksumReader) Sum() string {
	return FormatChecksum(c.h.Sum64())
}

// Checksum returns the checksum of b.
func Checksum(b []byte) string {
	return FormatChecksum(xxh3.Hash(b))
}

// FormatChecksum renders a 64-bit hash as 16 hex characters.
func FormatChecksum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
