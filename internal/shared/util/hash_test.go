package util

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestChecksumReaderMatchesChecksum(t *testing.T) {
	payload := []byte(strings.Repeat("%PDF-1.4 body ", 1000))
	cr := NewChecksumReader(bytes.NewReader(payload))

	var out bytes.Buffer
	if _, err := io.Copy(&out, cr); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if !bytes.Equal(out.Bytes(), payload) {
		t.Fatalf("reader altered content")
	}
	if cr.Size() != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), cr.Size())
	}
	if got, want := cr.Sum(), Checksum(payload); got != want {
		t.Fatalf("checksum mismatch: %s != %s", got, want)
	}
	if len(cr.Sum()) != 16 {
		t.Fatalf("expected 16 hex characters, got %d", len(cr.Sum()))
	}
}

func TestChecksumDiffers(t *testing.T) {
	if Checksum([]byte("a")) == Checksum([]byte("b")) {
		t.Fatalf("expected different checksums")
	}
}
