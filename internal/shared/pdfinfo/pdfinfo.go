// Package pdfinfo recognizes PDF payloads and reads basic facts from them.
package pdfinfo

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"github.com/ledongthuc/pdf"
)

const MimePDF = "application/pdf"

var magic = []byte("%PDF-")

// HasMagic reports whether head starts with the PDF file signature.
func HasMagic(head []byte) bool {
	return bytes.HasPrefix(head, magic)
}

// Accept decides whether an upload is a PDF. The content must carry the
// signature, and the declared type must be application/pdf or a generic
// binary type that browsers send when they cannot tell.
func Accept(r io.ReaderAt, declared string) bool {
	if !isPDFType(declared) && !isGenericType(declared) {
		return false
	}
	head := make([]byte, len(magic))
	n, _ := r.ReadAt(head, 0)
	return HasMagic(head[:n])
}

// PageCount returns the number of pages, or 0 when the document cannot be
// parsed. It never fails: malformed files are still valid uploads.
func PageCount(r io.ReaderAt, size int64) (count int) {
	if size <= 0 {
		return 0
	}
	defer func() {
		if rec := recover(); rec != nil {
			count = 0
		}
	}()
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0
	}
	return reader.NumPage()
}

func isGenericType(declared string) bool {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(declared)
	return err == nil && (mt == "application/octet-stream" || mt == "binary/octet-stream")
}

func isPDFType(declared string) bool {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(declared))
	if err != nil {
		return false
	}
	return mt == MimePDF
}
