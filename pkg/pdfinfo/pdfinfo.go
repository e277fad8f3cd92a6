// Package pdfinfo inspects captured PDF bytes.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

var ErrNotPDF = errors.New("pdfinfo: not a pdf document")

// open parses data. The parser panics on some corrupt inputs, so panics are
// turned into errors.
func open(data []byte) (r *pdf.Reader, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("pdfinfo: parse: %v", p)
		}
	}()
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdfinfo: parse: %w", err)
	}
	return r, nil
}

// Pages returns the page count of data.
func Pages(data []byte) (int, error) {
	r, err := open(data)
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

// Text extracts the plain text of every page.
func Text(data []byte) (text string, err error) {
	r, err := open(data)
	if err != nil {
		return "", err
	}
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("pdfinfo: extract: %v", p)
		}
	}()
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdfinfo: extract: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
