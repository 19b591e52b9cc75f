// Package stream provides JSONL streaming to/from zip archives.
package stream

import (
	"archive/zip"
	"io"

	"encoding/json/v2"
)

// Writer streams records as JSONL to a file within a zip archive.
type Writer struct {
	zw    *zip.Writer
	w     io.Writer
	count int
}

// NewWriter creates a JSONL writer for a path within the zip.
func NewWriter(zw *zip.Writer, path string) (*Writer, error) {
	w, err := zw.Create(path)
	if err != nil {
		return nil, err
	}

	return &Writer{
		zw: zw,
		w:  w,
	}, nil
}

// Write encodes a single record as a JSON line.
func (w *Writer) Write(record any) error {
	if err := json.MarshalWrite(w.w, record); err != nil {
		return err
	}
	if _, err := w.w.Write([]byte{'\n'}); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns records written so far.
func (w *Writer) Count() int {
	return w.count
}
