// Package fixture reads and writes fixture files: JSON arrays of log
// records, optionally gzip-compressed.
package fixture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/dimonomid/cxmocklogs/record"
	"github.com/juju/errors"
	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// IsGzipPath returns whether a file at the given path is written compressed.
func IsGzipPath(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// Marshal returns the records as an indented JSON array with a trailing
// newline. A nil slice is marshaled as an empty array.
func Marshal(records []record.LogRecord) ([]byte, error) {
	if records == nil {
		records = []record.LogRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, errors.Trace(err)
	}

	return buf.Bytes(), nil
}

// Write overwrites the file at path with the records. If the path ends with
// ".gz", the data is gzip-compressed.
func Write(path string, records []record.LogRecord) error {
	data, err := Marshal(records)
	if err != nil {
		return errors.Trace(err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Annotatef(err, "creating %s", path)
	}
	defer file.Close()

	bw := bufio.NewWriter(file)

	var w io.Writer = bw
	var gzw *gzip.Writer
	if IsGzipPath(path) {
		gzw = gzip.NewWriter(bw)
		w = gzw
	}

	if _, err := w.Write(data); err != nil {
		return errors.Annotatef(err, "writing %s", path)
	}

	if gzw != nil {
		if err := gzw.Close(); err != nil {
			return errors.Annotatef(err, "compressing %s", path)
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Annotatef(err, "writing %s", path)
	}

	if err := file.Close(); err != nil {
		return errors.Annotatef(err, "closing %s", path)
	}

	return nil
}

// ReadAll returns the contents of the fixture file, decompressed if the file
// starts with the gzip magic bytes.
func ReadAll(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading %s", path)
	}

	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Annotatef(err, "opening gzip stream of %s", path)
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Annotatef(err, "decompressing %s", path)
	}

	return plain, nil
}
