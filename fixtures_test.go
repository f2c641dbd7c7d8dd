package namesdataset

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// fataler is satisfied by both *testing.T and *check.C.
type fataler interface {
	Fatalf(format string, args ...interface{})
}

type zipFile struct {
	name string
	body string
}

const firstNamesJSON = `{
	"John": {"country": {"US": 90}, "gender": {"M": 1.0}, "rank": {"US": 1}},
	"Jane": {"country": {"US": 10}, "gender": {"F": 1.0}, "rank": {"US": 2}}
}`

const lastNamesJSON = `{
	"Doe": {"country": {"US": 100}, "gender": {}, "rank": {"US": 1}}
}`

// zipBytes builds an in-memory zip archive holding files in order.
func zipBytes(f fataler, files ...zipFile) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, file := range files {
		w, err := zw.Create(file.name)
		if err != nil {
			f.Fatalf("creating zip entry %s: %v", file.name, err)
		}
		if _, err := io.WriteString(w, file.body); err != nil {
			f.Fatalf("writing zip entry %s: %v", file.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// writeFile writes data to dir/name and returns the full path.
func writeFile(f fataler, dir, name string, data []byte) string {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0644); err != nil {
		f.Fatalf("writing %s: %v", p, err)
	}
	return p
}

// writeZip writes a zip archive holding files to dir/name.
func writeZip(f fataler, dir, name string, files ...zipFile) string {
	return writeFile(f, dir, name, zipBytes(f, files...))
}

// writeDataset writes a single-entry archive containing doc.
func writeDataset(f fataler, dir, name, doc string) string {
	return writeZip(f, dir, name, zipFile{name: "names.json", body: doc})
}

// bufferLogger returns a logger writing text records to the returned buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
