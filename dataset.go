package namesdataset

import (
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

//go:embed data
var assetData embed.FS

// NameRecord holds the demographic metadata stored for one name.
type NameRecord struct {
	Country map[string]float64 `json:"country"` // alpha-2 code -> relative frequency
	Gender  map[string]float64 `json:"gender"`  // "M"/"F" -> relative frequency
	Rank    map[string]int     `json:"rank"`    // alpha-2 code -> popularity rank, 1 is best
}

// Dataset is an immutable mapping from normalized name to NameRecord.
// Names keep the order in which they appear in the source document so that
// aggregations over a Dataset are deterministic.
//
// A nil *Dataset behaves like an empty one for every read method.
type Dataset struct {
	names   []string
	records map[string]NameRecord
}

func newDataset() *Dataset {
	return &Dataset{records: make(map[string]NameRecord)}
}

// add stores a record. A repeated name keeps its first position and the last value.
func (d *Dataset) add(name string, rec NameRecord) {
	if rec.Country == nil {
		rec.Country = map[string]float64{}
	}
	if rec.Gender == nil {
		rec.Gender = map[string]float64{}
	}
	if rec.Rank == nil {
		rec.Rank = map[string]int{}
	}
	if _, ok := d.records[name]; !ok {
		d.names = append(d.names, name)
	}
	d.records[name] = rec
}

// Len returns the number of names in the dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Names returns the dataset keys in document order.
func (d *Dataset) Names() []string {
	if d == nil {
		return []string{}
	}
	return append([]string{}, d.names...)
}

// Lookup returns a copy of the record stored under the exact key name.
// Callers are expected to pass an already normalized key.
func (d *Dataset) Lookup(name string) (NameRecord, bool) {
	rec, ok := d.lookup(name)
	if !ok {
		return NameRecord{}, false
	}
	return NameRecord{
		Country: maps.Clone(rec.Country),
		Gender:  maps.Clone(rec.Gender),
		Rank:    maps.Clone(rec.Rank),
	}, true
}

// lookup returns the stored record without copying. Internal readers must not mutate it.
func (d *Dataset) lookup(name string) (NameRecord, bool) {
	if d == nil {
		return NameRecord{}, false
	}
	rec, ok := d.records[name]
	return rec, ok
}

// order returns the internal key slice. Internal readers must not mutate it.
func (d *Dataset) order() []string {
	if d == nil {
		return nil
	}
	return d.names
}

// each calls fn for every record in document order.
func (d *Dataset) each(fn func(name string, rec NameRecord)) {
	for _, name := range d.order() {
		fn(name, d.records[name])
	}
}

// loadDataset reads the archive at p. An empty p means the dataset is not
// configured and yields nil. A missing archive yields an empty dataset
// silently; any other failure is logged and also yields an empty dataset.
func loadDataset(p string, logger *slog.Logger) *Dataset {
	if p == "" {
		return nil
	}

	raw, err := readAsset(p)
	if errors.Is(err, fs.ErrNotExist) {
		return newDataset()
	}

	var ds *Dataset
	if err == nil {
		ds, err = decodeArchive(raw)
	}
	if err != nil {
		logger.Warn("failed to load dataset",
			slog.String("path", p),
			slog.String("error", err.Error()))
		return newDataset()
	}

	logger.Debug("loaded dataset", slog.String("path", p), slog.Int("names", ds.Len()))
	return ds
}

// openAsset opens p from the filesystem first, then from the bundled assets.
// The filesystem wins so that a rebuilt dataset can replace the bundled one
// without recompiling.
func openAsset(p string) (fs.File, error) {
	fh, err := os.Open(p)
	if err == nil {
		return fh, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "opening %s", p)
	}

	name := path.Clean(filepath.ToSlash(p))
	if !fs.ValidPath(name) {
		return nil, fs.ErrNotExist
	}
	return assetData.Open(name)
}

// readAsset returns the raw archive bytes, unwrapping a bzip2 layer when p ends in ".bz2".
func readAsset(p string) ([]byte, error) {
	fh, err := openAsset(p)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var r io.Reader = fh
	if strings.HasSuffix(p, ".bz2") {
		r = bzip2.NewReader(fh)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", p)
	}
	return raw, nil
}

// decodeArchive treats the first entry of the zip archive as the dataset document.
func decodeArchive(raw []byte) (*Dataset, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, errors.Wrap(err, "opening zip archive")
	}
	if len(zr.File) == 0 {
		return newDataset(), nil
	}

	entry := zr.File[0]
	fi, err := entry.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s in zip", entry.Name)
	}
	defer fi.Close()

	ds, err := decodeDataset(fi)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", entry.Name)
	}
	return ds, nil
}

// decodeDataset streams a top-level JSON object of name -> record, keeping key order.
func decodeDataset(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "reading document start")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Errorf("dataset document must be a JSON object, got %v", tok)
	}

	ds := newDataset()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "reading name")
		}
		name := tok.(string)

		var rec NameRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, errors.Wrapf(err, "decoding record %q", name)
		}
		ds.add(name, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "reading document end")
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, errors.Wrap(err, "reading after document end")
		}
		return nil, errors.Errorf("unexpected content after document end: %v", tok)
	}
	return ds, nil
}
