// Package zip provides the dataset driver for zip archives of delimited
// files, the form most shared spectral libraries arrive in. Every tabular
// member becomes one table.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/GBeurier/nirspipe/datasets"
	"github.com/GBeurier/nirspipe/datasets/csv"
)

func init() {
	datasets.Register("zip", &driver{})
}

type driver struct{}

func (d *driver) Open(source io.Reader, opts *datasets.ParseOptions) (datasets.RowProvider, error) {
	return NewReader(source, opts)
}

// Reader exposes the delimited members of an archive as tables.
type Reader struct {
	opts     datasets.ParseOptions
	archive  *zip.Reader
	names    []string
	memberOf map[string]*zip.File
}

var _ datasets.RowProvider = (*Reader)(nil)

// NewReader opens an archive from source. When source is not an *os.File
// the stream is buffered in memory, archives need random access.
func NewReader(source io.Reader, opts *datasets.ParseOptions) (*Reader, error) {
	var archive *zip.Reader
	var err error

	if f, ok := source.(*os.File); ok {
		info, statErr := f.Stat()
		if statErr != nil {
			return nil, fmt.Errorf("failed to stat archive: %w", statErr)
		}
		archive, err = zip.NewReader(f, info.Size())
	} else {
		data, readErr := io.ReadAll(source)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read archive stream: %w", readErr)
		}
		archive, err = zip.NewReader(bytes.NewReader(data), int64(len(data)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	var o datasets.ParseOptions
	if opts != nil {
		o = *opts
	}

	var members []*zip.File
	var rawNames []string
	for _, f := range archive.File {
		if f.FileInfo().IsDir() || !isTabular(f.Name) {
			continue
		}
		members = append(members, f)
		base := path.Base(f.Name)
		rawNames = append(rawNames, strings.TrimSuffix(base, path.Ext(base)))
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no tabular members found in archive")
	}

	names := datasets.TableNames(rawNames)
	memberOf := make(map[string]*zip.File, len(members))
	for i, m := range members {
		memberOf[names[i]] = m
	}

	return &Reader{opts: o, archive: archive, names: names, memberOf: memberOf}, nil
}

func isTabular(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".txt", ".tsv":
		return true
	}
	return false
}

// TableNames implements datasets.RowProvider.
func (r *Reader) TableNames() []string {
	return r.names
}

// Headers implements datasets.RowProvider.
func (r *Reader) Headers(table string) []string {
	member, err := r.open(table)
	if err != nil {
		return nil
	}
	defer member.rc.Close()
	return member.reader.Headers(member.reader.TableNames()[0])
}

// ColumnTypes implements datasets.RowProvider.
func (r *Reader) ColumnTypes(table string) []string {
	member, err := r.open(table)
	if err != nil {
		return nil
	}
	defer member.rc.Close()
	return member.reader.ColumnTypes(member.reader.TableNames()[0])
}

// ScanRows implements datasets.RowProvider. Members can be scanned
// repeatedly, each scan reopens the member.
func (r *Reader) ScanRows(table string, yield func([]any, error) error) error {
	member, err := r.open(table)
	if err != nil {
		return err
	}
	defer member.rc.Close()
	return member.reader.ScanRows(member.reader.TableNames()[0], yield)
}

type openMember struct {
	rc     io.ReadCloser
	reader *csv.Reader
}

func (r *Reader) open(table string) (*openMember, error) {
	f, ok := r.memberOf[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open member %s: %w", f.Name, err)
	}

	opts := r.opts
	opts.TableName = table
	// Header assessment needs the buffered rows for type inference too.
	opts.AssessHeaderRow = true
	reader, err := csv.NewReader(rc, &opts)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to read member %s: %w", f.Name, err)
	}
	return &openMember{rc: rc, reader: reader}, nil
}
