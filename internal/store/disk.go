package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

const (
	parquetSuffix  = ".parquet"
	latestPointer  = "LATEST"
	parquetWorkers = 4
)

// DiskStore keeps each version as <dir>/<version>.parquet.
// The LATEST file names the most recent version; when it is missing the
// newest parquet file by modification time wins.
type DiskStore struct {
	dir string
	mu  sync.Mutex
}

// NewDiskStore creates the directory if needed
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the storage directory
func (s *DiskStore) Dir() string {
	return s.dir
}

// Path returns the parquet file of a version
func (s *DiskStore) Path(version string) string {
	return filepath.Join(s.dir, version+parquetSuffix)
}

// Put writes the dataset to a temp file, renames it into place and then
// moves the LATEST pointer
func (s *DiskStore) Put(ctx context.Context, meta contracts.DatasetVersion, ds *contracts.Dataset) error {
	if !ValidVersionID(meta.ID) {
		return fmt.Errorf("invalid version id %q", meta.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.Path(meta.ID) + ".tmp"
	if err := writeParquet(tmp, ds); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.Path(meta.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish parquet: %w", err)
	}

	return s.writeLatest(meta.ID)
}

// Get reads a stored version back into a dataset
func (s *DiskStore) Get(ctx context.Context, version string) (*contracts.Dataset, error) {
	if !ValidVersionID(version) {
		return nil, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(version)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat parquet: %w", err)
	}

	return readParquet(path)
}

// LatestVersion reads the LATEST pointer, falling back to a directory scan
func (s *DiskStore) LatestVersion(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, latestPointer))
	if err == nil {
		version := strings.TrimSpace(string(data))
		if ValidVersionID(version) {
			if _, err := os.Stat(s.Path(version)); err == nil {
				return version, nil
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read latest pointer: %w", err)
	}

	return s.scanLatest()
}

func (s *DiskStore) scanLatest() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("list store dir: %w", err)
	}

	var (
		latest string
		newest time.Time
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, parquetSuffix) {
			continue
		}
		version := strings.TrimSuffix(name, parquetSuffix)
		if !ValidVersionID(version) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(newest) {
			latest, newest = version, info.ModTime()
		}
	}

	if latest == "" {
		return "", ErrNoData
	}
	return latest, nil
}

func (s *DiskStore) writeLatest(version string) error {
	pointer := filepath.Join(s.dir, latestPointer)
	tmp := pointer + ".tmp"
	if err := os.WriteFile(tmp, []byte(version+"\n"), 0o644); err != nil {
		return fmt.Errorf("write latest pointer: %w", err)
	}
	if err := os.Rename(tmp, pointer); err != nil {
		return fmt.Errorf("publish latest pointer: %w", err)
	}
	return nil
}

func writeParquet(path string, ds *contracts.Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet: %w", err)
	}

	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(storedRow), parquetWorkers)
	if err != nil {
		file.Close()
		return fmt.Errorf("parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range ds.Records {
		row := toStored(&ds.Records[i])
		if err := pw.Write(&row); err != nil {
			pw.WriteStop()
			file.Close()
			return fmt.Errorf("parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("parquet flush: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close parquet file: %w", err)
	}
	return nil
}

func readParquet(path string) (*contracts.Dataset, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(storedRow), parquetWorkers)
	if err != nil {
		return nil, fmt.Errorf("parquet reader: %w", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]storedRow, n)
	if n > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("parquet read: %w", err)
		}
	}

	records := make([]contracts.Record, len(rows))
	hasCost := false
	for i := range rows {
		records[i] = fromStored(&rows[i])
		if records[i].ProductCost.Valid {
			hasCost = true
		}
	}

	// 원가 컬럼은 값이 하나라도 있을 때만 존재하는 것으로 본다
	if hasCost {
		return contracts.NewDataset(records, contracts.FieldProductCost), nil
	}
	return contracts.NewDataset(records), nil
}
