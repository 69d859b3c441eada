package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wonny/housedash/internal/contracts"
	"github.com/wonny/housedash/pkg/httputil"
	"github.com/wonny/housedash/pkg/logger"
)

// ErrEmptyDataset the CSV has no header row
var ErrEmptyDataset = errors.New("dataset is empty")

// Loader reads the wide-format CSV from a local path or an http(s) URL
// ⭐ SSOT: 입력 CSV는 이 로더를 통해서만 읽음
type Loader struct {
	client   *httputil.Client
	metadata map[string]bool
	logger   *logger.Logger
}

// NewLoader creates a loader. client may be nil when only local files are used.
// metadataColumns are header names skipped instead of treated as dates.
func NewLoader(client *httputil.Client, metadataColumns []string, log *logger.Logger) *Loader {
	meta := make(map[string]bool, len(metadataColumns))
	for _, c := range metadataColumns {
		meta[strings.ToLower(strings.TrimSpace(c))] = true
	}

	return &Loader{
		client:   client,
		metadata: meta,
		logger:   log,
	}
}

// Load reads and reshapes the dataset at source into an immutable Table
func (l *Loader) Load(ctx context.Context, source string) (*Table, error) {
	start := time.Now()

	r, err := l.open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", source, err)
	}
	defer r.Close()

	wide, err := ReadWide(r, l.metadata)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", source, err)
	}

	table := NewTable(wide, source)

	l.logger.WithFields(map[string]interface{}{
		"source":       source,
		"regions":      len(table.Regions()),
		"date_columns": len(wide.DateLabels),
		"rows":         table.Len(),
		"duration":     time.Since(start),
	}).Info("Dataset loaded")

	return table, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if isRemote(source) {
		if l.client == nil {
			return nil, fmt.Errorf("remote source without http client")
		}
		return l.client.Fetch(ctx, source)
	}
	return os.Open(source)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ReadWide parses the CSV into a WideTable. The first column is the region key;
// columns whose lower-cased header is in metadata are skipped.
func ReadWide(r io.Reader, metadata map[string]bool) (*contracts.WideTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are padded below
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return nil, ErrEmptyDataset
	}

	// 날짜 컬럼 인덱스만 추림
	var keep []int
	wide := &contracts.WideTable{}
	for i := 1; i < len(header); i++ {
		name := strings.TrimSpace(header[i])
		if metadata[strings.ToLower(name)] {
			continue
		}
		keep = append(keep, i)
		wide.DateLabels = append(wide.DateLabels, name)
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		rec := contracts.WideRecord{
			RegionName: strings.TrimSpace(record[0]),
			Cells:      make([]string, len(keep)),
		}
		for j, idx := range keep {
			if idx < len(record) {
				rec.Cells[j] = record[idx]
			}
		}
		wide.Records = append(wide.Records, rec)
	}

	return wide, nil
}
