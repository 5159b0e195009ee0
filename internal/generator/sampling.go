package generator

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

const (
	FileTypeCSV  = "CSV"
	FileTypeJSON = "JSON"
)

// SamplingConfig describes the record pool of a Sampling generator.
type SamplingConfig struct {
	FilePath string
	// FileType is CSV (default) or JSON.
	FileType string
	// SampleCols restricts generated rows to these columns. Empty means all.
	SampleCols []string
	// HasHeader reports whether a CSV file starts with a header row.
	// nil means true.
	HasHeader *bool
}

// Sampling draws whole records, with replacement, from a pool loaded at
// construction time.
type Sampling struct {
	records []types.Row
	columns []string
	cols    []string
}

func NewSampling(cfg SamplingConfig) (*Sampling, error) {
	if cfg.FilePath == "" {
		return nil, apperrors.Configf("sampling generator requires file_path")
	}

	fileType := strings.ToUpper(strings.TrimSpace(cfg.FileType))
	if fileType == "" {
		fileType = FileTypeCSV
	}

	var (
		records []types.Row
		columns []string
		err     error
	)
	switch fileType {
	case FileTypeCSV:
		hasHeader := cfg.HasHeader == nil || *cfg.HasHeader
		records, columns, err = readCSV(cfg.FilePath, hasHeader)
	case FileTypeJSON:
		records, columns, err = readJSON(cfg.FilePath)
	default:
		return nil, apperrors.Configf("unsupported file_type %q", cfg.FileType)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.Configf("sampling source %s has no records", cfg.FilePath)
	}

	s := &Sampling{records: records, columns: columns, cols: columns}
	if len(cfg.SampleCols) > 0 {
		for _, c := range cfg.SampleCols {
			if !slices.Contains(columns, c) {
				return nil, fmt.Errorf("%w: %v is not a subset of %v",
					apperrors.ErrInvalidColumnSubset, cfg.SampleCols, columns)
			}
		}
		s.cols = cfg.SampleCols
	}
	return s, nil
}

func (s *Sampling) Kind() Kind { return KindSampling }

// Columns returns the columns emitted by Generate.
func (s *Sampling) Columns() []string { return s.cols }

// SourceColumns returns every column of the source.
func (s *Sampling) SourceColumns() []string { return s.columns }

// Len returns the size of the record pool.
func (s *Sampling) Len() int { return len(s.records) }

func (s *Sampling) Generate(rc *RowContext) (types.Row, error) {
	rec := s.records[rc.Rand.Intn(len(s.records))]
	row := make(types.Row, len(s.cols))
	for _, c := range s.cols {
		if v, ok := rec[c]; ok {
			row[c] = v
		}
	}
	return row, nil
}

func readCSV(path string, hasHeader bool) ([]types.Row, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening csv %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	sample, err := br.Peek(1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, nil, fmt.Errorf("reading csv %s: %w", path, err)
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(sample)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var headers []string
	var records []types.Row
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading csv %s: %w", path, err)
		}

		if headers == nil {
			if hasHeader {
				headers = rec
				continue
			}
			headers = make([]string, len(rec))
			for i := range rec {
				headers[i] = fmt.Sprintf("col%d", i)
			}
		}

		row := make(types.Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		records = append(records, row)
	}
	return records, headers, nil
}

// sniffDelimiter picks the candidate delimiter occurring most often in the
// first line of sample, defaulting to a comma.
func sniffDelimiter(sample []byte) rune {
	line := string(sample)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func readJSON(path string) ([]types.Row, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading json %s: %w", path, err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parsing json %s: %w", path, err)
	}

	records := make([]types.Row, len(raw))
	seen := make(map[string]bool)
	var columns []string
	for i, m := range raw {
		records[i] = types.Row(m)
		for k := range m {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)
	return records, columns, nil
}
