// Package faultlog keeps an append-only CSV history of the faults found by
// each report run.
package faultlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Record is one row in the fault log.
type Record struct {
	Timestamp time.Time
	RunID     string
	Kind      model.FaultKind
	Period    string
	Seq       int
	Reference string
	Message   string
}

// Header is the CSV header for fault-log.csv.
const Header = "timestamp,run_id,kind,period,seq,reference,message"

const (
	numFields    = 7
	logDir       = "logs"
	logFile      = "logs/fault-log.csv"
	colTimestamp = 0
	colRunID     = 1
	colKind      = 2
	colPeriod    = 3
	colSeq       = 4
	colReference = 5
	colMessage   = 6
)

// FromFaults stamps the faults of one run.
func FromFaults(runID string, at time.Time, faults []model.Fault) []Record {
	records := make([]Record, 0, len(faults))
	for _, f := range faults {
		records = append(records, Record{
			Timestamp: at,
			RunID:     runID,
			Kind:      f.Kind,
			Period:    f.PeriodLabel(),
			Seq:       f.Seq,
			Reference: f.Reference,
			Message:   f.Message,
		})
	}
	return records
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(r Record) []string {
	row := make([]string, numFields)
	row[colTimestamp] = r.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = r.RunID
	row[colKind] = string(r.Kind)
	row[colPeriod] = r.Period
	row[colSeq] = strconv.Itoa(r.Seq)
	row[colReference] = r.Reference
	row[colMessage] = r.Message
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(record []string) (Record, error) {
	if len(record) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Record{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	seq, err := strconv.Atoi(record[colSeq])
	if err != nil {
		return Record{}, fmt.Errorf("parsing seq %q: %w", record[colSeq], err)
	}

	return Record{
		Timestamp: ts,
		RunID:     record[colRunID],
		Kind:      model.FaultKind(record[colKind]),
		Period:    record[colPeriod],
		Seq:       seq,
		Reference: record[colReference],
		Message:   record[colMessage],
	}, nil
}

// Path returns the fault log location inside a repo.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, logFile)
}

// Append writes records to <repoRoot>/logs/fault-log.csv, creating the file
// and header if needed.
func Append(repoRoot string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(repoRoot)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening fault log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, r := range records {
		if err := cw.Write(MarshalRecord(r)); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all records from <repoRoot>/logs/fault-log.csv. A missing
// file yields no records.
func Read(repoRoot string) ([]Record, error) {
	f, err := os.Open(Path(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening fault log: %w", err)
	}
	defer f.Close()

	return readRecords(f)
}

// ForRun returns the records written by one run.
func ForRun(records []Record, runID string) []Record {
	var out []Record
	for _, r := range records {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	return out
}

func readRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading fault log CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	var records []Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
