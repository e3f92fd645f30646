package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{
	"sequence", "kind", "timestamp", "from", "to", "owner", "spender", "contract", "deployer", "value",
}

// WriteCSV writes the log as CSV with a header row.
func (l *Log) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range l.Records {
		row := []string{
			strconv.FormatUint(r.Sequence, 10),
			r.Kind,
			r.Timestamp.Format(time.RFC3339Nano),
			r.From, r.To, r.Owner, r.Spender, r.Contract, r.Deployer, r.Value,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the log to a CSV file.
func (l *Log) WriteCSVFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	return l.WriteCSV(f)
}

// ReadCSV parses a log from a CSV reader produced by WriteCSV.
func ReadCSV(r io.Reader) (*Log, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) == 0 {
		return &Log{}, nil
	}
	if len(rows[0]) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(rows[0]))
	}

	log := &Log{}
	for i, row := range rows[1:] {
		seq, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid sequence %q: %w", i+1, row[0], err)
		}
		ts, err := time.Parse(time.RFC3339Nano, row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp %q: %w", i+1, row[2], err)
		}
		log.Records = append(log.Records, Record{
			Sequence:  seq,
			Kind:      row[1],
			Timestamp: ts,
			From:      row[3],
			To:        row[4],
			Owner:     row[5],
			Spender:   row[6],
			Contract:  row[7],
			Deployer:  row[8],
			Value:     row[9],
		})
	}
	return log, nil
}

// ReadCSVFile parses a log from a CSV file.
func ReadCSVFile(filename string) (*Log, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}
