package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSONL writes the log as JSON Lines, one record per line.
func (l *Log) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, r := range l.Records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// WriteJSONLFile writes the log to a JSONL file.
func (l *Log) WriteJSONLFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := l.WriteJSONL(w); err != nil {
		return err
	}
	return w.Flush()
}

// ReadJSONL parses a log from a JSONL reader. Empty lines are skipped.
func ReadJSONL(r io.Reader) (*Log, error) {
	log := &Log{}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var record Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		log.Records = append(log.Records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return log, nil
}

// ReadJSONLFile parses a log from a JSONL file.
func ReadJSONLFile(filename string) (*Log, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadJSONL(f)
}
