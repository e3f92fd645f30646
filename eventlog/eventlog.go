// Package eventlog provides export, filtering, and summary analysis of token
// ledger notification logs. Supports JSONL and CSV, the formats consumed by
// offline analysis tooling.
package eventlog

import (
	"strings"
	"time"

	"github.com/holiman/uint256"

	"github.com/metacore-xyz/go-metacore/token"
)

// Record is the flat, export-friendly form of a ledger notification.
// Addresses are 0x-prefixed hex, values are decimal strings.
type Record struct {
	Sequence  uint64    `json:"sequence"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	Spender   string    `json:"spender,omitempty"`
	Contract  string    `json:"contract,omitempty"`
	Deployer  string    `json:"deployer,omitempty"`
	Value     string    `json:"value,omitempty"`
}

// Log is an ordered collection of records.
type Log struct {
	Records []Record
}

// FromLedger converts a ledger's notification journal into a Log.
func FromLedger(records []token.Record) *Log {
	log := &Log{Records: make([]Record, 0, len(records))}
	for _, r := range records {
		log.Records = append(log.Records, fromToken(r))
	}
	return log
}

func fromToken(r token.Record) Record {
	out := Record{
		Sequence:  r.Sequence,
		Kind:      string(r.Kind),
		Timestamp: r.Timestamp,
	}
	if r.Value != nil {
		out.Value = r.Value.Dec()
	}
	switch r.Kind {
	case token.KindTransfer:
		out.From = r.From.Hex()
		out.To = r.To.Hex()
	case token.KindApproval:
		out.Owner = r.Owner.Hex()
		out.Spender = r.Spender.Hex()
	case token.KindContractDeployed:
		out.Contract = r.Contract.Hex()
		out.Deployer = r.Deployer.Hex()
	}
	return out
}

// FilterKind returns a new log containing only records of the given kind.
func (l *Log) FilterKind(kind string) *Log {
	out := &Log{}
	for _, r := range l.Records {
		if r.Kind == kind {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// FilterAddress returns a new log containing only records that mention the
// address in any indexed field. Comparison is case-insensitive hex.
func (l *Log) FilterAddress(addr string) *Log {
	want := strings.ToLower(addr)
	out := &Log{}
	for _, r := range l.Records {
		for _, field := range []string{r.From, r.To, r.Owner, r.Spender, r.Contract, r.Deployer} {
			if field != "" && strings.ToLower(field) == want {
				out.Records = append(out.Records, r)
				break
			}
		}
	}
	return out
}

// Summary provides basic statistics about a notification log.
type Summary struct {
	NumRecords       int
	PerKind          map[string]int
	NumAddresses     int
	StartTime        time.Time
	EndTime          time.Time
	TotalTransferred string // decimal sum of Transfer values
}

// Summarize computes summary statistics for the log.
func (l *Log) Summarize() Summary {
	summary := Summary{
		NumRecords: len(l.Records),
		PerKind:    make(map[string]int),
	}
	if len(l.Records) == 0 {
		summary.TotalTransferred = "0"
		return summary
	}

	addresses := make(map[string]bool)
	transferred := new(uint256.Int)
	first := true

	for _, r := range l.Records {
		summary.PerKind[r.Kind]++

		for _, field := range []string{r.From, r.To, r.Owner, r.Spender, r.Deployer} {
			if field != "" {
				addresses[strings.ToLower(field)] = true
			}
		}

		if r.Kind == string(token.KindTransfer) && r.Value != "" {
			if v, err := uint256.FromDecimal(r.Value); err == nil {
				transferred.Add(transferred, v)
			}
		}

		if first {
			summary.StartTime = r.Timestamp
			summary.EndTime = r.Timestamp
			first = false
		} else {
			if r.Timestamp.Before(summary.StartTime) {
				summary.StartTime = r.Timestamp
			}
			if r.Timestamp.After(summary.EndTime) {
				summary.EndTime = r.Timestamp
			}
		}
	}

	summary.NumAddresses = len(addresses)
	summary.TotalTransferred = transferred.Dec()
	return summary
}
