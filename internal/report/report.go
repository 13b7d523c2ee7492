// Package report sorts and formats the analyzer's result records for the
// finddead CLI: one line per distinct location, ordered by (file, line,
// col) with line and col compared as unsigned integers, per spec.md §4.E.
package report

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/standardbeagle/finddead/internal/analyzer"
)

// Record is one reported declaration, named after the external wire format
// (spec.md §6): "(is_used: bool, location: string)".
type Record struct {
	Used     bool   `json:"used"`
	Location string `json:"location"`
}

// Merge unions results from one or more translation units by location
// string: a location reported used by any TU is used overall (spec.md §1
// Non-goals: "the aggregation step simply unions per-TU results by
// location string").
func Merge(perFile [][]analyzer.Result) []Record {
	used := make(map[string]bool)
	order := make([]string, 0)
	for _, results := range perFile {
		for _, r := range results {
			if _, seen := used[r.Location]; !seen {
				order = append(order, r.Location)
			}
			used[r.Location] = used[r.Location] || r.Used
		}
	}

	out := make([]Record, len(order))
	for i, loc := range order {
		out[i] = Record{Location: loc, Used: used[loc]}
	}
	Sort(out)
	return out
}

// Sort orders records by (file, line, col), comparing line and col as
// unsigned integers rather than lexically, per spec.md §4.E.
func Sort(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return less(records[i].Location, records[j].Location)
	})
}

func less(a, b string) bool {
	af, al, ac, aok := splitLocation(a)
	bf, bl, bc, bok := splitLocation(b)
	if !aok || !bok {
		return a < b
	}
	if af != bf {
		return af < bf
	}
	if al != bl {
		return al < bl
	}
	return ac < bc
}

// splitLocation parses "file:line:col" into its parts. A malformed
// location (should not occur; the analyzer always produces this shape)
// falls back to lexical comparison in less.
func splitLocation(loc string) (file string, line, col uint64, ok bool) {
	lastColon := strings.LastIndexByte(loc, ':')
	if lastColon < 0 {
		return "", 0, 0, false
	}
	secondLastColon := strings.LastIndexByte(loc[:lastColon], ':')
	if secondLastColon < 0 {
		return "", 0, 0, false
	}

	file = loc[:secondLastColon]
	lineStr := loc[secondLastColon+1 : lastColon]
	colStr := loc[lastColon+1:]

	line, err := strconv.ParseUint(lineStr, 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	col, err = strconv.ParseUint(colStr, 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	return file, line, col, true
}

// WriteText writes one "<0|1> <location>\n" line per record, already
// assumed sorted, per spec.md §6's output format.
func WriteText(w io.Writer, records []Record) error {
	var sb strings.Builder
	for _, r := range records {
		if r.Used {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		sb.WriteByte(' ')
		sb.WriteString(r.Location)
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes records as a JSON array, for editor/CI tooling
// (SPEC_FULL.md §6.1's --json flag).
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
