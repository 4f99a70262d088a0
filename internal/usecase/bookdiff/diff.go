package bookdiff

import (
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/quantfeed/bookreplay/pkg/errors"
)

// Table is a loaded snapshot CSV keyed by its first column. Key order
// follows the file so reports stay stable across runs.
type Table struct {
	Path    string
	Headers []string
	Rows    map[string][]string
	Keys    []string
}

// Load reads a snapshot CSV into a Table. Blank lines are skipped and rows
// keep whatever field count they have; later rows win on duplicate keys.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewTracer("opening " + path).WithCode(errors.FeedOpenError).Wrap(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	t := &Table{
		Path: path,
		Rows: make(map[string][]string),
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, errors.NewTracer("reading " + path).WithCode(errors.FeedParseError).Wrap(err)
		}
		if t.Headers == nil {
			t.Headers = row
			continue
		}
		if len(row) == 0 {
			continue
		}
		key := row[0]
		if _, seen := t.Rows[key]; !seen {
			t.Keys = append(t.Keys, key)
		}
		t.Rows[key] = row
	}
}

// FieldDiff is one differing cell between two rows sharing a key.
type FieldDiff struct {
	Column string
	Left   string
	Right  string
}

// RowDiff is a keyed row present in both tables with differing content.
type RowDiff struct {
	Key    string
	Left   []string
	Right  []string
	Fields []FieldDiff
}

// Report is the outcome of a full two-table comparison.
type Report struct {
	HeadersEqual bool
	OnlyLeft     []string
	OnlyRight    []string
	Changed      []RowDiff
	Matching     int
}

// Compare performs the full comparison of two tables: header equality, keys
// unique to either side, and cell-level diffs for shared keys.
func Compare(left, right *Table) *Report {
	rep := &Report{
		HeadersEqual: slices.Equal(left.Headers, right.Headers),
	}

	for _, key := range left.Keys {
		rightRow, ok := right.Rows[key]
		if !ok {
			rep.OnlyLeft = append(rep.OnlyLeft, key)
			continue
		}
		leftRow := left.Rows[key]
		if slices.Equal(leftRow, rightRow) {
			rep.Matching++
			continue
		}
		rep.Changed = append(rep.Changed, diffRows(key, leftRow, rightRow, left.Headers))
	}

	for _, key := range right.Keys {
		if _, ok := left.Rows[key]; !ok {
			rep.OnlyRight = append(rep.OnlyRight, key)
		}
	}

	return rep
}

func diffRows(key string, left, right, headers []string) RowDiff {
	d := RowDiff{
		Key:   key,
		Left:  left,
		Right: right,
	}
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		if left[i] == right[i] {
			continue
		}
		name := "col_" + strconv.Itoa(i)
		if i < len(headers) {
			name = headers[i]
		}
		d.Fields = append(d.Fields, FieldDiff{Column: name, Left: left[i], Right: right[i]})
	}
	return d
}

// MembershipReport is the outcome of checking two tables' key combinations
// against a reference table.
type MembershipReport struct {
	RefCombinations int
	Found           [2]int
	NotFound        [2]int
	Missing         [2][]string
}

// Membership builds the combination set of the chosen columns from ref and
// checks every row of a and b against it.
func Membership(a, b, ref *Table, columns []int) *MembershipReport {
	set := make(map[string]struct{}, len(ref.Keys))
	for _, key := range ref.Keys {
		if combo := combine(ref.Rows[key], columns); combo != "" {
			set[combo] = struct{}{}
		}
	}

	rep := &MembershipReport{RefCombinations: len(set)}
	for i, t := range []*Table{a, b} {
		for _, key := range t.Keys {
			combo := combine(t.Rows[key], columns)
			if _, ok := set[combo]; ok {
				rep.Found[i]++
			} else {
				rep.NotFound[i]++
				rep.Missing[i] = append(rep.Missing[i], combo)
			}
		}
	}
	return rep
}

func combine(row []string, columns []int) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		if col < len(row) {
			parts = append(parts, row[col])
		}
	}
	return strings.Join(parts, "|")
}
