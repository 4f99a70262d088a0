package bookdiff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadCSV(t *testing.T, name, content string) *Table {
	t.Helper()
	table, err := Load(writeCSV(t, name, content))
	require.NoError(t, err)
	return table
}

// Test 1: Loading keys rows by the first column
func TestLoad(t *testing.T) {
	table := loadCSV(t, "a.csv",
		"clockatarrival,transacttime,cvl\n"+
			"100,93000000,10\n"+
			"101,93000001,20\n")

	assert.Equal(t, []string{"clockatarrival", "transacttime", "cvl"}, table.Headers)
	assert.Equal(t, []string{"100", "101"}, table.Keys)
	assert.Equal(t, []string{"101", "93000001", "20"}, table.Rows["101"])
}

// Test 2: Compare finds unique keys on both sides
func TestCompare_UniqueKeys(t *testing.T) {
	left := loadCSV(t, "a.csv", "k,v\n1,a\n2,b\n")
	right := loadCSV(t, "b.csv", "k,v\n2,b\n3,c\n")

	rep := Compare(left, right)

	assert.True(t, rep.HeadersEqual)
	assert.Equal(t, []string{"1"}, rep.OnlyLeft)
	assert.Equal(t, []string{"3"}, rep.OnlyRight)
	assert.Equal(t, 1, rep.Matching)
	assert.Empty(t, rep.Changed)
}

// Test 3: Compare reports cell-level differences with column names
func TestCompare_ChangedCells(t *testing.T) {
	left := loadCSV(t, "a.csv", "k,price,qty\n1,10.00,5\n")
	right := loadCSV(t, "b.csv", "k,price,qty\n1,10.05,5\n")

	rep := Compare(left, right)

	require.Len(t, rep.Changed, 1)
	d := rep.Changed[0]
	assert.Equal(t, "1", d.Key)
	require.Len(t, d.Fields, 1)
	assert.Equal(t, FieldDiff{Column: "price", Left: "10.00", Right: "10.05"}, d.Fields[0])
}

// Test 4: Header mismatch is reported
func TestCompare_HeaderMismatch(t *testing.T) {
	left := loadCSV(t, "a.csv", "k,v\n1,a\n")
	right := loadCSV(t, "b.csv", "k,w\n1,a\n")

	rep := Compare(left, right)
	assert.False(t, rep.HeadersEqual)
}

// Test 5: Membership checks column combinations against a reference
func TestMembership(t *testing.T) {
	a := loadCSV(t, "a.csv", "c,t\n100,93000000\n101,93000001\n")
	b := loadCSV(t, "b.csv", "c,t\n100,93000000\n")
	ref := loadCSV(t, "ref.csv", "c,t\n100,93000000\n102,93000002\n")

	rep := Membership(a, b, ref, []int{0, 1})

	assert.Equal(t, 2, rep.RefCombinations)
	assert.Equal(t, 1, rep.Found[0])
	assert.Equal(t, 1, rep.NotFound[0])
	assert.Equal(t, []string{"101|93000001"}, rep.Missing[0])
	assert.Equal(t, 1, rep.Found[1])
	assert.Equal(t, 0, rep.NotFound[1])
}
