package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/quantfeed/bookreplay/internal/usecase/bookdiff"
	"github.com/quantfeed/bookreplay/pkg/logger"
)

// bookdiff compares snapshot CSVs. With two files it runs the full keyed
// comparison; with three, it checks the first two files' (clockatarrival,
// transacttime) combinations against the third.
func main() {
	if len(os.Args) != 3 && len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "usage: %s left.csv right.csv [reference.csv]\n", os.Args[0])
		os.Exit(1)
	}

	logg, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	tables := make([]*bookdiff.Table, 0, 3)
	for _, path := range os.Args[1:] {
		t, err := bookdiff.Load(path)
		if err != nil {
			logg.Error(err, logger.Field{Key: "path", Value: path})
			os.Exit(1)
		}
		tables = append(tables, t)
	}

	if len(tables) == 2 {
		printCompare(tables[0], tables[1])
		return
	}
	printMembership(tables[0], tables[1], tables[2])
}

func printCompare(left, right *bookdiff.Table) {
	rep := bookdiff.Compare(left, right)

	fmt.Printf("File 1 (%s) rows: %d\n", left.Path, len(left.Keys))
	fmt.Printf("File 2 (%s) rows: %d\n", right.Path, len(right.Keys))

	if rep.HeadersEqual {
		fmt.Println("Headers are the same")
	} else {
		fmt.Println("Headers are different!")
		fmt.Printf("File 1 headers: %s\n", strings.Join(left.Headers, ","))
		fmt.Printf("File 2 headers: %s\n", strings.Join(right.Headers, ","))
	}

	fmt.Println("\n--- Records in File 1 but not in File 2 ---")
	printKeys(rep.OnlyLeft)

	fmt.Println("\n--- Records in File 2 but not in File 1 ---")
	printKeys(rep.OnlyRight)

	fmt.Println("\n--- Records in both files but with different content ---")
	if len(rep.Changed) == 0 {
		fmt.Println("None")
	}
	for _, d := range rep.Changed {
		fmt.Printf("ID: %s\n", d.Key)
		for _, fd := range d.Fields {
			fmt.Printf("    Different column [%s]: %q vs %q\n", fd.Column, fd.Left, fd.Right)
		}
	}

	fmt.Println("\n--- Comparison Summary ---")
	fmt.Printf("Records unique to File 1: %d\n", len(rep.OnlyLeft))
	fmt.Printf("Records unique to File 2: %d\n", len(rep.OnlyRight))
	fmt.Printf("Records with differences: %d\n", len(rep.Changed))
	fmt.Printf("Perfectly matching records: %d\n", rep.Matching)
}

func printMembership(a, b, ref *bookdiff.Table) {
	rep := bookdiff.Membership(a, b, ref, []int{0, 1})

	fmt.Printf("Unique combinations in reference: %d\n", rep.RefCombinations)
	for i, t := range []*bookdiff.Table{a, b} {
		fmt.Printf("\n--- Checking records from %s ---\n", t.Path)
		for _, combo := range rep.Missing[i] {
			fmt.Printf("  [NOT FOUND] %s\n", combo)
		}
		fmt.Printf("Found %d, Not found %d\n", rep.Found[i], rep.NotFound[i])
	}
}

func printKeys(keys []string) {
	if len(keys) == 0 {
		fmt.Println("None")
		return
	}
	for _, key := range keys {
		fmt.Printf("ID: %s\n", key)
	}
}
