// Command benchmark_parser turns `go test -bench` output for the allocator
// into a markdown report comparing checked and unchecked mode.
//
//	go test -bench . -benchmem ./rt/rc | go run ./scripts -output bench.md
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Mode        string // "checked", "unchecked" or "" for unsplit benchmarks
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs the two modes of one operation.
type ComparisonResult struct {
	Operation       string
	CheckedNs       float64
	UncheckedNs     float64
	Overhead        float64 // CheckedNs / UncheckedNs
	CheckedAllocs   int64
	UncheckedAllocs int64
	SingleMode      bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// Regex to parse benchmark output lines
// BenchmarkRetainRelease/checked-8    10000000    24.5 ns/op    0 B/op    0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	report := generateMarkdownReport(generateComparisons(results), time.Now())

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	for scanner.Scan() {
		line := scanner.Text()

		// Lines from `go test -json` carry the text in Output.
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		r := BenchmarkResult{Name: matches[1]}
		r.Iterations, _ = strconv.Atoi(matches[2])
		r.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		// Format: Benchmark<Operation>[/<mode>]-<procs>
		name := trimProcs(r.Name)
		op, mode, _ := strings.Cut(name, "/")
		r.Operation = strings.TrimPrefix(op, "Benchmark")
		r.Mode = mode

		results = append(results, r)
	}

	return results
}

// trimProcs removes the -N GOMAXPROCS suffix.
func trimProcs(name string) string {
	if i := strings.LastIndex(name, "-"); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			return name[:i]
		}
	}
	return name
}

func generateComparisons(results []BenchmarkResult) []ComparisonResult {
	grouped := make(map[string]map[string]BenchmarkResult)
	for _, r := range results {
		if grouped[r.Operation] == nil {
			grouped[r.Operation] = make(map[string]BenchmarkResult)
		}
		grouped[r.Operation][r.Mode] = r
	}

	var comparisons []ComparisonResult
	for op, modes := range grouped {
		checked, hasChecked := modes["checked"]
		unchecked, hasUnchecked := modes["unchecked"]

		switch {
		case hasChecked && hasUnchecked:
			comparisons = append(comparisons, ComparisonResult{
				Operation:       op,
				CheckedNs:       checked.NsPerOp,
				UncheckedNs:     unchecked.NsPerOp,
				Overhead:        checked.NsPerOp / unchecked.NsPerOp,
				CheckedAllocs:   checked.AllocsPerOp,
				UncheckedAllocs: unchecked.AllocsPerOp,
			})
		default:
			for _, r := range modes {
				comparisons = append(comparisons, ComparisonResult{
					Operation:     strings.TrimSuffix(op+"/"+r.Mode, "/"),
					CheckedNs:     r.NsPerOp,
					CheckedAllocs: r.AllocsPerOp,
					SingleMode:    true,
				})
			}
		}
	}

	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].Operation < comparisons[j].Operation
	})
	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Allocator Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	sb.WriteString("| Operation | checked (ns/op) | unchecked (ns/op) | Overhead | Allocs |\n")
	sb.WriteString("|-----------|-----------------|-------------------|----------|--------|\n")

	for _, c := range comparisons {
		if c.SingleMode {
			fmt.Fprintf(&sb, "| %s | %s | *N/A* | *N/A* | %s |\n",
				c.Operation, formatNs(c.CheckedNs), humanize.Comma(c.CheckedAllocs))
			continue
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %.2fx | %s vs %s |\n",
			c.Operation,
			formatNs(c.CheckedNs),
			formatNs(c.UncheckedNs),
			c.Overhead,
			humanize.Comma(c.CheckedAllocs),
			humanize.Comma(c.UncheckedAllocs),
		)
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- **Overhead**: cost of handle validation, checked time over unchecked time\n")
	sb.WriteString("- **Allocs**: Go heap allocations per operation, fewer is better\n")
	return sb.String()
}

func formatNs(ns float64) string {
	return humanize.CommafWithDigits(ns, 2)
}
