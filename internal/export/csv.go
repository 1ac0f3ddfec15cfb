// Package export writes cycle plans and training maxes to files: one CSV per
// week, an XLSX workbook, and the JSON maxes dump.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/claude/liftcycle/internal/cycle"
)

// CSVHeader is the first row of every week file.
var CSVHeader = []string{"Exercise", "Percentile", "Weight", "Reps"}

// CycleDirPrefix prefixes the numbered per-cycle output directories.
const CycleDirPrefix = "cycle_"

// WriteWeekCSV writes one week of plan as CSV: a header, then three rows per
// lift in plan order.
func WriteWeekCSV(w io.Writer, wp cycle.WeekPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, ls := range wp.Lifts {
		for _, s := range ls.Sets {
			rec := []string{
				string(ls.Lift),
				strconv.Itoa(s.Percentile),
				s.Weight.StringFixed(2),
				s.Reps.String(),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("writing %s week %d: %w", ls.Lift, wp.Week, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// NextCycleDir returns the path of the next free cycle_N directory under
// base, where N is one more than the highest existing number.
func NextCycleDir(base string) (string, error) {
	entries, err := os.ReadDir(base)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading %s: %w", base, err)
	}
	highest := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), CycleDirPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), CycleDirPrefix))
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return filepath.Join(base, CycleDirPrefix+strconv.Itoa(highest+1)), nil
}

// WriteCycleCSVs creates the next cycle_N directory under base and writes
// week_1.csv .. week_4.csv into it. It returns the directory created.
func WriteCycleCSVs(base string, plan cycle.CyclePlan) (string, error) {
	dir, err := NextCycleDir(base)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	for _, wp := range plan.Weeks {
		path := filepath.Join(dir, fmt.Sprintf("week_%d.csv", wp.Week))
		f, err := os.Create(path)
		if err != nil {
			return dir, fmt.Errorf("creating %s: %w", path, err)
		}
		werr := WriteWeekCSV(f, wp)
		cerr := f.Close()
		if werr != nil {
			return dir, fmt.Errorf("writing %s: %w", path, werr)
		}
		if cerr != nil {
			return dir, fmt.Errorf("closing %s: %w", path, cerr)
		}
	}
	return dir, nil
}
