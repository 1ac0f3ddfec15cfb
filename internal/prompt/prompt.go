// Package prompt asks a lifter for one set per lift on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/shopspring/decimal"
)

// ErrNoInput is returned when input ends before every answer was given.
var ErrNoInput = errors.New("input closed")

// Reader handles interactive prompts.
type Reader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewReader creates a Reader reading answers from in and writing prompts to out.
func NewReader(in io.Reader, out io.Writer) *Reader {
	return &Reader{scanner: bufio.NewScanner(in), out: out}
}

// readLine reads a line of input from the user
func (r *Reader) readLine() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(r.scanner.Text()), nil
}

// readWeight asks until a positive decimal is entered.
func (r *Reader) readWeight(prompt string) (decimal.Decimal, error) {
	for {
		fmt.Fprint(r.out, prompt)
		input, err := r.readLine()
		if err != nil {
			return decimal.Decimal{}, err
		}
		val, err := decimal.NewFromString(input)
		if err != nil || !val.IsPositive() {
			fmt.Fprintln(r.out, "Please enter a valid positive number.")
			continue
		}
		return val, nil
	}
}

// readReps asks until a whole number of reps is entered.
func (r *Reader) readReps(prompt string) (int, error) {
	for {
		fmt.Fprint(r.out, prompt)
		input, err := r.readLine()
		if err != nil {
			return 0, err
		}
		val, err := strconv.Atoi(input)
		if err != nil || val < 1 {
			fmt.Fprintln(r.out, "Please enter a whole number of reps.")
			continue
		}
		return val, nil
	}
}

// Performance asks for the weight and reps of one set of lift.
func (r *Reader) Performance(lift cycle.Lift) (cycle.Performance, error) {
	w, err := r.readWeight(fmt.Sprintf("What weight [%s]?: ", lift))
	if err != nil {
		return cycle.Performance{}, err
	}
	reps, err := r.readReps("How many reps?: ")
	if err != nil {
		return cycle.Performance{}, err
	}
	return cycle.Performance{Weight: w, Reps: reps}, nil
}

// Performances asks for one set of every lift in order.
func (r *Reader) Performances(lifts []cycle.Lift) (map[cycle.Lift]cycle.Performance, error) {
	perfs := make(map[cycle.Lift]cycle.Performance, len(lifts))
	for _, l := range lifts {
		p, err := r.Performance(l)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", l, err)
		}
		perfs[l] = p
	}
	return perfs, nil
}
