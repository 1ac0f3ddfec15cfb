package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/shopspring/decimal"
)

// IndexKey is the optional per-entry cycle number in the maxes dump.
const IndexKey = "index"

// IndexedMaxes is one entry of the maxes dump.
type IndexedMaxes struct {
	Index         int
	TrainingMaxes cycle.TrainingMaxSet
}

// EncodeMaxes writes entries as a JSON array of objects mapping lift name to
// training max, each with an "index" field when Index is non-zero. Maxes are
// written as bare JSON numbers with their exact decimal digits.
func EncodeMaxes(w io.Writer, entries []IndexedMaxes) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, e := range entries {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		first := true
		if e.Index != 0 {
			fmt.Fprintf(&buf, "%q: %d", IndexKey, e.Index)
			first = false
		}
		for _, l := range e.TrainingMaxes.Lifts() {
			if !first {
				buf.WriteString(", ")
			}
			first = false
			name, err := json.Marshal(string(l))
			if err != nil {
				return fmt.Errorf("encoding lift name: %w", err)
			}
			buf.Write(name)
			buf.WriteString(": ")
			buf.WriteString(e.TrainingMaxes[l].String())
		}
		buf.WriteString("}")
	}
	if len(entries) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// DecodeMaxes reads a maxes dump. The "index" field is discarded. Lift names
// must be known lifts (matched case-insensitively) and appear at most once
// per entry; values may be JSON numbers or numeric strings and are parsed as
// exact decimals.
func DecodeMaxes(r io.Reader) ([]cycle.TrainingMaxSet, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	out := make([]cycle.TrainingMaxSet, 0)
	for i := 0; dec.More(); i++ {
		set, err := decodeEntry(dec)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		out = append(out, set)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeEntry reads one object of the dump field by field, so a lift given
// twice is seen instead of silently replaced.
func decodeEntry(dec *json.Decoder) (cycle.TrainingMaxSet, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	set := make(cycle.TrainingMaxSet)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: decoding maxes: %v", cycle.ErrValidation, err)
		}
		key, _ := tok.(string)
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("%w: decoding maxes: %v", cycle.ErrValidation, err)
		}
		if key == IndexKey {
			continue
		}
		lift, err := cycle.ParseLift(key)
		if err != nil {
			return nil, err
		}
		if _, dup := set[lift]; dup {
			return nil, fmt.Errorf("%w: lift %s given more than once", cycle.ErrValidation, lift)
		}
		var d decimal.Decimal
		if err := d.UnmarshalJSON(val); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", cycle.ErrValidation, key, err)
		}
		set[lift] = d
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: decoding maxes: %v", cycle.ErrValidation, err)
	}
	if got, ok := tok.(json.Delim); !ok || got != want {
		return fmt.Errorf("%w: decoding maxes: expected %s, found %v", cycle.ErrValidation, want, tok)
	}
	return nil
}
