package storage

import (
	"errors"
	"fmt"
)

// AnyBase makes SaveCycles append after whatever cycle is currently latest.
const AnyBase = -1

// ErrStaleBase is returned by SaveCycles when the latest stored cycle is not
// the one the caller computed from. Nothing is written in that case.
var ErrStaleBase = errors.New("latest cycle changed since it was read")

func checkBase(latest, base int) error {
	if base != AnyBase && latest != base {
		return fmt.Errorf("%w: expected latest cycle %d, found %d", ErrStaleBase, base, latest)
	}
	return nil
}
