package peered

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned when a peered call names a node or
// relationship type that has not been registered process-wide.
var ErrUnknownType = errors.New("peered: unknown type")

// PartialFailureError reports that a fan-out call succeeded on some shards
// and failed on others (spec §7: "the surfaced kind describes the most
// severe sub-error"). Failed lists the shard ids whose sub-call did not
// succeed.
type PartialFailureError struct {
	Severest error
	Failed   []uint16
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("peered: partial failure on shards %v: %v", e.Failed, e.Severest)
}

func (e *PartialFailureError) Unwrap() error { return e.Severest }
