package graph

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrExtractionFailed is wrapped by every per-chunk failure.
	ErrExtractionFailed = errors.New("chunk extraction failed")
	// ErrTotalExtractionFailure means no chunk of a run produced a graph.
	ErrTotalExtractionFailure = errors.New("all chunks failed extraction")
	// ErrNoChunks is returned when a run is started without any chunk.
	ErrNoChunks = errors.New("no chunks to extract")

	// ErrGraphIntegrity is wrapped by every unrepairable graph condition.
	ErrGraphIntegrity = errors.New("graph integrity violated")
	ErrEmptyGraph     = errors.New("graph has no nodes")
	// ErrDuplicateNodeID means two nodes share an id.
	ErrDuplicateNodeID = errors.New("duplicate node id")
	// ErrDanglingReference is only reported by Validate; ValidateAndRepair
	// removes such relationships instead.
	ErrDanglingReference = errors.New("relationship references unknown node")
)

// ExtractionFailure records why a single chunk produced no graph.
// Chunk is 1-based.
type ExtractionFailure struct {
	Chunk  int
	Reason error
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("chunk %d: %v", e.Chunk, e.Reason)
}

func (e *ExtractionFailure) Unwrap() []error {
	return []error{ErrExtractionFailed, e.Reason}
}

// TotalExtractionFailure is returned by Run when every chunk failed.
type TotalExtractionFailure struct {
	Failures []*ExtractionFailure

	merr *multierror.Error
}

func newTotalExtractionFailure(failures []*ExtractionFailure) *TotalExtractionFailure {
	var merr *multierror.Error
	for _, f := range failures {
		merr = multierror.Append(merr, f)
	}
	if merr != nil {
		merr.ErrorFormat = func(errs []error) string {
			msg := fmt.Sprintf("%s (%d chunks)", ErrTotalExtractionFailure, len(errs))
			for _, err := range errs {
				msg += "\n\t* " + err.Error()
			}
			return msg
		}
	}
	return &TotalExtractionFailure{Failures: failures, merr: merr}
}

func (e *TotalExtractionFailure) Error() string {
	if e.merr == nil {
		return ErrTotalExtractionFailure.Error()
	}
	return e.merr.Error()
}

func (e *TotalExtractionFailure) Unwrap() []error {
	errs := []error{ErrTotalExtractionFailure}
	if e.merr != nil {
		errs = append(errs, e.merr.WrappedErrors()...)
	}
	return errs
}

// GraphIntegrityError reports a graph that cannot be repaired.
// Kind is ErrEmptyGraph, ErrDuplicateNodeID or ErrDanglingReference.
type GraphIntegrityError struct {
	Kind   error
	NodeID string
}

func (e *GraphIntegrityError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: %s %q", ErrGraphIntegrity, e.Kind, e.NodeID)
	}
	return fmt.Sprintf("%s: %s", ErrGraphIntegrity, e.Kind)
}

func (e *GraphIntegrityError) Unwrap() []error {
	return []error{ErrGraphIntegrity, e.Kind}
}
