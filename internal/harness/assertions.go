package harness

import (
	"fmt"
)

// EvaluateExpect checks a result against the expectations and returns a
// message for every mismatch.
func EvaluateExpect(r *Result, e Expect) []string {
	var errs []string

	if e.Error != r.ErrorCode {
		switch {
		case e.Error == "":
			errs = append(errs, fmt.Sprintf("unexpected enumeration error %s", r.ErrorCode))
		case r.ErrorCode == "":
			errs = append(errs, fmt.Sprintf("expected enumeration error %s, got none", e.Error))
		default:
			errs = append(errs, fmt.Sprintf("expected enumeration error %s, got %s", e.Error, r.ErrorCode))
		}
	}

	if e.Count != nil && *e.Count != r.Count {
		errs = append(errs, fmt.Sprintf("count: expected %d variants, got %d", *e.Count, r.Count))
	}

	if e.Renders != nil {
		if len(e.Renders) != len(r.Renders) {
			errs = append(errs, fmt.Sprintf("renders: expected %d, got %d", len(e.Renders), len(r.Renders)))
		} else {
			for i := range e.Renders {
				if e.Renders[i] != r.Renders[i] {
					errs = append(errs, fmt.Sprintf("renders[%d]: expected %q, got %q", i, e.Renders[i], r.Renders[i]))
				}
			}
		}
	}

	if e.Links != nil && *e.Links != r.Links {
		errs = append(errs, fmt.Sprintf("links: expected %d stored, got %d", *e.Links, r.Links))
	}

	return errs
}
