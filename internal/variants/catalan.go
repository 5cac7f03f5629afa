package variants

import "fmt"

// MaxSequenceLen is the longest sequence whose variant count is tabulated.
const MaxSequenceLen = len(catalanTable)

// catalanTable holds C(0) through C(24).
var catalanTable = [...]uint64{
	1,
	1,
	2,
	5,
	14,
	42,
	132,
	429,
	1430,
	4862,
	16796,
	58786,
	208012,
	742900,
	2674440,
	9694845,
	35357670,
	129644790,
	477638700,
	1767263190,
	6564120420,
	24466267020,
	91482563640,
	343059613650,
	1289904147324,
}

// Catalan returns the n-th Catalan number. It fails with
// ErrCapacityExceeded when n is outside the table.
func Catalan(n int) (uint64, error) {
	if n < 0 || n >= len(catalanTable) {
		return 0, fmt.Errorf("catalan(%d): %w", n, ErrCapacityExceeded)
	}
	return catalanTable[n], nil
}

// Count returns the number of variants Enumerate produces for a sequence
// of length n.
func Count(n int) (uint64, error) {
	if n < 1 {
		return 0, &EnumerationError{Code: ErrCodeEmptySequence, Message: "sequence is empty"}
	}
	if n == 1 {
		return 1, nil
	}
	c, err := Catalan(n - 1)
	if err != nil {
		return 0, &EnumerationError{
			Code:    ErrCodeCapacityExceeded,
			Message: fmt.Sprintf("no variant count for sequence length %d", n),
			Err:     err,
		}
	}
	return c, nil
}
