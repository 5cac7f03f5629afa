package harness

// Result holds the outcome of a scenario run.
type Result struct {
	// Pass indicates every expectation held.
	Pass bool `json:"pass"`

	// Scenario and Backend identify the run.
	Scenario string `json:"scenario"`
	Backend  string `json:"backend"`

	// Count is the number of variants enumerated.
	Count int `json:"count"`

	// Renders holds the deep rendering of each variant, in result order.
	Renders []string `json:"renders"`

	// Links is the number of stored links after the run.
	Links int64 `json:"links"`

	// ErrorCode is the enumeration error code, if the enumeration failed.
	ErrorCode string `json:"error,omitempty"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario, backend string) *Result {
	return &Result{
		Pass:     true,
		Scenario: scenario,
		Backend:  backend,
		Renders:  []string{},
		Errors:   []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
