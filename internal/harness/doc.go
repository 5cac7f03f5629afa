// Package harness runs enumeration scenarios against a fresh link store.
//
// # Scenario Format
//
// Scenarios are YAML or CUE files:
//
//	name: xyx
//	description: "three tokens, two shapes"
//	backend: sqlite
//	leaves: [x, y]
//	sequence: [x, y, x]
//	render:
//	  element: point
//	  index: false
//	expect:
//	  count: 2
//	  renders: ["(x (y x))", "((x y) x)"]
//	  links: 6
//
// Leaves become named points in the order listed, so a scenario always
// sees the same indexes. When leaves is omitted it is derived from the
// sequence in order of first appearance. Renders use leaf names as labels.
//
// expect.error names an enumeration error code (for example
// CAPACITY_EXCEEDED) that the scenario must end with.
//
// # Deterministic Testing
//
// Every Run opens a volatile store, so results depend only on the
// scenario. Golden snapshots live in testdata/golden:
//
//	go test ./internal/harness -update
package harness
