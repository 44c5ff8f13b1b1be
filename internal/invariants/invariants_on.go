//go:build invariants || race

package invariants

// Enabled is true if the binary was built with the "invariants" or "race"
// build tags.
const Enabled = true
