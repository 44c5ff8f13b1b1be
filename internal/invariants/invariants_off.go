//go:build !invariants && !race

package invariants

// Enabled is true if the binary was built with the "invariants" or "race"
// build tags. Debug-only assertions in the compactor are gated behind it so
// production builds don't pay for checks that can never legitimately fail.
const Enabled = false
