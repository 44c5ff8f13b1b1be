package mutcompact

import (
	"github.com/cockroachdb/errors"

	"github.com/sarvex/mutcompact/internal/invariants"
)

// assertf panics with an AssertionFailedf error when built with the
// "invariants" or "race" tags. It is used for fatal, programming-error
// conditions (clustering rows out of order, a consume call before
// ConsumeNewPartition or on a faulted state, ConsumeNewPartition
// mid-partition) that a correct caller can never trigger, so they are not
// worth paying for in production builds. Feeding after a latched stop
// without repaging and a static row after a clustering row are not
// asserted.
func assertf(cond bool, format string, args ...interface{}) {
	if !invariants.Enabled || cond {
		return
	}
	panic(errors.AssertionFailedf(format, args...))
}

// faultf wraps an error returned by a collaborator (schema, oracle,
// consumer) with context before it is propagated to the caller. Unlike
// assertf this always runs: collaborator failures are expected and must be
// reported, not asserted away.
func faultf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
