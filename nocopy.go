package mutcompact

// noCopy is embedded in CompactorState to make `go vet -copylocks` flag any
// accidental copy of the struct. The source system's compactor state
// captures `this` in a predicate closure and therefore cannot move after
// construction; the Go rewrite has no such closure (canGC takes the state
// explicitly, see state_purge.go) but the type is still meant to be
// allocated once and only ever referenced through *CompactorState.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
