package mutcompact

import "context"

// ConsumeEndOfStream signals both consumers that no further fragments are
// coming. It stabilizes CurrentPartition so it keeps returning the last
// partition key seen even after the underlying fragment producer has been
// torn down.
func (s *CompactorState) ConsumeEndOfStream(ctx context.Context, consumer MainConsumer, gc GCConsumer) error {
	if s.dk != nil {
		s.lastDK = *s.dk
		s.dk = &s.lastDK
	}
	if err := gc.ConsumeEndOfStream(ctx); err != nil {
		return faultf(err, "compactor: gc consumer rejected end of stream")
	}
	if err := consumer.ConsumeEndOfStream(ctx); err != nil {
		return faultf(err, "compactor: main consumer rejected end of stream")
	}
	return nil
}
