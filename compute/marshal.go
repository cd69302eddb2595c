package compute

import (
	"fmt"

	"github.com/consensys/pedersen/curve"
	"github.com/fxamacker/cbor/v2"
)

// Batch is a serializable set of commitments sharing one group, for callers
// that persist commitments or ship them to a verifier.
type Batch struct {
	Curve       curve.ID
	Commitments []Commitment
}

// MarshalBinary encodes the batch in canonical CBOR.
func (b *Batch) MarshalBinary() ([]byte, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(b)
}

// UnmarshalBinary decodes a batch and checks every commitment decompresses in
// the declared group, so a round-tripped batch never smuggles malformed
// points into an update.
func (b *Batch) UnmarshalBinary(data []byte) error {
	if err := cbor.Unmarshal(data, b); err != nil {
		return err
	}
	g := b.Curve.Group()
	if g == nil {
		return fmt.Errorf("unknown group %d", b.Curve)
	}
	for i, c := range b.Commitments {
		if len(c) == 0 {
			continue // identity shorthand, see UpdateCommitments
		}
		if _, err := g.Decompress(c); err != nil {
			return fmt.Errorf("commitment %d: %w", i, err)
		}
	}
	return nil
}
