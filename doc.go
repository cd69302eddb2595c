// Package pedersen computes batched Pedersen commitments over column-oriented
// data, binding tables cryptographically without revealing them and updating
// commitments incrementally through the group homomorphism.
//
// The module splits into four layers:
//
//   - sequence normalizes caller columns (raw byte buffers of fixed element
//     width, typed scalars, or sparse index/value pairs) into scalar streams;
//   - curve enumerates the supported groups (ristretto255, BN254 G1,
//     BLS12-381 G1) behind a uniform Group/Point abstraction;
//   - backend pins the process to one compute engine, CPU by default or the
//     ICICLE GPU engine when built with the "icicle" tag, with exactly-once
//     initialization;
//   - compute validates batches, addresses generators from a deterministic
//     canonical stream (or caller-supplied slices) and dispatches the
//     multi-scalar multiplications.
//
// A minimal round trip:
//
//	data := []byte{0xd0, 0x07, 0x4c, 0x1d, 0x88, 0x13, 0xdc, 0x05} // u16 column
//	col, _ := sequence.NewDense(curve.RISTRETTO255, data, 2)
//	commitments := make([]compute.Commitment, 1)
//	_ = compute.ComputeCommitments(commitments, []*sequence.Sequence{col}, 0)
package pedersen
