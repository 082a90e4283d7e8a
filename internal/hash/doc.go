// Package hash provides fast non-cryptographic hashing for decoder state.
//
// All hashes use xxHash64 (github.com/cespare/xxhash/v2):
//
//   - Path signatures identify a materialized trellis path by the sequence
//     of hypotheses it visits, so duplicates can be rejected in O(1).
//   - Key hashes turn cache keys into fixed-size identifiers.
//
// # Usage
//
//	d := hash.NewDigest()
//	d.AddUint32(7)
//	d.AddUint32(3)
//	sig := d.Sum64()
package hash
