package codec

import "golang.org/x/crypto/blake2b"

// H32 is a 32-byte digest, as produced by Blake2b-256.
type H32 [32]byte

// H64 is a 64-byte digest, as produced by Blake2b-512.
type H64 [64]byte

// Blake2b256 returns the Blake2b-256 digest of b.
func Blake2b256(b []byte) H32 {
	return H32(blake2b.Sum256(b))
}

// Blake2b512 returns the Blake2b-512 digest of b.
func Blake2b512(b []byte) H64 {
	return H64(blake2b.Sum512(b))
}

// BlakeMany returns the sequence of Blake2b-256 digests of each encoded
// element, per spec §4.1 ("Hash list → blake_many"). Callers encode each
// element of a composite object with its own element encoder, then pass
// the resulting byte slices here.
func BlakeMany(encodedElements [][]byte) []H32 {
	out := make([]H32, len(encodedElements))
	for i, e := range encodedElements {
		out[i] = Blake2b256(e)
	}
	return out
}

// EncodeHashSeq encodes a Seq<H32> (used for blake_many's output and for
// recent-history report-hash lists).
func EncodeHashSeq(w *Writer, hashes []H32) {
	WriteSeq(w, hashes, func(w *Writer, h H32) { w.WriteBytes(h[:]) })
}

// DecodeHashSeq decodes a Seq<H32>.
func DecodeHashSeq(r *Reader) ([]H32, error) {
	return ReadSeq(r, func(r *Reader) (H32, error) {
		b, err := r.ReadBytes(32)
		if err != nil {
			return H32{}, err
		}
		var h H32
		copy(h[:], b)
		return h, nil
	})
}
