package codec

// appendNat implements the write side of the canonical variable-length
// natural number encoding described in spec §4.1.
//
// For a value x, let l be the smallest integer in [0,8] such that
// x < 2^(7*(l+1)) (l=8 covers the remaining range up to 2^64-1). The
// encoding is one prefix byte followed by l little-endian octets:
//
//	prefix = (l leading 1-bits, then a 0 separator bit, then the high
//	          (7-l) bits of x) , for l in [0,7]
//	prefix = 0xFF                                         , for l = 8
//
// followed by floor(x / 256^0) .. the low 8*l bits of x, little-endian.
// l=0 degenerates to a single byte equal to x (x < 128). This scheme is
// canonical: each value has exactly one valid (minimal-l) encoding.
func appendNat(buf []byte, x uint64) []byte {
	l := natLength(x)
	if l == 8 {
		buf = append(buf, 0xFF)
		for i := 0; i < 8; i++ {
			buf = append(buf, byte(x>>(8*uint(i))))
		}
		return buf
	}
	mask := byte(0xFF << uint(8-l))
	high := byte(x >> uint(8*l))
	buf = append(buf, mask+high)
	for i := 0; i < l; i++ {
		buf = append(buf, byte(x>>(8*uint(i))))
	}
	return buf
}

// natLength returns the minimal number of trailing octets (0..8) required
// to encode x canonically.
func natLength(x uint64) int {
	for l := 0; l < 8; l++ {
		if x < natBound(l) {
			return l
		}
	}
	return 8
}

// natBound returns 2^(7*(l+1)), the exclusive upper bound representable
// with l trailing octets.
func natBound(l int) uint64 {
	return uint64(1) << uint(7*(l+1))
}

// readNat implements the read side, rejecting non-canonical and truncated
// encodings.
func readNat(buf []byte) (value uint64, consumed int, err error) {
	if len(buf) < 1 {
		return 0, 0, ErrTruncated
	}
	prefix := buf[0]
	if prefix == 0xFF {
		if len(buf) < 9 {
			return 0, 0, ErrTruncated
		}
		var v uint64
		for i := 0; i < 8; i++ {
			v |= uint64(buf[1+i]) << (8 * uint(i))
		}
		if v < natBound(7) {
			return 0, 0, ErrNonCanonicalNat
		}
		return v, 9, nil
	}

	l := leadingOnes(prefix)
	if len(buf) < 1+l {
		return 0, 0, ErrTruncated
	}
	highMask := byte(0xFF >> uint(l+1))
	high := uint64(prefix & highMask)
	var low uint64
	for i := 0; i < l; i++ {
		low |= uint64(buf[1+i]) << (8 * uint(i))
	}
	v := (high << uint(8*l)) | low
	if l > 0 && v < natBound(l-1) {
		return 0, 0, ErrNonCanonicalNat
	}
	return v, 1 + l, nil
}

// leadingOnes counts the number of leading 1-bits in b (0 through 8).
func leadingOnes(b byte) int {
	n := 0
	for i := 7; i >= 0; i-- {
		if b&(1<<uint(i)) == 0 {
			break
		}
		n++
	}
	return n
}
