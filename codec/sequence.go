package codec

import "sort"

// WriteSeq encodes a Seq<T>: encode_nat(n) || concat(encode_T(t_i)).
func WriteSeq[T any](w *Writer, items []T, encode func(*Writer, T)) {
	w.WriteNat(uint64(len(items)))
	for _, item := range items {
		encode(w, item)
	}
}

// ReadSeq decodes a Seq<T> using the supplied element decoder. An empty
// sequence decodes to a nil slice, matching the nil slices the encoders
// are usually handed for empty fields.
func ReadSeq[T any](r *Reader, decode func(*Reader) (T, error)) ([]T, error) {
	n, err := r.ReadNat()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	items := make([]T, 0, n)
	for i := uint64(0); i < n; i++ {
		item, err := decode(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ReadSeqExact decodes a Seq<T> and rejects any length other than want
// (used for fixed-length vectors such as the N_val-sized validator sets).
func ReadSeqExact[T any](r *Reader, want int, decode func(*Reader) (T, error)) ([]T, error) {
	items, err := ReadSeq(r, decode)
	if err != nil {
		return nil, err
	}
	if len(items) != want {
		return nil, &ErrLengthMismatch{Expected: want, Found: len(items)}
	}
	return items, nil
}

// WriteOpt encodes Opt<T>: tag 0 for nil, 1 || encode_T(v) otherwise.
func WriteOpt[T any](w *Writer, v *T, encode func(*Writer, T)) {
	if v == nil {
		w.WriteByte(0)
		return
	}
	w.WriteByte(1)
	encode(w, *v)
}

// ReadOpt decodes Opt<T>.
func ReadOpt[T any](r *Reader, decode func(*Reader) (T, error)) (*T, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		v, err := decode(r)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, &ErrUnknownTag{Tag: tag}
	}
}

// MapEntry is one (already key-encoded, value) pair of a Map<K,V> prior to
// canonical sort.
type MapEntry[V any] struct {
	KeyBytes []byte
	Value    V
}

// WriteMap encodes Map<K,V> as a sequence of (K,V) pairs sorted by the
// lexicographic order of the caller-supplied key encoding, per spec §4.1.
// entries is mutated (sorted) in place.
func WriteMap[V any](w *Writer, entries []MapEntry[V], encodeValue func(*Writer, V)) {
	sort.Slice(entries, func(i, j int) bool {
		return lessBytes(entries[i].KeyBytes, entries[j].KeyBytes)
	})
	w.WriteNat(uint64(len(entries)))
	for _, e := range entries {
		w.WriteBytes(e.KeyBytes)
		encodeValue(w, e.Value)
	}
}

// ReadMap decodes Map<K,V> into an ordered slice of (K,V) pairs, preserving
// the canonical key order found on the wire.
func ReadMap[K any, V any](r *Reader, decodeKey func(*Reader) (K, error), decodeValue func(*Reader) (V, error)) ([]MapEntry[V], []K, error) {
	n, err := r.ReadNat()
	if err != nil {
		return nil, nil, err
	}
	keys := make([]K, 0, n)
	vals := make([]MapEntry[V], 0, n)
	for i := uint64(0); i < n; i++ {
		k, err := decodeKey(r)
		if err != nil {
			return nil, nil, err
		}
		v, err := decodeValue(r)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, k)
		vals = append(vals, MapEntry[V]{Value: v})
	}
	return vals, keys, nil
}

func lessBytes(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
