package codec

// Writer accumulates bytes for the canonical encoding rules in spec §4.1.
// It is the generalization of the teacher's utils/wrappers.Packer: where
// Packer always packs big-endian fixed-width fields, Writer additionally
// supports GP's little-endian fixed-width integers and its variable-length
// natural number scheme.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with cap pre-allocated as a hint.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes appends raw bytes with no length prefix.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteFixed writes n as a little-endian, zero-padded integer occupying
// exactly width bytes (encode_fixed(n, width) in spec §4.1).
func (w *Writer) WriteFixed(n uint64, width int) {
	for i := 0; i < width; i++ {
		w.buf = append(w.buf, byte(n>>(8*uint(i))))
	}
}

// WriteBool writes a boolean as a single byte, 0 or 1.
func (w *Writer) WriteBool(b bool) {
	if b {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

// WriteNat writes n using the canonical variable-length natural encoding
// (GP eqs 29-37): a single prefix byte whose leading unary run of 1-bits
// (0 through 8 of them) selects how many little-endian octets follow.
func (w *Writer) WriteNat(n uint64) {
	w.buf = appendNat(w.buf, n)
}

// WriteBlob writes var{seq(x)} for a raw byte string: encode_nat(|x|) || x.
func (w *Writer) WriteBlob(b []byte) {
	w.WriteNat(uint64(len(b)))
	w.WriteBytes(b)
}
