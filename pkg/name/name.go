package name

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash"

	"github.com/ccnfwd/ccnfwd/pkg/ndnerr"
)

// Name is an ordered, immutable sequence of segments. The zero-length Name
// is the default route. Names are shared by reference: Slice never copies
// segment storage, only re-slices it.
//
// Cumulative prefix hashes are computed lazily and memoized per-length, the
// way the teacher's Name.PrefixHash computes a running xxhash digest over
// one segment at a time (std/encoding/name_pattern.go): two Names sharing a
// k-segment prefix always agree on CumulativeHash(k), because each step
// folds in only the newly appended segment's own encoding on top of the
// previous step's result.
type Name struct {
	segs []Segment

	mu       sync.Mutex
	hashes   []uint64 // hashes[k] = cumulative_hash(k), once computed
	computed []bool   // computed[k] reports whether hashes[k] is valid
}

// New constructs a Name from a sequence of segments. Segments are cloned on
// construction (see NewSegment) so the result is immutable even if the
// caller mutates their own slice afterward.
func New(segs ...Segment) *Name {
	cp := append([]Segment(nil), segs...)
	return &Name{segs: cp}
}

// Root is the default-route Name (zero segments).
func Root() *Name { return New() }

// SegmentCount returns the number of segments in the Name.
func (n *Name) SegmentCount() int {
	if n == nil {
		return 0
	}
	return len(n.segs)
}

// Segment returns the i-th segment. Out-of-range access is a programmer
// error, per spec.md 4.1, and panics.
func (n *Name) Segment(i int) Segment {
	return n.segs[i]
}

// Slice returns a new Name consisting of the first k segments, sharing the
// underlying segment storage by reference (no copy of segment bytes).
func (n *Name) Slice(k int) *Name {
	if k < 0 || k > len(n.segs) {
		panic("name: slice index out of range")
	}
	return &Name{segs: n.segs[:k:k]}
}

// StartsWith reports whether n has prefix as a prefix: n must be at least as
// long as prefix, and every segment of prefix must byte-equal the
// corresponding segment of n.
func (n *Name) StartsWith(prefix *Name) bool {
	if n.SegmentCount() < prefix.SegmentCount() {
		return false
	}
	for i := 0; i < prefix.SegmentCount(); i++ {
		if !n.segs[i].Equal(prefix.segs[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether n and o denote the same name. Reflexive, symmetric,
// transitive; the default route equals only itself.
func (n *Name) Equal(o *Name) bool {
	if n == o {
		return true
	}
	if n.SegmentCount() != o.SegmentCount() {
		return false
	}
	for i := range n.segs {
		if !n.segs[i].Equal(o.segs[i]) {
			return false
		}
	}
	return true
}

// Compare implements the canonical shortlex order: strictly shorter names
// sort before longer ones; equal-length names compare component-wise.
func (n *Name) Compare(o *Name) int {
	if len(n.segs) != len(o.segs) {
		if len(n.segs) < len(o.segs) {
			return -1
		}
		return 1
	}
	for i := range n.segs {
		if c := n.segs[i].Compare(o.segs[i]); c != 0 {
			return c
		}
	}
	return 0
}

var digestPool = sync.Pool{
	New: func() any { return xxhash.New() },
}

// CumulativeHash returns H over the first k segments, memoized: k=0 is
// defined as 0, and k>0 is H(segment_k, CumulativeHash(k-1)).
func (n *Name) CumulativeHash(k int) uint64 {
	if k < 0 || k > len(n.segs) {
		panic("name: cumulative hash index out of range")
	}
	if k == 0 {
		return 0
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.hashes == nil {
		n.hashes = make([]uint64, len(n.segs)+1)
		n.computed = make([]bool, len(n.segs)+1)
		n.computed[0] = true
	}
	if n.computed[k] {
		return n.hashes[k]
	}

	// Find the highest already-memoized prefix length <= k to resume from.
	start := 0
	for i := k; i >= 0; i-- {
		if n.computed[i] {
			start = i
			break
		}
	}

	d := digestPool.Get().(*xxhash.Digest)
	defer func() {
		d.Reset()
		digestPool.Put(d)
	}()

	h := n.hashes[start]
	var buf []byte
	for i := start; i < k; i++ {
		s := n.segs[i]
		need := s.EncodingLength()
		if cap(buf) < need {
			buf = make([]byte, need)
		}
		buf = buf[:need]
		encodeSegment(s, buf)

		d.Reset()
		d.Write(uint64Bytes(h))
		d.Write(buf)
		h = d.Sum64()

		n.hashes[i+1] = h
		n.computed[i+1] = true
	}
	return h
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
	return b
}

// encodeSegment writes the fixed 2-byte-type/2-byte-length TLV encoding of
// a segment into buf, which must be at least s.EncodingLength() bytes.
func encodeSegment(s Segment, buf []byte) {
	buf[0] = byte(s.Typ >> 8)
	buf[1] = byte(s.Typ)
	l := len(s.Val)
	buf[2] = byte(l >> 8)
	buf[3] = byte(l)
	copy(buf[4:], s.Val)
}

// FromWire parses a flat TLV-encoded name (a sequence of segment TLVs, no
// outer Name TL header) per spec.md 6.
func FromWire(buf []byte) (*Name, error) {
	var segs []Segment
	pos := 0
	for pos < len(buf) {
		if len(buf)-pos < 4 {
			return nil, ndnerr.ErrMalformedName{Reason: "truncated segment header"}
		}
		typ := SegmentType(uint16(buf[pos])<<8 | uint16(buf[pos+1]))
		length := int(uint16(buf[pos+2])<<8 | uint16(buf[pos+3]))
		pos += 4
		if length < 0 || pos+length > len(buf) {
			return nil, ndnerr.ErrMalformedName{Reason: "segment length exceeds buffer"}
		}
		if IsReservedInvalid(typ) {
			return nil, ndnerr.ErrMalformedName{Reason: "reserved-invalid segment type"}
		}
		segs = append(segs, NewSegment(typ, buf[pos:pos+length]))
		pos += length
	}
	return New(segs...), nil
}

// EncodingLength returns the total wire size of the name, excluding any
// outer Name TLV header.
func (n *Name) EncodingLength() int {
	total := 0
	for _, s := range n.segs {
		total += s.EncodingLength()
	}
	return total
}

// Bytes serializes the name to its flat TLV wire form.
func (n *Name) Bytes() []byte {
	buf := make([]byte, n.EncodingLength())
	pos := 0
	for _, s := range n.segs {
		l := s.EncodingLength()
		encodeSegment(s, buf[pos:pos+l])
		pos += l
	}
	return buf
}

// String renders the name as a '/'-separated URI, e.g. "/a/b".
func (n *Name) String() string {
	if n.SegmentCount() == 0 {
		return "/"
	}
	parts := make([]string, n.SegmentCount())
	for i, s := range n.segs {
		parts[i] = s.String()
	}
	return "/" + strings.Join(parts, "/")
}

// FromStr parses a human-readable "/a/b/c" URI into a Name of generic
// (TypeName) segments. Intended for tests, startup files, and CLI tools —
// not the wire codec.
func FromStr(s string) (*Name, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return Root(), nil
	}
	parts := strings.Split(s, "/")
	segs := make([]Segment, len(parts))
	for i, p := range parts {
		typ := TypeName
		val := p
		if eq := strings.IndexByte(p, '='); eq > 0 {
			if tv, err := strconv.ParseUint(p[:eq], 10, 16); err == nil {
				typ = SegmentType(tv)
				val = p[eq+1:]
			}
		}
		segs[i] = NewSegment(typ, []byte(val))
	}
	return New(segs...), nil
}
