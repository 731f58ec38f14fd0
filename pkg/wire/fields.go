package wire

import "errors"

var errShortHeader = errors.New("wire: buffer shorter than fixed header")

// FieldType is the 2-byte type tag of a top-level TLV field, per spec.md 6.
type FieldType uint16

const (
	FieldName                         FieldType = 0x0000
	FieldKeyIdRestriction              FieldType = 0x0001
	FieldContentObjectHashRestriction   FieldType = 0x0002
	FieldInterestLifetime             FieldType = 0x0003
	FieldExpiryTime                   FieldType = 0x0004
	FieldRecommendedCacheTime         FieldType = 0x0005
)

// field is one parsed top-level TLV field: type, raw value bytes.
type field struct {
	typ FieldType
	val []byte
}

// walkFields parses buf (the packet body, after the fixed header) into a
// sequence of top-level TLV fields, each {type(2), length(2), value}, big
// endian. This is a flat walk with no recursion: the forwarder only cares
// about top-level fields and treats every field's value as an opaque byte
// string (Name parsing happens separately via name.FromWire on the Name
// field's value).
func walkFields(buf []byte) ([]field, error) {
	var out []field
	pos := 0
	for pos < len(buf) {
		if len(buf)-pos < 4 {
			return nil, errTruncatedField
		}
		typ := FieldType(uint16(buf[pos])<<8 | uint16(buf[pos+1]))
		length := int(uint16(buf[pos+2])<<8 | uint16(buf[pos+3]))
		pos += 4
		if pos+length > len(buf) {
			return nil, errTruncatedField
		}
		out = append(out, field{typ: typ, val: buf[pos : pos+length]})
		pos += length
	}
	return out, nil
}

var errTruncatedField = errors.New("wire: truncated TLV field")

// encodeField appends one TLV field to buf and returns the extended slice.
func encodeField(buf []byte, typ FieldType, val []byte) []byte {
	var hdr [4]byte
	hdr[0] = byte(typ >> 8)
	hdr[1] = byte(typ)
	hdr[2] = byte(len(val) >> 8)
	hdr[3] = byte(len(val))
	buf = append(buf, hdr[:]...)
	buf = append(buf, val...)
	return buf
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
	return b
}

func decodeUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
