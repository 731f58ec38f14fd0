// Package wire implements the fixed-header TLV wire format from spec.md 6
// and the read-only MessageView the pipeline consumes, grounded on the
// teacher's WireView cursor discipline (std/encoding/wire_view.go) applied
// to this spec's own, simpler fixed-width field layout rather than NDN's
// variable-length TLNum encoding.
package wire

// PacketType is the second byte of the fixed header.
type PacketType byte

const (
	PacketInterest      PacketType = 0x01
	PacketContentObject PacketType = 0x02
	PacketInterestReturn PacketType = 0x03
	PacketControl       PacketType = 0xA4
)

func (t PacketType) String() string {
	switch t {
	case PacketInterest:
		return "Interest"
	case PacketContentObject:
		return "ContentObject"
	case PacketInterestReturn:
		return "InterestReturn"
	case PacketControl:
		return "Control"
	default:
		return "Unknown"
	}
}

// ReturnCode is carried in InterestReturn packets.
type ReturnCode byte

const (
	ReturnNoRoute       ReturnCode = 0x01
	ReturnCongestion    ReturnCode = 0x02
	ReturnHopLimitExceeded ReturnCode = 0x03
	ReturnNoCache       ReturnCode = 0x04
)

// HeaderLen is the size in bytes of the fixed packet header.
const HeaderLen = 8

// Header is the fixed 8-byte prefix of every packet:
// {version, packet-type, packet-length(2 BE), hop-limit, return-code, flags, header-length}.
type Header struct {
	Version      byte
	Type         PacketType
	PacketLength uint16
	HopLimit     byte
	ReturnCode   ReturnCode
	Flags        byte
	HeaderLength byte
}

// EncodeInto writes the header into buf, which must be at least HeaderLen bytes.
func (h Header) EncodeInto(buf []byte) {
	buf[0] = h.Version
	buf[1] = byte(h.Type)
	buf[2] = byte(h.PacketLength >> 8)
	buf[3] = byte(h.PacketLength)
	buf[4] = h.HopLimit
	buf[5] = byte(h.ReturnCode)
	buf[6] = h.Flags
	buf[7] = h.HeaderLength
}

// ParseHeader reads the fixed header from the front of buf.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderLen {
		return Header{}, errShortHeader
	}
	return Header{
		Version:      buf[0],
		Type:         PacketType(buf[1]),
		PacketLength: uint16(buf[2])<<8 | uint16(buf[3]),
		HopLimit:     buf[4],
		ReturnCode:   ReturnCode(buf[5]),
		Flags:        buf[6],
		HeaderLength: buf[7],
	}, nil
}
