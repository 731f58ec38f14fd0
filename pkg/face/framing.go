package face

import (
	"encoding/binary"
	"io"

	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

// readFramedPacket reads one full packet from a stream-oriented reader: it
// reads the fixed header first (which carries the total packet length),
// then reads the remainder of the body, so stream transports (TCP, Unix,
// QUIC) can recover packet boundaries without their own length prefix.
func readFramedPacket(r io.Reader) ([]byte, error) {
	hdr := make([]byte, wire.HeaderLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	total := int(binary.BigEndian.Uint16(hdr[2:4]))
	if total < wire.HeaderLen {
		return hdr, nil
	}
	buf := make([]byte, total)
	copy(buf, hdr)
	if _, err := io.ReadFull(r, buf[wire.HeaderLen:]); err != nil {
		return nil, err
	}
	return buf, nil
}
