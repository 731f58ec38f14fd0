package wire

import (
	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/types"
)

// Encode serializes a MessageView back to wire bytes. Fields the forwarder
// pins (name, restrictions, lifetimes, hop limit, return code) are
// re-emitted from the view's current state (so a hop-limit decrement is
// reflected); any field the forwarder doesn't understand is passed through
// verbatim from the original packet, per spec.md 4.10.
func Encode(mv *MessageView) []byte {
	if mv.typ == PacketControl {
		return encodeControl(mv)
	}

	body := make([]byte, 0, 64)
	if mv.nm != nil {
		body = encodeField(body, FieldName, mv.nm.Bytes())
	}
	if mv.keyId != nil {
		body = encodeField(body, FieldKeyIdRestriction, mv.keyId)
	}
	if mv.objHash != nil {
		body = encodeField(body, FieldContentObjectHashRestriction, mv.objHash)
	}
	if mv.hasExpiry {
		if mv.expiryField == FieldInterestLifetime {
			body = encodeField(body, FieldInterestLifetime, encodeUint64(uint64(mv.expiry-mv.receivedAt)))
		} else {
			body = encodeField(body, FieldExpiryTime, encodeUint64(uint64(mv.expiry)))
		}
	}
	if mv.hasRct {
		body = encodeField(body, FieldRecommendedCacheTime, encodeUint64(uint64(mv.rct)))
	}
	for _, f := range mv.unknown {
		body = encodeField(body, f.typ, f.val)
	}

	hdr := Header{
		Version:      1,
		Type:         mv.typ,
		HopLimit:     mv.hopLimit,
		HeaderLength: HeaderLen,
	}
	if mv.hasReturnCode {
		hdr.ReturnCode = mv.returnCode
	}
	total := HeaderLen + len(body)
	hdr.PacketLength = uint16(total)

	out := make([]byte, HeaderLen, total)
	hdr.EncodeInto(out)
	out = append(out, body...)
	return out
}

// encodeControl serializes a Control packet: fixed header followed by the
// opaque newline-delimited command body, with no TLV framing (spec.md 6).
func encodeControl(mv *MessageView) []byte {
	hdr := Header{
		Version:      1,
		Type:         PacketControl,
		HopLimit:     mv.hopLimit,
		HeaderLength: HeaderLen,
		PacketLength: uint16(HeaderLen + len(mv.controlBody)),
	}
	out := make([]byte, HeaderLen, HeaderLen+len(mv.controlBody))
	hdr.EncodeInto(out)
	out = append(out, mv.controlBody...)
	return out
}

// Builder constructs a MessageView programmatically, used by tests, the
// forwarding pipeline (for synthesizing InterestReturn packets) and the
// control-message handler (for synthesizing ACK/NACK packets).
type Builder struct {
	mv MessageView
}

// NewInterest starts building an Interest for name nm.
func NewInterest(nm *name.Name) *Builder {
	return &Builder{mv: MessageView{typ: PacketInterest, nm: nm, hopLimit: 255}}
}

// NewContentObject starts building a Content Object for name nm.
func NewContentObject(nm *name.Name) *Builder {
	return &Builder{mv: MessageView{typ: PacketContentObject, nm: nm, hopLimit: 255}}
}

// NewInterestReturn starts building an InterestReturn echoing the name of
// the Interest that could not be forwarded, with the given return code.
func NewInterestReturn(nm *name.Name, code ReturnCode) *Builder {
	return &Builder{mv: MessageView{
		typ: PacketInterestReturn, nm: nm, hopLimit: 255,
		returnCode: code, hasReturnCode: true,
	}}
}

// NewControl starts building a Control packet carrying the given raw
// newline-delimited key-value body (spec.md 6).
func NewControl(body []byte) *Builder {
	return &Builder{mv: MessageView{typ: PacketControl, hopLimit: 255, controlBody: body}}
}

func (b *Builder) ControlBody(v []byte) *Builder { b.mv.controlBody = v; return b }

func (b *Builder) KeyId(v []byte) *Builder      { b.mv.keyId = v; return b }
func (b *Builder) ObjectHash(v []byte) *Builder { b.mv.objHash = v; return b }

// Expiry sets an absolute ExpiryTime field (FieldExpiryTime on the wire). Use
// InterestLifetime to build a view that round-trips as the relative
// FieldInterestLifetime tag instead.
func (b *Builder) Expiry(t types.Tick) *Builder {
	b.mv.expiry, b.mv.hasExpiry, b.mv.expiryField = t, true, FieldExpiryTime
	return b
}

// InterestLifetime sets expiry as receivedAt+lifetime and marks it to
// re-encode as the relative FieldInterestLifetime tag rather than
// FieldExpiryTime, preserving the distinction spec.md 4.2/6 draws between
// the two fields across a decode/re-encode round trip. Call ReceivedAt
// before InterestLifetime in the chain; it reads receivedAt at call time.
func (b *Builder) InterestLifetime(lifetime types.Tick) *Builder {
	b.mv.expiry = b.mv.receivedAt + lifetime
	b.mv.hasExpiry = true
	b.mv.expiryField = FieldInterestLifetime
	return b
}

func (b *Builder) RecommendedCacheTime(t types.Tick) *Builder {
	b.mv.rct, b.mv.hasRct = t, true
	return b
}

func (b *Builder) HopLimit(h byte) *Builder         { b.mv.hopLimit = h; return b }
func (b *Builder) Ingress(c types.ConnId) *Builder  { b.mv.ingress = c; return b }
func (b *Builder) ReceivedAt(t types.Tick) *Builder { b.mv.receivedAt = t; return b }

func (b *Builder) Build() *MessageView {
	mv := b.mv
	return &mv
}

// ReturnCode returns the InterestReturn's return code, if this view carries one.
func (mv *MessageView) ReturnCode() (ReturnCode, bool) { return mv.returnCode, mv.hasReturnCode }
