package wire

import (
	"github.com/ccnfwd/ccnfwd/pkg/arc"
	"github.com/ccnfwd/ccnfwd/pkg/name"
	"github.com/ccnfwd/ccnfwd/pkg/ndnerr"
	"github.com/ccnfwd/ccnfwd/pkg/types"
)

// MessageView is a read-only view over a received packet: it records the
// fields the pipeline needs, extracted once at parse time, so repeated
// accessors are O(1), the way the teacher's WireView lets every reader stay a cheap
// cursor over the original buffer rather than copying fields out.
//
// A view is immutable except for hop-limit decrement, which the pipeline
// performs in place before forwarding.
type MessageView struct {
	raw []byte // original wire bytes, retained for re-encoding unknown fields

	typ      PacketType
	hopLimit byte

	nm              *name.Name
	keyId           []byte // nil if absent
	objHash         []byte // nil if absent
	expiry          types.Tick
	hasExpiry       bool
	expiryField     FieldType // FieldInterestLifetime or FieldExpiryTime; which tag produced expiry
	rct             types.Tick
	hasRct          bool

	ingress    types.ConnId
	receivedAt types.Tick

	returnCode    ReturnCode
	hasReturnCode bool

	controlBody []byte // raw newline-delimited key-value body, PacketControl only

	unknown []field // pass-through fields not consumed by the forwarder

	selfRef *arc.Arc[MessageView] // backing pool slot; nil for Builder-constructed views
}

// Parse validates and extracts the fields the forwarder consumes from a
// full packet buffer (fixed header + TLV body), per spec.md 4.2. The
// returned view starts with one reference held (spec.md 5): the caller
// must Release it, or hand that reference off to a Retain-ing table entry,
// once processing finishes.
func Parse(buf []byte, ingress types.ConnId, now types.Tick) (mv *MessageView, err error) {
	hdr, err := ParseHeader(buf)
	if err != nil {
		return nil, ndnerr.ErrMalformedPacket{Reason: err.Error()}
	}
	if hdr.Version != 1 {
		return nil, ndnerr.ErrMalformedPacket{Reason: "unsupported version"}
	}
	switch hdr.Type {
	case PacketInterest, PacketContentObject, PacketInterestReturn, PacketControl:
	default:
		return nil, ndnerr.ErrMalformedPacket{Reason: "unknown packet type"}
	}
	if int(hdr.HeaderLength) > len(buf) || int(hdr.HeaderLength) < HeaderLen {
		return nil, ndnerr.ErrMalformedPacket{Reason: "invalid header length"}
	}
	body := buf[hdr.HeaderLength:]

	mv = acquireView()
	mv.raw = buf
	mv.typ = hdr.Type
	mv.hopLimit = hdr.HopLimit
	mv.ingress = ingress
	mv.receivedAt = now
	mv.returnCode = hdr.ReturnCode
	mv.hasReturnCode = hdr.Type == PacketInterestReturn

	view := mv
	defer func() {
		if err != nil {
			view.Release()
			mv = nil
		}
	}()

	// Control packets carry a newline-delimited key-value command body
	// (spec.md 6), not TLV fields: the forwarder never inspects it, only
	// pkg/mgmt does, so it is kept as an opaque blob rather than walked.
	if hdr.Type == PacketControl {
		mv.controlBody = append([]byte(nil), body...)
		return mv, nil
	}

	fields, ferr := walkFields(body)
	if ferr != nil {
		return nil, ndnerr.ErrMalformedPacket{Reason: ferr.Error()}
	}

	for _, f := range fields {
		switch f.typ {
		case FieldName:
			nm, nerr := name.FromWire(f.val)
			if nerr != nil {
				return nil, nerr
			}
			mv.nm = nm
		case FieldKeyIdRestriction:
			mv.keyId = f.val
		case FieldContentObjectHashRestriction:
			mv.objHash = f.val
		case FieldInterestLifetime:
			if len(f.val) != 8 {
				return nil, ndnerr.ErrMalformedPacket{Reason: "malformed InterestLifetime"}
			}
			mv.expiry = types.Tick(now) + types.Tick(decodeUint64(f.val))
			mv.hasExpiry = true
			mv.expiryField = FieldInterestLifetime
		case FieldExpiryTime:
			if len(f.val) != 8 {
				return nil, ndnerr.ErrMalformedPacket{Reason: "malformed ExpiryTime"}
			}
			mv.expiry = types.Tick(decodeUint64(f.val))
			mv.hasExpiry = true
			mv.expiryField = FieldExpiryTime
		case FieldRecommendedCacheTime:
			if len(f.val) != 8 {
				return nil, ndnerr.ErrMalformedPacket{Reason: "malformed RecommendedCacheTime"}
			}
			mv.rct = types.Tick(decodeUint64(f.val))
			mv.hasRct = true
		default:
			mv.unknown = append(mv.unknown, f)
		}
	}

	if mv.nm == nil {
		return nil, ndnerr.ErrMalformedPacket{Reason: "missing Name field"}
	}

	return mv, nil
}

func (mv *MessageView) PacketType() PacketType { return mv.typ }
func (mv *MessageView) Name() *name.Name        { return mv.nm }

func (mv *MessageView) KeyIdRestriction() ([]byte, bool) {
	return mv.keyId, mv.keyId != nil
}

func (mv *MessageView) ObjectHashRestriction() ([]byte, bool) {
	return mv.objHash, mv.objHash != nil
}

func (mv *MessageView) ExpiryTick() (types.Tick, bool) { return mv.expiry, mv.hasExpiry }
func (mv *MessageView) RecommendedCacheTick() (types.Tick, bool) { return mv.rct, mv.hasRct }

func (mv *MessageView) HopLimit() byte          { return mv.hopLimit }
func (mv *MessageView) IngressId() types.ConnId { return mv.ingress }
func (mv *MessageView) ReceivedAt() types.Tick  { return mv.receivedAt }

// DecrementHopLimit decrements the view's hop limit in place. It reports
// false (and leaves the view untouched) on underflow, per spec.md 4.2.
func (mv *MessageView) DecrementHopLimit() bool {
	if mv.hopLimit == 0 {
		return false
	}
	mv.hopLimit--
	return true
}

// Raw returns the original wire bytes this view was parsed from.
func (mv *MessageView) Raw() []byte { return mv.raw }

// ControlBody returns the raw newline-delimited key-value command body of a
// Control packet (spec.md 6), or nil for any other packet type.
func (mv *MessageView) ControlBody() []byte { return mv.controlBody }
