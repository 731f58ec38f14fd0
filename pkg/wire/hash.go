package wire

import "golang.org/x/crypto/blake2b"

// ContentObjectHash computes the opaque hash identifying a Content Object
// for PIT and Content Store matching against a ContentObjectHash
// restriction (spec.md 3, 4.6, 4.7). Crypto signing and certificate
// handling are out of scope (spec.md 1); this is only a fixed hash
// function over the object's wire bytes, not a verification mechanism.
func ContentObjectHash(mv *MessageView) []byte {
	raw := mv.Raw()
	if raw == nil {
		// Not parsed from a real packet (e.g. built in-process by the
		// control-message handler or by tests): hash its canonical
		// encoding instead of an absent buffer.
		raw = Encode(mv)
	}
	sum := blake2b.Sum256(raw)
	return sum[:]
}
