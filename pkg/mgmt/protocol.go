package mgmt

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ccnfwd/ccnfwd/pkg/ndnerr"
	"github.com/ccnfwd/ccnfwd/pkg/wire"
)

// parseBody splits a Control packet's body into its verb (the first line)
// and its fields (every following non-blank "key=value" line, collected
// into url.Values so gorilla/schema can decode them directly), per spec.md
// 6's "newline-delimited structured key-value bags".
func parseBody(body []byte) (verb string, values url.Values, err error) {
	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return "", nil, ndnerr.ErrControlParse{Reason: "empty control body"}
	}
	verb = strings.TrimSpace(lines[0])

	values = url.Values{}
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return "", nil, ndnerr.ErrControlParse{Reason: "malformed field: " + line}
		}
		values.Set(k, v)
	}
	return verb, values, nil
}

// ack builds the ACK response body for seq, with additional fields echoed
// back (e.g. the resolved connection id, or a dataset for a list verb).
func ack(seq uint64, fields ...[2]string) *wire.MessageView {
	var b strings.Builder
	b.WriteString("ACK\n")
	b.WriteString("seq=")
	b.WriteString(strconv.FormatUint(seq, 10))
	b.WriteByte('\n')
	for _, f := range fields {
		b.WriteString(f[0])
		b.WriteByte('=')
		b.WriteString(f[1])
		b.WriteByte('\n')
	}
	return wire.NewControl([]byte(b.String())).Build()
}

// nack builds the NACK response body for seq, carrying a diagnostic reason.
func nack(seq uint64, reason string) *wire.MessageView {
	var b strings.Builder
	b.WriteString("NACK\n")
	b.WriteString("seq=")
	b.WriteString(strconv.FormatUint(seq, 10))
	b.WriteByte('\n')
	b.WriteString("reason=")
	b.WriteString(reason)
	b.WriteByte('\n')
	return wire.NewControl([]byte(b.String())).Build()
}
