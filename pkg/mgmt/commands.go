package mgmt

// Command structs mirror spec.md 6's control-command field lists. Each is
// decoded from the newline-delimited key-value body by gorilla/schema, the
// way the teacher decodes NDN ControlParameters TLVs into
// std/ndn/mgmt_2022 structs, just over url.Values instead of a TLV block.

type addRouteCmd struct {
	Seq      uint64 `schema:"seq,required"`
	Prefix   string `schema:"prefix,required"`
	NextHop  uint64 `schema:"next-hop,required"`
	Cost     uint64 `schema:"cost"`
	Lifetime uint64 `schema:"lifetime"`
	Strategy string `schema:"strategy"`
}

type removeRouteCmd struct {
	Seq     uint64 `schema:"seq,required"`
	Prefix  string `schema:"prefix,required"`
	NextHop uint64 `schema:"next-hop,required"`
}

// addConnectionCmd covers both AddConnectionEthernet and AddConnectionIP:
// the two verbs share a field set, differing only in how Peer is
// interpreted (a MAC-bearing interface name vs. a host:port address).
type addConnectionCmd struct {
	Seq             uint64 `schema:"seq,required"`
	Iface           string `schema:"iface"`
	Peer            string `schema:"peer,required"`
	EthertypeOrPort uint64 `schema:"ethertype-or-port"`
	SymbolicName    string `schema:"symbolic-name,required"`
	Kind            string `schema:"kind"` // "tcp", "unix", "websocket", "quic"
}

type removeConnectionCmd struct {
	Seq          uint64 `schema:"seq,required"`
	SymbolicName string `schema:"symbolic-name"`
	Id           uint64 `schema:"id"`
}

type cacheStoreEnableCmd struct {
	Seq    uint64 `schema:"seq,required"`
	Enable bool   `schema:"enable,required"`
}

type cacheServeEnableCmd struct {
	Seq    uint64 `schema:"seq,required"`
	Enable bool   `schema:"enable,required"`
}

type cacheClearCmd struct {
	Seq uint64 `schema:"seq,required"`
}

type listCmd struct {
	Seq uint64 `schema:"seq,required"`
}
