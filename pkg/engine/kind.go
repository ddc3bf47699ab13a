package engine

// Kind identifies an operation kind. The set is closed; routing is a
// fixed property of the kind, never negotiated with the daemon.
type Kind int

const (
	KindConnection Kind = iota
	KindBrowse
	KindResolve
	KindRegister
	KindQueryRecord
	KindEnumerateDomains
	KindRegisterRecord
	KindAddRecord
	KindUpdateRecord
	KindRemoveRecord
	KindReconfirmRecord
)

var kindNames = [...]string{
	KindConnection:       "connection",
	KindBrowse:           "browse",
	KindResolve:          "resolve",
	KindRegister:         "register",
	KindQueryRecord:      "query-record",
	KindEnumerateDomains: "enumerate-domains",
	KindRegisterRecord:   "register-record",
	KindAddRecord:        "add-record",
	KindUpdateRecord:     "update-record",
	KindRemoveRecord:     "remove-record",
	KindReconfirmRecord:  "reconfirm-record",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Route describes how requests of one kind travel to the daemon.
type Route struct {
	// SharedConn: the request is multiplexed on an existing shared
	// connection instead of opening a dedicated one.
	SharedConn bool
	// SideChannel: the completion status arrives on a secondary
	// channel attached to the request rather than inline.
	SideChannel bool
	// CancelNotice: dropping the request mid-flight must send an
	// explicit cancellation notice carrying the correlation id.
	CancelNotice bool
}

// routes is the authoritative per-kind table. The daemon's own routing
// rules are under-documented; this table is fixed by the protocol
// appendix and must not be inferred from observed server behavior.
var routes = [...]Route{
	KindConnection:       {},
	KindBrowse:           {},
	KindResolve:          {},
	KindRegister:         {},
	KindQueryRecord:      {},
	KindEnumerateDomains: {},
	KindRegisterRecord:   {SharedConn: true, SideChannel: true, CancelNotice: true},
	KindAddRecord:        {SharedConn: true, CancelNotice: true},
	KindUpdateRecord:     {SharedConn: true, CancelNotice: true},
	KindRemoveRecord:     {SharedConn: true, CancelNotice: true},
	KindReconfirmRecord:  {},
}

// RouteFor returns the fixed routing entry for a kind.
func RouteFor(k Kind) Route {
	if k >= 0 && int(k) < len(routes) {
		return routes[k]
	}
	return Route{}
}
