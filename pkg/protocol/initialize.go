package protocol

// LatestProtocolVersion is the newest MCP protocol revision this codec
// speaks, and the default a peer offers/prefers when it isn't configured
// with its own protocolVersions list.
const LatestProtocolVersion = "2025-06-18"

// DefaultProtocolVersions is the ordered, most-preferred-first list of
// protocol revisions a session negotiates against when spec §6's
// "protocolVersions" construction option isn't overridden. Earlier
// revisions are kept here (rather than only the latest) so this runtime
// can still serve a peer stuck on an older revision instead of refusing
// it outright.
var DefaultProtocolVersions = []string{
	LatestProtocolVersion,
	"2025-03-26",
	"2024-11-05",
}

// NegotiateVersion implements spec §4.4's handshake rule: if requested is
// among supported, it is echoed back unchanged; otherwise supported's
// most-preferred entry is returned, and the caller (client or server) is
// responsible for treating the mismatch as a disconnect.
func NegotiateVersion(requested string, supported []string) string {
	for _, v := range supported {
		if v == requested {
			return v
		}
	}
	if len(supported) > 0 {
		return supported[0]
	}
	return LatestProtocolVersion
}

// SupportsVersion reports whether version appears anywhere in supported.
func SupportsVersion(version string, supported []string) bool {
	for _, v := range supported {
		if v == version {
			return true
		}
	}
	return false
}

type Implementation struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version"`
}

type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
	Meta            *Meta              `json:"_meta,omitempty"`
}

func (p *InitializeParams) GetMeta() *Meta { return p.Meta }

type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
	Meta            *Meta              `json:"_meta,omitempty"`
}

func (r *InitializeResult) GetMeta() *Meta { return r.Meta }

// InitializedParams is the payload of notifications/initialized, the
// client's acknowledgement that ends the handshake.
type InitializedParams struct {
	Meta *Meta `json:"_meta,omitempty"`
}

func (p *InitializedParams) GetMeta() *Meta { return p.Meta }
