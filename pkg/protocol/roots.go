package protocol

// Root describes a filesystem or URI boundary the client exposes to the
// server, advertised via roots/list and re-pushed on
// notifications/roots/list_changed.
type Root struct {
	URI  string `json:"uri"`
	Name string `json:"name,omitempty"`
}

type ListRootsParams struct {
	Meta *Meta `json:"_meta,omitempty"`
}

func (p *ListRootsParams) GetMeta() *Meta { return p.Meta }

type ListRootsResult struct {
	Roots []Root `json:"roots"`
	Meta  *Meta  `json:"_meta,omitempty"`
}

func (r *ListRootsResult) GetMeta() *Meta { return r.Meta }

type RootsListChangedParams struct {
	Meta *Meta `json:"_meta,omitempty"`
}

func (p *RootsListChangedParams) GetMeta() *Meta { return p.Meta }
