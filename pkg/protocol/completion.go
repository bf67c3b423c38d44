package protocol

import "encoding/json"

// CompleteParams asks the peer to suggest completions for a single
// argument value, against either a prompt or a resource template
// (discriminated by the Ref union, spec §4.1).
type CompleteParams struct {
	Ref      Reference         `json:"-"`
	Argument CompleteArgument  `json:"argument"`
	Context  *CompleteContext  `json:"context,omitempty"`
	Meta     *Meta             `json:"_meta,omitempty"`
}

func (p *CompleteParams) GetMeta() *Meta { return p.Meta }

type CompleteArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CompleteContext carries previously resolved argument values, so a
// server can offer context-sensitive completions.
type CompleteContext struct {
	Arguments map[string]string `json:"arguments,omitempty"`
}

type completeParamsWire struct {
	Ref      json.RawMessage  `json:"ref"`
	Argument CompleteArgument `json:"argument"`
	Context  *CompleteContext `json:"context,omitempty"`
	Meta     *Meta            `json:"_meta,omitempty"`
}

func (p *CompleteParams) MarshalJSON() ([]byte, error) {
	ref, err := EncodeReference(p.Ref)
	if err != nil {
		return nil, err
	}
	return json.Marshal(completeParamsWire{Ref: ref, Argument: p.Argument, Context: p.Context, Meta: p.Meta})
}

func (p *CompleteParams) UnmarshalJSON(data []byte) error {
	var wire completeParamsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	ref, err := DecodeReference(wire.Ref)
	if err != nil {
		return err
	}
	p.Ref = ref
	p.Argument = wire.Argument
	p.Context = wire.Context
	p.Meta = wire.Meta
	return nil
}

type CompleteResult struct {
	Completion CompletionValues `json:"completion"`
	Meta       *Meta            `json:"_meta,omitempty"`
}

func (r *CompleteResult) GetMeta() *Meta { return r.Meta }

type CompletionValues struct {
	Values  []string `json:"values"`
	Total   *int     `json:"total,omitempty"`
	HasMore bool     `json:"hasMore,omitempty"`
}
