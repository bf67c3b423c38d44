package protocol

import "encoding/json"

// Meta carries the "_meta" bag attached to requests, results and content
// blocks. The only field every peer is expected to understand is the
// progress token; everything else rides in Data as opaque, app-defined
// key/value pairs (grounded on the golang-tools internal mcp package's
// Meta type).
type Meta struct {
	ProgressToken *RequestID
	Data          map[string]json.RawMessage
}

func (m Meta) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	for k, v := range m.Data {
		out[k] = v
	}
	if m.ProgressToken != nil {
		tok, err := json.Marshal(*m.ProgressToken)
		if err != nil {
			return nil, err
		}
		out["progressToken"] = tok
	}
	return json.Marshal(out)
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if tok, ok := raw["progressToken"]; ok {
		var id RequestID
		if err := json.Unmarshal(tok, &id); err != nil {
			return err
		}
		m.ProgressToken = &id
		delete(raw, "progressToken")
	}
	m.Data = raw
	return nil
}

// Params is implemented by every method's request parameter type so
// handler glue can reach the progress token without a type switch.
type Params interface {
	GetMeta() *Meta
}

// Result is implemented by every method's result type.
type Result interface {
	GetMeta() *Meta
}
