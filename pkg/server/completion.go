package server

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/richard-senior/mcp/pkg/protocol"
)

// handleCompletionComplete offers argument completions for a prompt or
// resource template reference. The default implementation matches by
// prefix against the referenced prompt's argument names, or against the
// Name of the template whose URITemplate equals the reference URI, which
// is enough to exercise the wire shape end to end; a real
// deployment would wire this into a domain-specific suggestion source.
func (s *Server) handleCompletionComplete(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.CompleteParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}

	var candidates []string
	switch ref := params.Ref.(type) {
	case *protocol.PromptReference:
		list, err := s.prompts.List()
		if err == nil {
			for _, p := range list {
				if p.Name != ref.Name {
					continue
				}
				for _, arg := range p.Arguments {
					candidates = append(candidates, arg.Name)
				}
			}
		}
	case *protocol.ResourceReference:
		for _, tmpl := range s.resources.Templates() {
			if tmpl.URITemplate == ref.URI {
				candidates = append(candidates, tmpl.Name)
			}
		}
	default:
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "unsupported completion reference")
	}

	values := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if params.Argument.Value == "" || strings.HasPrefix(c, params.Argument.Value) {
			values = append(values, c)
		}
	}

	return encode(&protocol.CompleteResult{Completion: protocol.CompletionValues{Values: values}})
}
