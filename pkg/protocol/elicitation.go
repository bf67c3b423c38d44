package protocol

import "encoding/json"

// PrimitiveSchemaKind discriminates the PrimitiveSchemaDefinition union used
// by elicitation/create forms.
type PrimitiveSchemaKind string

const (
	SchemaString            PrimitiveSchemaKind = "string"
	SchemaNumber            PrimitiveSchemaKind = "number"
	SchemaBoolean           PrimitiveSchemaKind = "boolean"
	SchemaEnumUntitled      PrimitiveSchemaKind = "enum_untitled"
	SchemaEnumTitled        PrimitiveSchemaKind = "enum_titled"
	SchemaEnumLegacyTitled  PrimitiveSchemaKind = "enum_legacy_titled"
	SchemaMultiEnumUntitled PrimitiveSchemaKind = "multi_enum_untitled"
	SchemaMultiEnumTitled   PrimitiveSchemaKind = "multi_enum_titled"
)

// PrimitiveSchemaDefinition is a tagged union over { string, number/integer,
// boolean, single-select enum (untitled/titled/legacy), multi-select enum
// (untitled/titled) }. Discrimination is structural: "type" plus the
// presence of enum, oneOf, enumNames, items.enum, or items.anyOf determines
// the variant (spec §4.1).
type PrimitiveSchemaDefinition interface {
	Kind() PrimitiveSchemaKind
}

type StringSchema struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MinLength   *int   `json:"minLength,omitempty"`
	MaxLength   *int   `json:"maxLength,omitempty"`
	Format      string `json:"format,omitempty"`
}

func (*StringSchema) Kind() PrimitiveSchemaKind { return SchemaString }

type NumberSchema struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	IsInteger   bool     `json:"-"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
}

func (*NumberSchema) Kind() PrimitiveSchemaKind { return SchemaNumber }

type BooleanSchema struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     *bool  `json:"default,omitempty"`
}

func (*BooleanSchema) Kind() PrimitiveSchemaKind { return SchemaBoolean }

// EnumUntitledSchema is type:"string" + enum, with no titles.
type EnumUntitledSchema struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum"`
}

func (*EnumUntitledSchema) Kind() PrimitiveSchemaKind { return SchemaEnumUntitled }

// EnumTitledSchema is type:"string" + oneOf[{const,title}].
type EnumTitledSchema struct {
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	OneOf       []EnumTitledCase `json:"oneOf"`
}

type EnumTitledCase struct {
	Const string `json:"const"`
	Title string `json:"title"`
}

func (*EnumTitledSchema) Kind() PrimitiveSchemaKind { return SchemaEnumTitled }

// EnumLegacyTitledSchema is the deprecated type:"string" + enum + enumNames
// form, still accepted on decode.
type EnumLegacyTitledSchema struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum"`
	EnumNames   []string `json:"enumNames"`
}

func (*EnumLegacyTitledSchema) Kind() PrimitiveSchemaKind { return SchemaEnumLegacyTitled }

// MultiEnumUntitledSchema is type:"array" + items.enum.
type MultiEnumUntitledSchema struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Items       []string `json:"-"`
}

func (*MultiEnumUntitledSchema) Kind() PrimitiveSchemaKind { return SchemaMultiEnumUntitled }

// MultiEnumTitledSchema is type:"array" + items.anyOf[{const,title}].
type MultiEnumTitledSchema struct {
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Items       []EnumTitledCase `json:"-"`
}

func (*MultiEnumTitledSchema) Kind() PrimitiveSchemaKind { return SchemaMultiEnumTitled }

type schemaEnvelope struct {
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Enum        []string        `json:"enum"`
	EnumNames   []string        `json:"enumNames"`
	OneOf       json.RawMessage `json:"oneOf"`
	Items       *itemsEnvelope  `json:"items"`
}

type itemsEnvelope struct {
	Enum  []string        `json:"enum"`
	AnyOf json.RawMessage `json:"anyOf"`
}

// DecodeSchema applies the structural discrimination table from spec §4.1:
//
//	type:"string" + enum + enumNames        -> legacy titled enum
//	type:"string" + enum alone               -> untitled single-select enum
//	type:"string" + oneOf[{const,title}]     -> titled single-select enum
//	type:"array"  + items.enum               -> untitled multi-select enum
//	type:"array"  + items.anyOf               -> titled multi-select enum
//	type:"string" (plain)                    -> string schema
//	type:"number" or "integer"               -> number schema
//	type:"boolean"                           -> boolean schema
func DecodeSchema(data []byte) (PrimitiveSchemaDefinition, error) {
	var env schemaEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case "string":
		switch {
		case len(env.Enum) > 0 && len(env.EnumNames) > 0:
			return &EnumLegacyTitledSchema{Title: env.Title, Description: env.Description, Enum: env.Enum, EnumNames: env.EnumNames}, nil
		case len(env.Enum) > 0:
			return &EnumUntitledSchema{Title: env.Title, Description: env.Description, Enum: env.Enum}, nil
		case len(env.OneOf) > 0:
			var cases []EnumTitledCase
			if err := json.Unmarshal(env.OneOf, &cases); err != nil {
				return nil, err
			}
			return &EnumTitledSchema{Title: env.Title, Description: env.Description, OneOf: cases}, nil
		default:
			var v StringSchema
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, err
			}
			return &v, nil
		}
	case "number", "integer":
		var v NumberSchema
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		v.IsInteger = env.Type == "integer"
		return &v, nil
	case "boolean":
		var v BooleanSchema
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case "array":
		if env.Items == nil {
			return nil, errMissingItems
		}
		switch {
		case len(env.Items.AnyOf) > 0:
			var cases []EnumTitledCase
			if err := json.Unmarshal(env.Items.AnyOf, &cases); err != nil {
				return nil, err
			}
			return &MultiEnumTitledSchema{Title: env.Title, Description: env.Description, Items: cases}, nil
		case len(env.Items.Enum) > 0:
			return &MultiEnumUntitledSchema{Title: env.Title, Description: env.Description, Items: env.Items.Enum}, nil
		default:
			return nil, errMissingItems
		}
	default:
		return nil, errUnknownSchemaType(env.Type)
	}
}

var errMissingItems = errUnknownSchemaType("array (no items.enum or items.anyOf)")

type errUnknownSchemaType string

func (e errUnknownSchemaType) Error() string {
	return "unrecognized elicitation schema shape: " + string(e)
}

// EncodeSchema serializes a PrimitiveSchemaDefinition back to its wire
// form, injecting "type" and (for array variants) the nested "items"
// object the variant types don't carry directly.
func EncodeSchema(s PrimitiveSchemaDefinition) (json.RawMessage, error) {
	switch v := s.(type) {
	case *StringSchema:
		return marshalWithType(v, "string")
	case *NumberSchema:
		t := "number"
		if v.IsInteger {
			t = "integer"
		}
		return marshalWithType(v, t)
	case *BooleanSchema:
		return marshalWithType(v, "boolean")
	case *EnumUntitledSchema:
		return marshalWithType(v, "string")
	case *EnumTitledSchema:
		return marshalWithType(v, "string")
	case *EnumLegacyTitledSchema:
		return marshalWithType(v, "string")
	case *MultiEnumUntitledSchema:
		return json.Marshal(map[string]any{
			"type": "array", "title": v.Title, "description": v.Description,
			"items": map[string]any{"enum": v.Items},
		})
	case *MultiEnumTitledSchema:
		return json.Marshal(map[string]any{
			"type": "array", "title": v.Title, "description": v.Description,
			"items": map[string]any{"anyOf": v.Items},
		})
	default:
		return nil, errUnknownSchemaType("unencodable schema value")
	}
}

func marshalWithType(v any, t string) (json.RawMessage, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	typeJSON, _ := json.Marshal(t)
	m["type"] = typeJSON
	return json.Marshal(m)
}
