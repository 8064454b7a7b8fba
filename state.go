package consolekit

import (
	"errors"

	"github.com/pthm/consolekit/lib/encoding"
)

// State is the named-parameter bag passed into every lifecycle hook
// invocation. A fresh State is constructed per invocation and never
// persisted.
//
// The serializable fields identify what to render: the renderer name, the
// fragment's unique token, the field prefix, and workflow parameters like
// Subject and Reason. The handle fields (Doc, Store, Bus) are explicit
// references to the invocation's owning document, form store and bus; they
// are attached by the dispatching bridge and never travel over the wire.
type State struct {
	Renderer string
	Unique   string
	Prefix   string
	Subject  string
	Reason   string
	Value    string
	Index    int
	Silent   bool

	// Params carries renderer-specific extras that have no struct field.
	Params map[string]string

	// Runtime handles, attached at dispatch.
	Doc    *Document
	Store  *FormStore
	Bus    *Bus
	Bridge Bridge
}

// Clone returns a copy of the state sharing the runtime handles. Hooks that
// issue follow-up bridge calls derive the child state this way instead of
// mutating their own.
func (st *State) Clone() *State {
	dup := *st
	if st.Params != nil {
		dup.Params = make(map[string]string, len(st.Params))
		for k, v := range st.Params {
			dup.Params[k] = v
		}
	}
	return &dup
}

// Param returns the named extra parameter, or "".
func (st *State) Param(name string) string {
	return st.Params[name]
}

// EncodeFields flattens the serializable fields for wire encoding.
// Zero-valued fields are omitted to keep encoded state short.
func (st *State) EncodeFields() map[string]any {
	fields := make(map[string]any, 8+len(st.Params))
	put := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	put("r", st.Renderer)
	put("u", st.Unique)
	put("p", st.Prefix)
	put("s", st.Subject)
	put("n", st.Reason)
	put("v", st.Value)
	if st.Index != 0 {
		fields["i"] = st.Index
	}
	if st.Silent {
		fields["q"] = true
	}
	for k, v := range st.Params {
		fields["x."+k] = v
	}
	return fields
}

// DecodeFields populates the state from a decoded field map.
func (st *State) DecodeFields(fields map[string]any) error {
	str := func(k string) string {
		if v, ok := fields[k].(string); ok {
			return v
		}
		return ""
	}
	st.Renderer = str("r")
	st.Unique = str("u")
	st.Prefix = str("p")
	st.Subject = str("s")
	st.Reason = str("n")
	st.Value = str("v")
	st.Index = anyToInt(fields["i"])
	if v, ok := fields["q"].(bool); ok {
		st.Silent = v
	}
	for k, v := range fields {
		if len(k) > 2 && k[:2] == "x." {
			if s, ok := v.(string); ok {
				if st.Params == nil {
					st.Params = make(map[string]string)
				}
				st.Params[k[2:]] = s
			}
		}
	}
	return nil
}

// Encode serializes the state with enc. Sensitive states (those carrying a
// Subject or Reason) should be encrypted by the caller's choice of mode.
func (st *State) Encode(enc *encoding.Encoder, sensitive bool) (string, error) {
	return enc.Encode(st.EncodeFields(), sensitive)
}

// DecodeState reverses Encode.
func DecodeState(enc *encoding.Encoder, encoded string, sensitive bool) (*State, error) {
	fields, err := enc.Decode(encoded, sensitive)
	if err != nil {
		return nil, wrapEncodingError(err)
	}
	st := &State{}
	if err := st.DecodeFields(fields); err != nil {
		return nil, err
	}
	return st, nil
}

// anyToInt normalizes the integer widths msgpack produces for any-typed maps.
func anyToInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}

// wrapEncodingError maps encoding package errors onto toolkit sentinels.
func wrapEncodingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, encoding.ErrInvalidFormat):
		return ErrInvalidFormat
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, encoding.ErrDecryptFailed):
		return ErrDecryptFailed
	default:
		return err
	}
}
