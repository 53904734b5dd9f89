package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Keys written by the merger on top of the raw item fields.
const (
	KeyItemID             = "item_id"
	KeyNormalizedCategory = "normalized_category"
	KeyComplianceLabels   = "compliance_labels"
	KeyOriginSources      = "origin_sources"
	KeyOriginPayloads     = "origin_payloads"
)

// ComputedKeys never come from raw input; the merger ignores them there.
var ComputedKeys = map[string]struct{}{
	KeyNormalizedCategory: {},
	KeyComplianceLabels:   {},
	KeyOriginSources:      {},
	KeyOriginPayloads:     {},
}

// Item is one merged news record. Fields holds the reconciled raw fields;
// the remaining members are derived by the pipeline.
type Item struct {
	ID                 string
	Fields             map[string]any
	NormalizedCategory string
	ComplianceLabels   []string
	OriginSources      []string
	OriginPayloads     map[string]map[string]any
}

// MarshalJSON flattens the raw fields and the computed fields into one object.
func (it *Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Fields)+5)
	for k, v := range it.Fields {
		out[k] = v
	}
	out[KeyItemID] = it.ID
	out[KeyNormalizedCategory] = it.NormalizedCategory
	out[KeyComplianceLabels] = nonNilStrings(it.ComplianceLabels)
	out[KeyOriginSources] = nonNilStrings(it.OriginSources)
	payloads := it.OriginPayloads
	if payloads == nil {
		payloads = map[string]map[string]any{}
	}
	out[KeyOriginPayloads] = payloads
	return MarshalPlain(out)
}

// String returns the named field as trimmed text; see Text.
func (it *Item) String(key string) string {
	return Text(it.Fields[key])
}

// Nested returns a field of a nested object field, or nil.
func (it *Item) Nested(key, sub string) any {
	m, ok := it.Fields[key].(map[string]any)
	if !ok {
		return nil
	}
	return m[sub]
}

// Text renders scalar values as trimmed strings. Lists of scalars are joined
// with ", "; nil and objects render as "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool, float64, int, int64:
		return fmt.Sprint(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := Text(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// MarshalPlain encodes v as compact JSON without HTML escaping.
func MarshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
