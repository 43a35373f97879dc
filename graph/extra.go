package graph

import "google.golang.org/protobuf/types/known/structpb"

// SetExtra sets an extra field value on the resource. Values that cannot
// be represented as JSON-compatible structpb values are dropped silently.
func (r *Resource) SetExtra(key string, value any) {
	if r.Extra == nil {
		r.Extra = &structpb.Struct{
			Fields: make(map[string]*structpb.Value),
		}
	}
	v, err := structpb.NewValue(value)
	if err == nil {
		r.Extra.Fields[key] = v
	}
}

// GetExtra retrieves an extra field value.
func (r *Resource) GetExtra(key string) (any, bool) {
	if r.Extra == nil || r.Extra.Fields == nil {
		return nil, false
	}
	v, ok := r.Extra.Fields[key]
	if !ok {
		return nil, false
	}
	return v.AsInterface(), true
}

// GetExtraString retrieves an extra field as a string.
func (r *Resource) GetExtraString(key string) string {
	v, ok := r.GetExtra(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ExtraFields returns all extra fields as a map.
func (r *Resource) ExtraFields() map[string]any {
	if r.Extra == nil || r.Extra.Fields == nil {
		return nil
	}
	result := make(map[string]any, len(r.Extra.Fields))
	for k, v := range r.Extra.Fields {
		result[k] = v.AsInterface()
	}
	return result
}
