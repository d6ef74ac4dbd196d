// Package profile provides the contract types for the external profile
// writer: fixed core columns plus a free-form attributes bag. The
// engine writes through this seam only; it never owns profile storage.
package profile

// Core column keys a partitioned payload may target.
const (
	CoreDisplayName = "display_name"
	CoreAvatarURL   = "avatar_url"
	CoreBio         = "bio"
	CoreRole        = "role"
)

// CoreColumns lists the fixed profile columns.
func CoreColumns() []string {
	return []string{CoreDisplayName, CoreAvatarURL, CoreBio, CoreRole}
}

// IsCoreColumn reports whether key names a fixed column.
func IsCoreColumn(key string) bool {
	switch key {
	case CoreDisplayName, CoreAvatarURL, CoreBio, CoreRole:
		return true
	}
	return false
}

// Attributes is the schema-less attribute bag. All access goes through
// the partitioner; handlers never reach into it ad hoc.
type Attributes map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge returns a copy of a with overlay applied, last write wins per
// key. Neither input is mutated.
func (a Attributes) Merge(overlay Attributes) Attributes {
	out := a.Clone()
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// Record is a user's profile as seen through the writer seam.
type Record struct {
	UserID      string
	DisplayName string
	AvatarURL   string
	Bio         string
	Role        string
	Attributes  Attributes
}

// ApplyCore copies recognized core values onto the record. Unknown
// keys are ignored; the partitioner should not produce any.
func (r *Record) ApplyCore(core map[string]any) {
	for k, v := range core {
		s, _ := v.(string)
		switch k {
		case CoreDisplayName:
			r.DisplayName = s
		case CoreAvatarURL:
			r.AvatarURL = s
		case CoreBio:
			r.Bio = s
		case CoreRole:
			r.Role = s
		}
	}
}
