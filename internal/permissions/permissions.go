package permissions

// Group kinds. Required always precedes optional when both are rendered.
const (
	// KindRequired marks permissions the extension cannot run without.
	KindRequired = "required"
	// KindOptional marks permissions the user may grant after install.
	KindOptional = "optional"
)

// File is the part of a version file relevant to permission display.
type File struct {
	Permissions         []string `json:"permissions"`
	OptionalPermissions []string `json:"optional_permissions"`
}

// Version is an extension release as supplied by the catalog layer.
type Version struct {
	Files []File `json:"files"`
}

// Grouped holds the displayable permissions of a version.
type Grouped struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// Section is one non-empty group in render order.
type Section struct {
	Kind        string   `json:"kind"`
	Permissions []string `json:"permissions"`
}

// Group splits v into displayable required and optional permissions using the default table.
func Group(v *Version) Grouped {
	return defaultTable.Group(v)
}

// Group splits v into displayable required and optional permissions.
//
// Only the first file is read. Input order is preserved and a key present in
// both input lists is kept in both outputs. The returned slices are never nil.
func (t *Table) Group(v *Version) Grouped {
	out := Grouped{Required: []string{}, Optional: []string{}}
	if v == nil || len(v.Files) == 0 {
		return out
	}
	file := v.Files[0]
	out.Required = t.filter(file.Permissions)
	out.Optional = t.filter(file.OptionalPermissions)
	return out
}

func (t *Table) filter(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if !t.Displayable(key) {
			continue
		}
		out = append(out, key)
	}
	return out
}

// ShouldRender reports whether anything displayable exists.
func (g Grouped) ShouldRender() bool {
	return len(g.Required) > 0 || len(g.Optional) > 0
}

// Sections returns the non-empty groups, required first.
func (g Grouped) Sections() []Section {
	sections := make([]Section, 0, 2)
	if len(g.Required) > 0 {
		sections = append(sections, Section{Kind: KindRequired, Permissions: g.Required})
	}
	if len(g.Optional) > 0 {
		sections = append(sections, Section{Kind: KindOptional, Permissions: g.Optional})
	}
	return sections
}
