package card

import (
	"strings"

	"github.com/addons-front/listing-api/internal/permissions"
)

// Class names consumed by the front-end renderer.
const (
	// ClassName is the card container class.
	ClassName = "PermissionsCard"
	// LearnMoreClassName is the learn-more button class.
	LearnMoreClassName = "PermissionCard-learn-more"
	// DefaultLearnMoreURL points at the public permissions article.
	DefaultLearnMoreURL = "https://support.mozilla.org/kb/permission-request-messages-firefox-extensions"
)

// Options controls card construction.
type Options struct {
	LearnMoreURL string
}

// Item is one permission row, rendered by type.
type Item struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Section is a subhead plus list for one permission group.
type Section struct {
	Kind             string `json:"kind"`
	SubheadClassName string `json:"subhead_class_name"`
	ListClassName    string `json:"list_class_name"`
	Items            []Item `json:"items"`
}

// LearnMore is the static action shown on every rendered card.
type LearnMore struct {
	ClassName    string `json:"class_name"`
	ExternalDark bool   `json:"external_dark"`
	Href         string `json:"href"`
}

// Card is the permissions card view model.
type Card struct {
	Render    bool       `json:"render"`
	ClassName string     `json:"class_name,omitempty"`
	Sections  []Section  `json:"sections"`
	LearnMore *LearnMore `json:"learn_more,omitempty"`
}

// Build turns grouped permissions into a card. Nothing is rendered when g is empty.
func Build(g permissions.Grouped, opts Options) Card {
	if !g.ShouldRender() {
		return Card{Sections: []Section{}}
	}

	defs := permissions.DefinitionMap()
	grouped := g.Sections()
	sections := make([]Section, 0, len(grouped))
	for _, s := range grouped {
		items := make([]Item, 0, len(s.Permissions))
		for _, key := range s.Permissions {
			items = append(items, Item{Type: key, Description: defs[key].Description})
		}
		sections = append(sections, Section{
			Kind:             s.Kind,
			SubheadClassName: SubheadClassName(s.Kind),
			ListClassName:    ListClassName(s.Kind),
			Items:            items,
		})
	}

	href := strings.TrimSpace(opts.LearnMoreURL)
	if href == "" {
		href = DefaultLearnMoreURL
	}
	return Card{
		Render:    true,
		ClassName: ClassName,
		Sections:  sections,
		LearnMore: &LearnMore{
			ClassName:    LearnMoreClassName,
			ExternalDark: true,
			Href:         href,
		},
	}
}

// SubheadClassName returns the subhead marker for a group kind.
func SubheadClassName(kind string) string {
	return ClassName + "-subhead--" + kind
}

// ListClassName returns the list marker for a group kind.
func ListClassName(kind string) string {
	return ClassName + "-list--" + kind
}
