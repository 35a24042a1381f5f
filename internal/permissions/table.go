package permissions

import (
	"sort"
	"strings"
)

// Definition describes a known permission key.
type Definition struct {
	Key         string `json:"key"`
	Description string `json:"description,omitempty"`
	Displayable bool   `json:"displayable"`
}

// definitions is the known WebExtension permission vocabulary.
// Keys without a user-facing warning are marked non-displayable.
var definitions = []Definition{
	{Key: "activeTab", Displayable: false},
	{Key: "alarms", Displayable: false},
	{Key: "contextMenus", Displayable: false},
	{Key: "contextualIdentities", Displayable: false},
	{Key: "cookies", Displayable: false},
	{Key: "identity", Displayable: false},
	{Key: "idle", Displayable: false},
	{Key: "menus", Displayable: false},
	{Key: "storage", Displayable: false},
	{Key: "theme", Displayable: false},
	{Key: "webRequest", Displayable: false},
	{Key: "webRequestBlocking", Displayable: false},
	{Key: "bookmarks", Description: "Read and modify bookmarks", Displayable: true},
	{Key: "browserSettings", Description: "Read and modify browser settings", Displayable: true},
	{Key: "browsingData", Description: "Clear recent browsing history, cookies, and related data", Displayable: true},
	{Key: "clipboardRead", Description: "Get data from the clipboard", Displayable: true},
	{Key: "clipboardWrite", Description: "Input data to the clipboard", Displayable: true},
	{Key: "declarativeNetRequest", Description: "Block content on any page", Displayable: true},
	{Key: "devtools", Description: "Extend developer tools to access your data in open tabs", Displayable: true},
	{Key: "downloads", Description: "Download files and read and modify the browser's download history", Displayable: true},
	{Key: "downloads.open", Description: "Open files downloaded to your computer", Displayable: true},
	{Key: "find", Description: "Read the text of all open tabs", Displayable: true},
	{Key: "geolocation", Description: "Access your location", Displayable: true},
	{Key: "history", Description: "Access browsing history", Displayable: true},
	{Key: "management", Description: "Monitor extension usage and manage themes", Displayable: true},
	{Key: "nativeMessaging", Description: "Exchange messages with programs other than Firefox", Displayable: true},
	{Key: "notifications", Description: "Display notifications to you", Displayable: true},
	{Key: "pkcs11", Description: "Provide cryptographic authentication services", Displayable: true},
	{Key: "privacy", Description: "Read and modify privacy settings", Displayable: true},
	{Key: "proxy", Description: "Control browser proxy settings", Displayable: true},
	{Key: "sessions", Description: "Access recently closed tabs", Displayable: true},
	{Key: "tabHide", Description: "Hide and show browser tabs", Displayable: true},
	{Key: "tabs", Description: "Access browser tabs", Displayable: true},
	{Key: "topSites", Description: "Access browsing history", Displayable: true},
	{Key: "unlimitedStorage", Description: "Store unlimited amount of client-side data", Displayable: true},
	{Key: "webNavigation", Description: "Access browser activity during navigation", Displayable: true},
}

// Table maps permission keys to whether they are shown to users.
// Keys missing from the table are displayable.
type Table struct {
	displayable map[string]bool
}

var defaultTable = DefaultTable()

// DefaultTable returns a table built from the known vocabulary.
func DefaultTable() *Table {
	m := make(map[string]bool, len(definitions))
	for _, def := range definitions {
		m[def.Key] = def.Displayable
	}
	return &Table{displayable: m}
}

// Displayable reports whether key may be shown. A nil table uses the default.
func (t *Table) Displayable(key string) bool {
	if t == nil {
		return defaultTable.Displayable(key)
	}
	shown, ok := t.displayable[key]
	if !ok {
		return true
	}
	return shown
}

// With returns a copy of t with overrides applied. Blank keys are ignored.
func (t *Table) With(overrides map[string]bool) *Table {
	if t == nil {
		t = defaultTable
	}
	m := make(map[string]bool, len(t.displayable)+len(overrides))
	for k, v := range t.displayable {
		m[k] = v
	}
	for k, v := range overrides {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		m[k] = v
	}
	return &Table{displayable: m}
}

// Hidden returns the sorted non-displayable keys of t.
func (t *Table) Hidden() []string {
	if t == nil {
		t = defaultTable
	}
	out := make([]string, 0)
	for k, v := range t.displayable {
		if !v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Definitions returns a copy of the known vocabulary sorted by key.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// DefinitionMap indexes the known vocabulary by key.
func DefinitionMap() map[string]Definition {
	out := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		out[def.Key] = def
	}
	return out
}
