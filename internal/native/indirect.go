package native

import "strings"

// Indirect display names are string-table references of the form
// "@path,-id;extra". The subsystem hands them out for inbox sessions (system
// sounds most notably) and expects clients to resolve them through the OS
// string table.
const indirectMarker = "@"

// StringTable resolves an indirect string reference to its display text.
type StringTable interface {
	Load(ref string) (string, error)
}

// IsIndirectString reports whether name is a string-table reference rather
// than literal display text.
func IsIndirectString(name string) bool {
	return strings.HasPrefix(name, indirectMarker)
}

// ResolveDisplayName resolves name through table when it is indirect,
// returning literal names untouched. A nil table leaves indirect names as-is.
func ResolveDisplayName(name string, table StringTable) (string, error) {
	if !IsIndirectString(name) || table == nil {
		return name, nil
	}
	return table.Load(name)
}
