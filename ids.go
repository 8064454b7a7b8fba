package consolekit

import "fmt"

// Fragment and control ids are constructed deterministically from a unique
// token and a role suffix. Handlers locate their targets by these
// constructed ids, never by structural traversal, so any renderer producing
// markup must use the same derivation.

// ContentID is the id of the fragment body for a unique token.
func ContentID(unique string) string {
	return "content_" + unique
}

// AddID is the id of a repeated field's add control.
func AddID(unique string) string {
	return "add_" + unique
}

// RemoveID is the id of a repeated entry's remove control.
func RemoveID(unique string) string {
	return "remove_" + unique
}

// PickerID is the id of a one-of field's option picker.
func PickerID(prefix string) string {
	return prefix + "_picker"
}

// EntryID is the id of the container holding repeated entry idx.
func EntryID(unique string, idx int) string {
	return fmt.Sprintf("%s%s%d", unique, PathSep, idx)
}
