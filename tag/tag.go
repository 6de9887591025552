// Package tag derives and tracks component-kind identifiers.
//
// A Tag identifies a component or system-target type. The ecs package only ever compares tags for
// equality; how a tag is produced is up to the caller. Of implements the reference derivation, a 32-bit
// rolling hash of the type's declared name rendered as 8 hex digits, and Registry catches collisions
// during startup before any World runs.
package tag

import (
	"fmt"
	"unicode/utf16"
)

// Tag is an opaque component-kind identifier.
type Tag string

// Of derives the tag for a type name. The same name always produces the same tag.
func Of(name string) Tag {
	var h int32
	for _, unit := range utf16.Encode([]rune(name)) {
		h = (h << 5) - h + int32(unit)
	}
	return Tag(fmt.Sprintf("%08x", uint32(h)))
}

func (t Tag) String() string {
	return string(t)
}
