package filter

import (
	"pkg.world.dev/world-engine/nucleus/tag"
)

// Traits is a read-only view over the component kinds an entity holds.
type Traits interface {
	Has(id tag.Tag) bool
	Len() int
}

// ComponentFilter is a filter that filters entities based on the component kinds they hold.
type ComponentFilter interface {
	// MatchesTraits returns true if the entity matches the filter.
	MatchesTraits(traits Traits) bool
}
