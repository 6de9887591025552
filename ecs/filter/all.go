package filter

import "pkg.world.dev/world-engine/nucleus/tag"

type all struct{}

// All matches every entity.
func All() ComponentFilter {
	return &all{}
}

func (f *all) MatchesTraits(_ Traits) bool {
	return true
}

type contains struct {
	ids []tag.Tag
}

// Contains matches entities that hold all the component kinds specified. Extra kinds are ignored, and an
// empty list matches everything.
func Contains(ids ...tag.Tag) ComponentFilter {
	return &contains{ids: ids}
}

func (f *contains) MatchesTraits(traits Traits) bool {
	for _, id := range f.ids {
		if !traits.Has(id) {
			return false
		}
	}
	return true
}

type exact struct {
	ids []tag.Tag
}

// Exact matches entities that hold exactly the component kinds specified.
func Exact(ids ...tag.Tag) ComponentFilter {
	return &exact{ids: dedupe(ids)}
}

func (f *exact) MatchesTraits(traits Traits) bool {
	if traits.Len() != len(f.ids) {
		return false
	}
	for _, id := range f.ids {
		if !traits.Has(id) {
			return false
		}
	}
	return true
}

func dedupe(ids []tag.Tag) []tag.Tag {
	seen := make(map[tag.Tag]struct{}, len(ids))
	out := make([]tag.Tag, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
