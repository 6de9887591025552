package filter

type not struct {
	filter ComponentFilter
}

func Not(filter ComponentFilter) ComponentFilter {
	return &not{filter: filter}
}

func (f *not) MatchesTraits(traits Traits) bool {
	return !f.filter.MatchesTraits(traits)
}

type and struct {
	filters []ComponentFilter
}

func And(filters ...ComponentFilter) ComponentFilter {
	return &and{filters: filters}
}

func (f *and) MatchesTraits(traits Traits) bool {
	for _, filter := range f.filters {
		if !filter.MatchesTraits(traits) {
			return false
		}
	}
	return true
}

type or struct {
	filters []ComponentFilter
}

func Or(filters ...ComponentFilter) ComponentFilter {
	return &or{filters: filters}
}

func (f *or) MatchesTraits(traits Traits) bool {
	for _, filter := range f.filters {
		if filter.MatchesTraits(traits) {
			return true
		}
	}
	return false
}
