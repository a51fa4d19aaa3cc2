package dto

type CategoryFilters struct {
	SearchQuery     string
	IncludeInactive bool
}
