package dto

type ProductFilters struct {
	Category        string
	SearchQuery     string // name or category, case-insensitive
	IDs             []string
	IncludeInactive bool
	Page            int
	PageSize        int
}
