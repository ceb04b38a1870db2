package shared

// Filter bundles the pagination, ordering, and criteria options that
// list queries accept. Filters holds repository-specific criteria such
// as movement_type or branch_id.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter pages from the newest records, 20 at a time.
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}
