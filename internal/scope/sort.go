package scope

// Sort is a validated sort specification.
type Sort struct {
	Column string
	Desc   bool
}

// sortColumns is the enumerated allow-list of sortable fields.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"due_date":   "due_date",
	"priority":   "priority",
}

// ParseSort validates a requested sort field and order. Unknown fields are
// ignored and fall back to created_at descending.
func ParseSort(field, order string) Sort {
	column, ok := sortColumns[field]
	if !ok {
		return Sort{Column: "created_at", Desc: true}
	}
	return Sort{Column: column, Desc: order != "asc"}
}
