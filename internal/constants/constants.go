package constants

// Context keys set by the auth middleware.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Pagination bounds. Page and size are 1-based; size is clamped to MaxPageSize.
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

const MinPasswordLength = 8

// DashboardHistogramDays is the window of the daily completed-count histogram.
const DashboardHistogramDays = 7
