package domain

// QueryRequest describes one page of a browse request over a user's
// stored activities. Search is either empty (match all), a JSON object
// passed through to the store as a structured filter, or free text
// matched literally against the activity name.
type QueryRequest struct {
	Page     int
	PerPage  int
	Search   string
	SortBy   string
	SortDesc bool
}

// QueryResult carries one page of activities plus the total count over
// the full filtered set. Error holds a non-fatal diagnostic (for example
// a structured filter that failed to parse); the request itself still
// succeeds with an empty page.
type QueryResult struct {
	Total      int         `json:"total"`
	Activities []*Activity `json:"activities"`
	Error      string      `json:"error"`
}
