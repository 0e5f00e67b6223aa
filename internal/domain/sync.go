package domain

// SyncResult reports the outcome of one incremental sync: how many new
// activities were pulled from the remote API and the stored total after
// the insert.
type SyncResult struct {
	Total       int `json:"total"`
	NumInserted int `json:"num_inserted"`
}
