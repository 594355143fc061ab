package domain

// ListParams carries position/size values from the HTTP layer to the store.
// Offset counts tag records to skip; Limit counts listing rows to produce.
type ListParams struct {
	// Offset is the number of active tag records to skip, starting at 0.
	Offset int
	// Limit is the number of rows after which listing stops.
	Limit int
}

// NewListParams builds ListParams from optional HTTP query params.
// Nil or negative values fall back to defaults (offset=0, limit=20).
// The limit is capped at 100 to prevent runaway scans.
func NewListParams(position, size *int) ListParams {
	p := ListParams{Offset: 0, Limit: 20}
	if position != nil && *position >= 0 {
		p.Offset = *position
	}
	if size != nil && *size >= 1 {
		p.Limit = *size
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}
