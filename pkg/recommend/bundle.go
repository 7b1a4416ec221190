package recommend

// Counts are the per-bundle recommendation counters. Missing counters are
// defaulted to zero at the deserialization boundary, so a zero value here
// always means "zero or absent" and internal code never re-checks presence.
type Counts struct {
	Upsell           int `json:"upsell"`
	Accepted         int `json:"accepted"`
	Rejected         int `json:"rejected"`
	AlreadyPurchased int `json:"already_purchased"`
	Total            int `json:"total"`
}

// Sum is the recomputed total over the four counters, used when the source
// did not report its own total.
func (c Counts) Sum() int {
	return c.Upsell + c.Accepted + c.Rejected + c.AlreadyPurchased
}

// LineItem is one recommendation row inside a bundle.
type LineItem struct {
	Product string `json:"product"`
	Status  string `json:"status"`
	Reason  string `json:"reason"`
}

// Bundle is the structured recommendation result for one customer.
type Bundle struct {
	EntityId    string     `json:"entity_id"`
	DisplayName string     `json:"display_name"`
	Counts      Counts     `json:"counts"`
	LineItems   []LineItem `json:"line_items"`
	GeneratedAt string     `json:"generated_at"`
}
