package domain

// Rider is a delivery agent as tracked by the rider registry.
type Rider struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Available      bool   `json:"is_available"`
	CurrentOrderID string `json:"current_order_id,omitempty"`

	// Seq is the registration order, used as the dispatch tie-breaker.
	Seq uint64 `json:"-"`
}

// HasOrder reports whether the rider currently holds an order.
func (r Rider) HasOrder() bool {
	return r.CurrentOrderID != ""
}
