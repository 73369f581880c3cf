package enum

// CartStatus represents the lifecycle state of an in-progress sale cart.
// Carts are session-scoped and never persisted, so no sql/driver plumbing.
type CartStatus string

const (
	// CartStatusBuilding means the cart is freely mutable
	CartStatusBuilding CartStatus = "building"
	// CartStatusSubmitting means a checkout is in flight; mutations are rejected
	CartStatusSubmitting CartStatus = "submitting"
	// CartStatusCompleted means the sale was recorded; the cart is about to reset
	CartStatusCompleted CartStatus = "completed"
	// CartStatusFailed means the last checkout failed; contents are preserved
	CartStatusFailed CartStatus = "failed"
)

func (s CartStatus) String() string {
	return string(s)
}
