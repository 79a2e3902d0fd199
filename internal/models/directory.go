package models

// Tenant holds the display fields the ledger reads from the tenant directory.
// The ledger never mutates tenants; it only references them by ID.
type Tenant struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Room holds the display fields the ledger reads from the room directory.
type Room struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Type   string `json:"type"`
	Floor  int    `json:"floor"`
}
