package models

// Currency is the persisted form of a registry entry.
type Currency struct {
	ID   int64  `json:"id"`   // Surrogate key assigned by the store
	Code string `json:"code"` // Unique ISO 4217 code (e.g., "USD")
	Name string `json:"name"`
}
