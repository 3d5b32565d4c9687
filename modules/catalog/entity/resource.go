package entity

// Resource is a bookable room. Capacity is informational only.
type Resource struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}
