package domain

// Customer is an account record owned by the Store API. The broker never
// persists customers itself; it only resolves and forwards them.
type Customer struct {
	ID          string `json:"_id"`
	DisplayName string `json:"display_name,omitempty"`
	Gender      string `json:"gender,omitempty"`
	MainEmail   string `json:"main_email,omitempty"`
	Locale      string `json:"locale,omitempty"`
}

// PublicProjection returns the subset of customer fields exposed on the
// simple (non-OAuth) login response.
type PublicProjection struct {
	DisplayName string `json:"display_name,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

// Public returns the customer's public projection.
func (c *Customer) Public() PublicProjection {
	return PublicProjection{
		DisplayName: c.DisplayName,
		Gender:      c.Gender,
	}
}
