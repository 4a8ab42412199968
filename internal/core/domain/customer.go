package domain

import "fmt"

// Customer is the directory record used to enrich tickets.
type Customer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Services []Service `json:"services"`
	Priority int       `json:"priority"`
	Region   string    `json:"region"`
}

// Label is the human readable reference used in ticket descriptions.
func (c *Customer) Label() string {
	if c.Name == "" {
		return CustomerFallbackLabel(c.ID)
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}
