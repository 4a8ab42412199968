package customer

import (
	"context"
	"fmt"
	"slices"

	"github.com/lorrc/incident-desk/internal/core/domain"
	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

// StaticDirectory serves a fixed set of customers from memory. It backs local
// development and the /api/customers endpoint when no remote directory is set.
type StaticDirectory struct {
	customers map[string]domain.Customer
}

var _ ports.CustomerDirectory = (*StaticDirectory)(nil)

// NewStaticDirectory creates a directory holding the given customers. With no
// arguments it is seeded with the demo data set.
func NewStaticDirectory(customers ...domain.Customer) *StaticDirectory {
	if len(customers) == 0 {
		customers = seedCustomers()
	}
	d := &StaticDirectory{customers: make(map[string]domain.Customer, len(customers))}
	for _, c := range customers {
		d.customers[c.ID] = c
	}
	return d
}

func (d *StaticDirectory) GetCustomer(_ context.Context, customerID string) (*domain.Customer, error) {
	c, ok := d.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCustomerNotFound, customerID)
	}
	c.Services = slices.Clone(c.Services)
	return &c, nil
}

func seedCustomers() []domain.Customer {
	return []domain.Customer{
		{
			ID: "c-42", Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+47 123 45 678",
			Services: []domain.Service{domain.ServiceBroadband, domain.ServiceTV}, Priority: 2, Region: "Oslo",
		},
		{
			ID: "c-7", Name: "Grace Hopper", Email: "grace@example.com", Phone: "+47 987 65 432",
			Services: []domain.Service{domain.ServiceMobile, domain.ServiceBroadband}, Priority: 2, Region: "Bergen",
		},
		{
			ID: "c-100", Name: "Oslo Universitetssykehus", Email: "it@ous.no", Phone: "+47 23 07 00 00",
			Services: []domain.Service{domain.ServiceBroadband, domain.ServiceMobile, domain.ServiceTV, domain.ServiceVoIP},
			Priority: 1, Region: "Oslo",
		},
		{
			ID: "c-200", Name: "Katherine Johnson", Email: "katherine@example.com", Phone: "+47 444 98 765",
			Services: []domain.Service{domain.ServiceMobile}, Priority: 2, Region: "Stavanger",
		},
		{
			ID: "c-300", Name: "Bergen Brannvesen", Email: "it@bergen-brann.no", Phone: "+47 55 56 81 10",
			Services: []domain.Service{domain.ServiceBroadband, domain.ServiceMobile}, Priority: 1, Region: "Bergen",
		},
	}
}
