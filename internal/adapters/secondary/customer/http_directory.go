package customer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lorrc/incident-desk/internal/core/domain"
	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPDirectory looks customers up in a remote directory service at
// GET {baseURL}/api/customers/{id}.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

var _ ports.CustomerDirectory = (*HTTPDirectory)(nil)

// NewHTTPDirectory creates a directory client. timeout caps every request
// independently of the caller's context.
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (d *HTTPDirectory) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	endpoint := d.baseURL + "/api/customers/" + url.PathEscape(customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build customer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: customer directory: %w", apperrors.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCustomerNotFound, customerID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: customer directory returned %d", apperrors.ErrDependencyUnavailable, resp.StatusCode)
	}

	var customer domain.Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		return nil, fmt.Errorf("%w: decode customer: %w", apperrors.ErrDependencyUnavailable, err)
	}
	if customer.ID == "" {
		customer.ID = customerID
	}
	return &customer, nil
}
