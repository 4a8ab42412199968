package delivery

import (
	"context"
	"log/slog"

	"github.com/lorrc/incident-desk/internal/core/ports"
)

// LogNotifier is a secondary adapter that simulates customer delivery by
// logging the message. It implements the ports.Notifier interface.
type LogNotifier struct {
	directory ports.CustomerDirectory
	logger    *slog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a new simulated notifier.
// directory is optional and only used to add contact details to the log line.
func NewLogNotifier(directory ports.CustomerDirectory, logger *slog.Logger) *LogNotifier {
	return &LogNotifier{
		directory: directory,
		logger:    logger.With("component", "notifier"),
	}
}

// Deliver logs the notification instead of sending it. It fails only when
// the context is already done.
func (n *LogNotifier) Deliver(ctx context.Context, customerID, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attrs := []any{"customer_id", customerID, "message", message}

	// 1. Enrich with contact details when the customer is known
	if n.directory != nil {
		if customer, err := n.directory.GetCustomer(ctx, customerID); err == nil {
			attrs = append(attrs, "to_name", customer.Name, "to_email", customer.Email)
		}
	}

	// 2. Log the simulated delivery
	n.logger.InfoContext(ctx, "[SIMULATION] sending to customer", attrs...)
	return nil
}
