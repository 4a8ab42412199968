package services

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/lorrc/incident-desk/internal/core/ports"
)

func marshalEventPayload(payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return json.RawMessage(data), nil
}

// publishEvent encodes payload as JSON and writes it to topic under key,
// tagged with eventType. Transport errors come back wrapped in ErrPublishFailure.
func publishEvent(ctx context.Context, publisher ports.MessagePublisher, topic, eventType, key string, payload any) error {
	data, err := marshalEventPayload(payload)
	if err != nil {
		return err
	}
	if err := publisher.Publish(ports.WithEventType(ctx, eventType), topic, key, data); err != nil {
		return apperrors.PublishFailure(topic, err)
	}
	return nil
}
