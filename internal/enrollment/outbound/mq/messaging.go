package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/goseed/internal/enrollment/usecase"
	"github.com/shandysiswandi/goseed/internal/pkg/instrument"
	"github.com/shandysiswandi/goseed/internal/pkg/messaging"
	"github.com/shandysiswandi/goseed/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishCredentialIssued(ctx context.Context, msg usecase.CredentialIssuedEvent) error {
	ctx, span := m.ins.Tracer("enrollment.outbound.mq").Start(ctx, "PublishCredentialIssued")
	defer span.End()

	body, err := json.Marshal(event.CredentialIssuedMessage{
		EventID:   msg.EventID,
		Identity:  msg.Identity,
		Code:      msg.Code,
		ExpiresAt: msg.ExpiresAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.CredentialIssuedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
