package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/satriojati/otpgate/internal/notification/usecase"
	"github.com/satriojati/otpgate/internal/pkg/config"
	"github.com/satriojati/otpgate/internal/pkg/goroutine"
	"github.com/satriojati/otpgate/internal/pkg/instrument"
	"github.com/satriojati/otpgate/internal/pkg/messaging"
	"github.com/satriojati/otpgate/internal/pkg/uid"
	"github.com/satriojati/otpgate/internal/shared/event"
)

type uc interface {
	ConsumeOtpIssued(ctx context.Context, in usecase.ConsumeOtpIssuedInput) error
}

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	var consumers = []struct {
		name             string
		topic            string // destination where publisher sent message
		nsqConsumerName  string // for nsq
		natsConsumerName string // for nats
		handler          messaging.Handler
	}{
		{
			name:             event.OtpIssuedDestinationConsumerNotification,
			topic:            event.OtpIssuedDestination,
			nsqConsumerName:  event.OtpIssuedDestinationConsumerNotification,
			natsConsumerName: event.OtpIssuedDestinationConsumerNotification,
			handler:          mqHandler.OtpIssuedNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.nsqConsumerName),
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
