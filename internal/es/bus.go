// Package es carries the events raised while exporting over an in-process watermill bus.
package es

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	slogwatermill "github.com/denisss025/slog-watermill"
	"github.com/turbot/pipe-fittings/perr"

	"github.com/turbot/adfupgrade/internal/es/event"
)

type EventBus struct {
	runID  string
	pubSub *gochannel.GoChannel
	wg     sync.WaitGroup
}

// NewEventBus creates a bus whose publishers block until every subscriber has acknowledged the
// message, so handlers observe events in the order they were raised.
func NewEventBus(runID string) *EventBus {
	goChannelConfig := gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}
	return &EventBus{
		runID:  runID,
		pubSub: gochannel.NewGoChannel(goChannelConfig, slogwatermill.New(slog.Default())),
	}
}

func (b *EventBus) RunID() string {
	return b.runID
}

func (b *EventBus) Raise(ctx context.Context, evt event.RaisedEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return perr.InternalWithMessage("error encoding event " + evt.HandlerName() + ": " + err.Error())
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("run_id", evt.GetEvent().RunID)
	msg.SetContext(ctx)

	return b.pubSub.Publish(evt.HandlerName(), msg)
}

// PublishResourceExported raises a ResourceExported event for this bus's run.
func (b *EventBus) PublishResourceExported(ctx context.Context, resourceType, resourceName, id string) error {
	return b.Raise(ctx, event.NewResourceExported(b.runID, resourceType, resourceName, id))
}

func (b *EventBus) PublishExportFinished(ctx context.Context, state string, exported, alerts int) error {
	return b.Raise(ctx, event.NewExportFinished(b.runID, state, exported, alerts))
}

// Handle subscribes fn to the events raised under handlerName. A failing handler is logged and the
// message still acknowledged; events are never redelivered.
func (b *EventBus) Handle(ctx context.Context, handlerName string, fn func(ctx context.Context, payload []byte) error) error {
	messages, err := b.pubSub.Subscribe(ctx, handlerName)
	if err != nil {
		return perr.InternalWithMessage("error subscribing to " + handlerName + ": " + err.Error())
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			if err := fn(msg.Context(), msg.Payload); err != nil {
				slog.Error("event handler failed", "handler", handlerName, "message_uuid", msg.UUID, "error", err)
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *EventBus) HandleResourceExported(ctx context.Context, fn func(ctx context.Context, evt *event.ResourceExported) error) error {
	return b.Handle(ctx, event.HandlerResourceExported, func(ctx context.Context, payload []byte) error {
		evt := &event.ResourceExported{}
		if err := json.Unmarshal(payload, evt); err != nil {
			return err
		}
		return fn(ctx, evt)
	})
}

func (b *EventBus) HandleExportFinished(ctx context.Context, fn func(ctx context.Context, evt *event.ExportFinished) error) error {
	return b.Handle(ctx, event.HandlerExportFinished, func(ctx context.Context, payload []byte) error {
		evt := &event.ExportFinished{}
		if err := json.Unmarshal(payload, evt); err != nil {
			return err
		}
		return fn(ctx, evt)
	})
}

// Close stops the bus and waits for running handlers to drain.
func (b *EventBus) Close() error {
	err := b.pubSub.Close()
	b.wg.Wait()
	return err
}
