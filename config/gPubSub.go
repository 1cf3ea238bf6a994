package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
)

var (
	pubsubOnce   sync.Once
	pubsubClient *pubsub.Client
	pubsubErr    error
)

// WorkOrderEvent is the payload published to the work order topic after a
// lifecycle change commits. Relay services fan it out to connected clients.
type WorkOrderEvent struct {
	Type            string     `json:"type"`
	WorkOrderId     int        `json:"wo_id"`
	Code            string     `json:"code"`
	Status          string     `json:"status"`
	ActualStartDate *time.Time `json:"actual_start_date,omitempty"`
	ActualEndDate   *time.Time `json:"actual_end_date,omitempty"`
}

func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubOnce.Do(func() {
		projectId := os.Getenv("GOOGLE_CLOUD_PROJECT")
		if projectId == "" {
			pubsubErr = fmt.Errorf("GOOGLE_CLOUD_PROJECT is not set")
			return
		}
		pubsubClient, pubsubErr = pubsub.NewClient(ctx, projectId)
	})
	return pubsubClient, pubsubErr
}

// PublishWorkOrderUpdate publishes a work order lifecycle event. Delivery is
// at most once from the caller's point of view: errors are returned for
// logging but the business transaction has already committed.
func PublishWorkOrderUpdate(ctx context.Context, event *WorkOrderEvent) error {
	topicName := os.Getenv("WORK_ORDER_TOPIC")
	if topicName == "" {
		// Topic unset means notifications are disabled for this deployment.
		return nil
	}

	client, err := getPubSubClient(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := client.Topic(topicName)
	result := topic.Publish(ctx, &pubsub.Message{Data: payload})

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = result.Get(publishCtx)
	return err
}
