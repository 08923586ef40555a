package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/serroba/url-mapper/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps every message it is asked to publish, per topic.
type recordingPublisher struct {
	byTopic    map[string][]*message.Message
	publishErr error
	closeErr   error
	closed     bool
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{byTopic: make(map[string][]*message.Message)}
}

func (r *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	if r.publishErr != nil {
		return r.publishErr
	}

	r.byTopic[topic] = append(r.byTopic[topic], msgs...)

	return nil
}

func (r *recordingPublisher) Close() error {
	r.closed = true

	return r.closeErr
}

func TestNewPublishFunc(t *testing.T) {
	tests := []struct {
		name              string
		ctx               context.Context
		wantCorrelationID string
	}{
		{
			name: "without correlation id",
			ctx:  context.Background(),
		},
		{
			name:              "with correlation id",
			ctx:               messaging.ContextWithCorrelationID(context.Background(), "req-42"),
			wantCorrelationID: "req-42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := newRecordingPublisher()
			publish := messaging.NewPublishFunc[testEvent](pub, testTopic)

			require.NoError(t, publish(tt.ctx, &testEvent{ID: "123", Name: "test"}))
			require.Len(t, pub.byTopic[testTopic], 1)

			msg := pub.byTopic[testTopic][0]
			assert.NotEmpty(t, msg.UUID)
			assert.Equal(t, tt.wantCorrelationID, middleware.MessageCorrelationID(msg))

			var got testEvent
			require.NoError(t, json.Unmarshal(msg.Payload, &got))
			assert.Equal(t, testEvent{ID: "123", Name: "test"}, got)
		})
	}
}

func TestNewPublishFunc_PublishError(t *testing.T) {
	pub := newRecordingPublisher()
	pub.publishErr = errors.New("publish error")

	publish := messaging.NewPublishFunc[testEvent](pub, testTopic)

	assert.ErrorIs(t, publish(context.Background(), &testEvent{ID: "1"}), pub.publishErr)
}

func TestDiscard(t *testing.T) {
	publish := messaging.Discard[testEvent]()

	assert.NoError(t, publish(context.Background(), &testEvent{ID: "1"}))
}

func TestPublisherGroup(t *testing.T) {
	pub := newRecordingPublisher()
	group := messaging.NewPublisherGroup(pub)

	assert.Same(t, pub, group.Publisher())
	require.NoError(t, group.Shutdown())
	assert.True(t, pub.closed)

	pub.closeErr = errors.New("close error")
	assert.Error(t, group.Shutdown())
}
