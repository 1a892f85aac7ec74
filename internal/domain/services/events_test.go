package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chewing-love-service/internal/demo"
)

func TestNewMQTTEventServiceDisabled(t *testing.T) {
	events := NewMQTTEventService(testConfig())
	_, ok := events.(*LogEventService)
	require.True(t, ok)
	assert.NoError(t, events.Connect())
	assert.False(t, events.IsConnected())
	assert.NoError(t, events.Publish(TopicDeviceStatus, "device_status", nil))
}

func TestMQTTPublishWithoutConnection(t *testing.T) {
	cfg := testConfig()
	cfg.MQTTEnabled = true
	cfg.MQTTBrokerURL = "tcp://127.0.0.1:1"
	events := NewMQTTEventService(cfg)

	assert.False(t, events.IsConnected())
	assert.Error(t, events.Publish(TopicAssignment, "assigned", map[string]interface{}{}))
	events.Disconnect()
}

func TestDemoTiming(t *testing.T) {
	assert.Equal(t, demo.DefaultTiming(), DemoTiming(testConfig()))

	cfg := testConfig()
	cfg.DemoPeriod = 6 * time.Second
	cfg.DemoDelay = 500 * time.Millisecond
	timing := DemoTiming(cfg)
	assert.Equal(t, 6*time.Second, timing.Period)
	assert.Zero(t, timing.Pulse)
	assert.Equal(t, 500*time.Millisecond, timing.Delay)
	assert.NoError(t, timing.Validate())
}

func TestDemoSessionManagerPublishesTransitions(t *testing.T) {
	events := &recordingEvents{}
	cfg := testConfig()
	cfg.DemoPeriod = 60 * time.Millisecond
	cfg.DemoDelay = 5 * time.Millisecond
	cfg.DemoDecayDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions, err := NewDemoSessionManager(ctx, cfg, events)
	require.NoError(t, err)
	defer sessions.CloseAll()

	id, _, err := sessions.Create()
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		for _, e := range events.Events() {
			if e.Topic == TopicDemoTransition && e.Payload["session_id"] == id {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

type blockingEvents struct {
	recordingEvents
	release chan struct{}
}

func (b *blockingEvents) Publish(topic, eventType string, payload interface{}) error {
	<-b.release
	return b.recordingEvents.Publish(topic, eventType, payload)
}

func TestDemoTogglesDoNotWaitForBroker(t *testing.T) {
	events := &blockingEvents{release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, err := NewDemoSessionManager(ctx, testConfig(), events)
	require.NoError(t, err)
	defer sessions.CloseAll()

	id, _, err := sessions.Create()
	require.NoError(t, err)
	sim, err := sessions.Get(id)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		sim.Toggle()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("toggle blocked on the event broker")
	}

	close(events.release)
	assert.Eventually(t, func() bool {
		for _, e := range events.Events() {
			if e.Type == string(demo.EventConnected) && e.Payload["session_id"] == id {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}
