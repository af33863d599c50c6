package main

import (
	"testing"
	"time"

	"github.com/cuemby/iscsigw/pkg/events"
	"github.com/cuemby/iscsigw/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountEventsStopsOnUnsubscribe(t *testing.T) {
	counter := metrics.EventsTotal.WithLabelValues(string(events.EventGatewayAdd))
	before := testutil.ToFloat64(counter)

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	sub := broker.Subscribe()

	done := make(chan struct{})
	go func() {
		countEvents(sub)
		close(done)
	}()

	broker.Publish(events.NewEvent(events.EventGatewayAdd, "Adding iSCSI gateway", nil))
	broker.Publish(events.NewEvent(events.EventGatewayAdd, "Adding iSCSI gateway", nil))
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(counter) == before+2
	}, time.Second, 10*time.Millisecond)

	broker.Unsubscribe(sub)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countEvents did not return after unsubscribe")
	}
	assert.Equal(t, 0, broker.SubscriberCount())
}
