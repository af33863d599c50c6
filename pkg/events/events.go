package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventSpecSaved           EventType = "spec.saved"
	EventSpecMissing         EventType = "spec.missing"
	EventKeyringIssued       EventType = "keyring.issued"
	EventTLSMaterialStored   EventType = "tls.stored"
	EventDeploymentPrepared  EventType = "deployment.prepared"
	EventGatewayAdd          EventType = "dashboard.gateway_add"
	EventSSLVerificationSet  EventType = "dashboard.ssl_verification"
	EventDashboardCommandErr EventType = "dashboard.command_failed"
)

// Event represents a reconciliation event
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Message   string
	Metadata  map[string]string
}

// NewEvent creates an event with a fresh ID
func NewEvent(eventType EventType, message string, metadata map[string]string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Message:   message,
		Metadata:  metadata,
	}
}

// Observer receives events emitted by the reconciliation core
type Observer interface {
	Emit(event *Event)
}

// Multi fans an event out to several observers in order
type Multi []Observer

func (m Multi) Emit(event *Event) {
	for _, o := range m {
		o.Emit(event)
	}
}

// Discard drops every event
var Discard Observer = discard{}

type discard struct{}

func (discard) Emit(*Event) {}

// Subscriber is a channel that receives events
type Subscriber chan *Event

// Broker manages event subscriptions and distribution
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

// Emit implements Observer
func (b *Broker) Emit(event *Event) {
	b.Publish(event)
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
