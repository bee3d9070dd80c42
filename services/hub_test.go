package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"venueBookerAPI/internal/types/event"
)

// sync pushes a no-op through the unbuffered Subscribe channel so every event
// queued before it is known to have been processed by Run.
func (h *Hub) sync(c *WSClient) {
	h.Subscribe <- subscription{client: c, scope: event.ScopeVenues, add: true}
}

func receive(t *testing.T, c *WSClient) event.Envelope {
	t.Helper()
	select {
	case data := <-c.Send:
		var env event.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("Bad envelope: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
		return event.Envelope{}
	}
}

func expectNothing(t *testing.T, c *WSClient) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("Unexpected delivery: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFansOutByScope(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	venues := NewWSClient(hub, nil, "user-a", []string{event.ScopeVenues})
	operators := NewWSClient(hub, nil, "user-b", []string{event.ScopeOperators})
	hub.Register <- venues
	hub.Register <- operators

	hub.Publish(event.ResourceCreated, event.ScopeVenues, map[string]string{"id": "v1"})
	hub.sync(venues)

	env := receive(t, venues)
	if env.Kind != event.ResourceCreated || env.Scope != event.ScopeVenues {
		t.Errorf("Unexpected envelope: %+v", env)
	}
	expectNothing(t, operators)
}

func TestHubPresenceTracking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	scope := event.MessageScope("user-a")
	client := NewWSClient(hub, nil, "user-a", []string{scope})
	hub.Register <- client
	hub.sync(client)

	if !hub.HasSubscriber(scope) {
		t.Error("Expected subscriber after register")
	}
	if hub.HasSubscriber(event.MessageScope("user-b")) {
		t.Error("Unexpected subscriber on a foreign scope")
	}

	hub.Unregister <- client
	hub.sync(client)
	if hub.HasSubscriber(scope) {
		t.Error("Expected no subscriber after unregister")
	}
}

func TestClientCannotJoinForeignMessageScope(t *testing.T) {
	hub := NewHub()
	client := NewWSClient(hub, nil, "user-a", []string{
		event.MessageScope("user-a"),
		event.MessageScope("user-b"),
		event.ScopeVenues,
	})

	if !client.scopes[event.MessageScope("user-a")] {
		t.Error("Own message scope should be allowed")
	}
	if client.scopes[event.MessageScope("user-b")] {
		t.Error("Foreign message scope must be filtered out")
	}
	if !client.scopes[event.ScopeVenues] {
		t.Error("Public scope should be allowed")
	}
}

func TestHubShutdownDropsAllState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	gaugeBefore := testutil.ToFloat64(wsConnectedClients)

	scope := event.MessageScope("user-a")
	client := NewWSClient(hub, nil, "user-a", []string{scope})
	hub.Register <- client
	hub.sync(client)

	if !hub.HasSubscriber(scope) {
		t.Fatal("Expected subscriber after register")
	}

	cancel()

	deadline := time.Now().Add(time.Second)
	for hub.HasSubscriber(scope) {
		if time.Now().After(deadline) {
			t.Fatal("Scope count not cleared after shutdown")
		}
		time.Sleep(10 * time.Millisecond)
	}

	for testutil.ToFloat64(wsConnectedClients) != gaugeBefore {
		if time.Now().After(deadline) {
			t.Fatalf("Connected-clients gauge not restored after shutdown: %f vs %f",
				testutil.ToFloat64(wsConnectedClients), gaugeBefore)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case _, ok := <-client.Send:
		if ok {
			t.Error("Expected the send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Error("Send channel not closed after shutdown")
	}
}

func TestHubDynamicSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	client := NewWSClient(hub, nil, "user-a", nil)
	hub.Register <- client

	hub.Subscribe <- subscription{client: client, scope: event.ScopeOperators, add: true}
	hub.Publish(event.ResourceDeleted, event.ScopeOperators, map[string]string{"id": "o1"})
	hub.sync(client)

	env := receive(t, client)
	if env.Kind != event.ResourceDeleted {
		t.Errorf("Unexpected envelope: %+v", env)
	}

	hub.Subscribe <- subscription{client: client, scope: event.ScopeOperators, add: false}
	hub.Publish(event.ResourceDeleted, event.ScopeOperators, map[string]string{"id": "o2"})
	hub.sync(client)

	// The sync subscribed the client to the venues scope, so only drain
	// non-operator traffic.
	select {
	case data := <-client.Send:
		var env event.Envelope
		if err := json.Unmarshal(data, &env); err == nil && env.Scope == event.ScopeOperators {
			t.Fatalf("Delivery after unsubscribe: %+v", env)
		}
	case <-time.After(50 * time.Millisecond):
	}
}
