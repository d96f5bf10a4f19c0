package publishers

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestGCPPubSubPublisherPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "members"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := newGCPPubSubPublisher(ctx, PublisherConfig{
		ID:   "pubsub",
		Type: TypeGCPPubSub,
		GCPPubSub: &GCPPubSubPublisherConfig{
			ProjectID: "test-project",
			Topic:     "members",
		},
	}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubPublisher: %v", err)
	}
	defer pub.(io.Closer).Close()

	evt := NewMemberEvent(ActionSubscribed, "a@b.com", "list-1", map[string]any{"status": "subscribed"})
	if err := pub.Publish(ctx, evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["list_id"] != "list-1" || msgs[0].Attributes["action"] != ActionSubscribed {
		t.Fatalf("unexpected attributes %#v", msgs[0].Attributes)
	}
	var got MemberEvent
	if err := json.Unmarshal(msgs[0].Data, &got); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got.ID != evt.ID || got.Email != "a@b.com" {
		t.Fatalf("unexpected event %+v", got)
	}
}
