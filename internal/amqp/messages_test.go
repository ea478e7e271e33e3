package amqp

import (
	"testing"
	"time"
)

func TestNewPurchaseEventMessage(t *testing.T) {
	before := time.Now()
	msg := NewPurchaseEventMessage(EventPurchaseCreated, 42, 7)
	after := time.Now()

	if msg.Event != EventPurchaseCreated {
		t.Errorf("Event = %q, want %q", msg.Event, EventPurchaseCreated)
	}
	if msg.PurchaseID != 42 || msg.ItemID != 7 {
		t.Errorf("IDs = %d/%d, want 42/7", msg.PurchaseID, msg.ItemID)
	}
	if msg.Timestamp.Before(before) || msg.Timestamp.After(after) {
		t.Errorf("Timestamp %v not between %v and %v", msg.Timestamp, before, after)
	}
}

func TestPurchaseEventMessageJSON(t *testing.T) {
	msg := NewPurchaseEventMessage(EventPurchaseDeleted, 42, 7)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := PurchaseEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if decoded.Event != msg.Event || decoded.PurchaseID != msg.PurchaseID || decoded.ItemID != msg.ItemID {
		t.Fatalf("decoded = %+v, want %+v", decoded, msg)
	}
	if !decoded.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("Timestamp = %v, want %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestPurchaseEventMessageFromJSONInvalid(t *testing.T) {
	if _, err := PurchaseEventMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
