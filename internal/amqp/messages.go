package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventPurchaseCreated = "purchase.created"
	EventPurchaseDeleted = "purchase.deleted"
)

// PurchaseEventMessage announces that a purchase was recorded or removed.
// It carries only identifiers; consumers fetch the full row themselves.
type PurchaseEventMessage struct {
	Event      string    `json:"event"`
	PurchaseID int64     `json:"purchase_id"`
	ItemID     int64     `json:"item_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewPurchaseEventMessage creates an event message stamped with now.
func NewPurchaseEventMessage(event string, purchaseID, itemID int64) *PurchaseEventMessage {
	return &PurchaseEventMessage{
		Event:      event,
		PurchaseID: purchaseID,
		ItemID:     itemID,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *PurchaseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PurchaseEventMessageFromJSON creates a message from JSON bytes.
func PurchaseEventMessageFromJSON(data []byte) (*PurchaseEventMessage, error) {
	var msg PurchaseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
