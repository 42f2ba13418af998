package entity

import "time"

type PurchaseState string

const (
	PurchaseIdle      PurchaseState = "idle"
	PurchasePending   PurchaseState = "pending"
	PurchaseSucceeded PurchaseState = "succeeded"
	PurchaseFailed    PurchaseState = "failed"
)

func (s PurchaseState) IsTerminal() bool {
	return s == PurchaseSucceeded || s == PurchaseFailed
}

// PurchaseCommand is a request to buy one item with the given currency names.
// A grouped offer passes every currency name of the group at once.
type PurchaseCommand struct {
	RequestID     string   `json:"requestId"`
	UserID        string   `json:"userId"`
	ItemID        string   `json:"itemId"`
	CurrencyNames []string `json:"currencies"`
}

type PurchaseEvent struct {
	RequestID string        `json:"requestId"`
	UserID    string        `json:"userId"`
	ItemID    string        `json:"itemId"`
	State     PurchaseState `json:"state"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

type PurchaseResult struct {
	RequestID        string        `json:"requestId"`
	ItemID           string        `json:"itemId"`
	State            PurchaseState `json:"state"`
	PurchasedItemIDs []string      `json:"purchasedItemIds,omitempty"`
	Message          string        `json:"message,omitempty"`
}
