package models

// SiblingBox is the on-screen geometry of one list item at drop time.
type SiblingBox struct {
	ID     int64   `json:"id"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// MoveRequest carries exactly one way of naming the drop target.
type MoveRequest struct {
	To       *int         `json:"to,omitempty"`
	Before   *int64       `json:"before,omitempty"`
	PointerY *float64     `json:"pointer_y,omitempty"`
	Siblings []SiblingBox `json:"siblings,omitempty"`
}

type OrderRequest struct {
	IDs []int64 `json:"ids"`
}

// WSMessage is pushed to admin websocket clients.
type WSMessage struct {
	Event     string      `json:"event"` // "snapshot", "data_published", "connected"
	Timestamp int64       `json:"timestamp,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
}
