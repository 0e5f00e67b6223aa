package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeSyncStarted       MessageType = "sync_started"
	TypeSyncPage          MessageType = "sync_page"
	TypeSyncCompleted     MessageType = "sync_completed"
	TypeCollectionDropped MessageType = "collection_dropped"
	TypePing              MessageType = "ping"
	TypePong              MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type SyncStartedPayload struct {
	StartedAt time.Time `json:"started_at"`
}

type SyncPagePayload struct {
	Page    int `json:"page"`
	Fetched int `json:"fetched"`
}

type SyncCompletedPayload struct {
	Total       int `json:"total"`
	NumInserted int `json:"num_inserted"`
}

type CollectionDroppedPayload struct {
	DroppedAt time.Time `json:"dropped_at"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
