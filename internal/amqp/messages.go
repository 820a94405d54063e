package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RefreshRequest asks the worker to recompute and publish every report.
// The worker reloads the whole dataset, so the message carries no data.
type RefreshRequest struct {
	RequestID   string    `json:"request_id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewRefreshRequest(reason string) *RefreshRequest {
	return &RefreshRequest{
		RequestID:   uuid.NewString(),
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
	}
}

func (m *RefreshRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Validate checks the request id is a UUID and a timestamp is present.
func (m *RefreshRequest) Validate() error {
	if _, err := uuid.Parse(m.RequestID); err != nil {
		return fmt.Errorf("invalid request_id %q: %w", m.RequestID, err)
	}
	if m.RequestedAt.IsZero() {
		return errors.New("missing requested_at")
	}
	return nil
}

// RefreshRequestFromJSON decodes and validates a message body.
func RefreshRequestFromJSON(data []byte) (*RefreshRequest, error) {
	var msg RefreshRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
