package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExportRequestMessage asks a worker to render the report in the listed
// formats. The worker reads the ledger itself; Revision records the state the
// requester saw.
type ExportRequestMessage struct {
	ID        string    `json:"id"`
	Formats   []string  `json:"formats"`
	Period    string    `json:"period,omitempty"`
	Date      string    `json:"date,omitempty"`
	Query     string    `json:"query,omitempty"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExportRequestMessage(formats []string, revision int64) *ExportRequestMessage {
	return &ExportRequestMessage{
		ID:        uuid.NewString(),
		Formats:   append([]string(nil), formats...),
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

func (m *ExportRequestMessage) Validate() error {
	if _, err := uuid.Parse(m.ID); err != nil {
		return fmt.Errorf("invalid export id %q: %w", m.ID, err)
	}
	if len(m.Formats) == 0 {
		return errors.New("export request without formats")
	}
	return nil
}

func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestMessageFromJSON decodes and validates a message body.
func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
