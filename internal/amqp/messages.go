package amqp

import (
	"encoding/json"
	"time"
)

// ImportJobMessage tells the worker that a staged statement upload is ready
// to be processed. It carries only the job ID; the worker fetches payload
// and metadata from the database.
type ImportJobMessage struct {
	JobID     string    `json:"job_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewImportJobMessage creates a message for a staged import job.
func NewImportJobMessage(jobID string) *ImportJobMessage {
	return &ImportJobMessage{
		JobID:     jobID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ImportJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportJobMessageFromJSON creates a message from JSON bytes.
func ImportJobMessageFromJSON(data []byte) (*ImportJobMessage, error) {
	var msg ImportJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
