package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ProjectRequest is a project description submitted for analysis. Upstream
// producers send it as JSON; bare text payloads are accepted as the description.
type ProjectRequest struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	SubmittedBy string `json:"submitted_by,omitempty"`
}

// ParseRawEvent decodes a source message into a ProjectRequest. A JSON object
// payload is decoded; any other payload is the description itself. The
// message key stands in for a missing request ID.
func ParseRawEvent(raw RawEvent) (ProjectRequest, error) {
	value := bytes.TrimSpace(raw.Value)

	var req ProjectRequest
	if len(value) > 0 && value[0] == '{' {
		if err := json.Unmarshal(value, &req); err != nil {
			return ProjectRequest{}, stageErr(StageParse, "value", fmt.Errorf("decode project request: %w", err))
		}
	} else {
		req.Description = string(value)
	}

	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	if strings.TrimSpace(req.Description) == "" {
		return ProjectRequest{}, stageErr(StageParse, "description", ErrEmptyDescription)
	}
	return req, nil
}
