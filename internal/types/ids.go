// internal/types/ids.go
package types

import (
	"strings"

	"github.com/google/uuid"
)

// CallID tags every log line of one converse call.
type CallID string

// BatchID tags the prompts of one batch run.
type BatchID string

// ItemKey names one prompt inside a batch.
type ItemKey string

func NewCallID() CallID {
	return CallID(uuid.New().String())
}

func NewBatchID() BatchID {
	return BatchID(uuid.New().String())
}

func NewItemKey(parts ...string) ItemKey {
	return ItemKey(strings.Join(parts, ":"))
}
