package models

import (
	"fmt"
	"strconv"
	"strings"
)

const eventRefPrefix = "EVENT:"

// EncodeEventRef renders the payload embedded in an event's QR code.
func EncodeEventRef(eventID int64) string {
	return eventRefPrefix + strconv.FormatInt(eventID, 10)
}

// ParseEventRef extracts the event ID from a scanned QR payload.
func ParseEventRef(payload string) (int64, error) {
	if !strings.HasPrefix(payload, eventRefPrefix) {
		return 0, fmt.Errorf("not an event reference: %q", payload)
	}
	id, err := strconv.ParseInt(payload[len(eventRefPrefix):], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse event reference %q: %w", payload, err)
	}
	return id, nil
}
