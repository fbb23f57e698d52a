package store

import (
	"fmt"

	"github.com/roach88/actdb/internal/ir"
)

// marshalPayload converts a value or args to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalPayload(v ir.IRValue) (string, error) {
	data, err := ir.MarshalCanonical(ir.Normalize(v))
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses canonical JSON TEXT.
// ir.UnmarshalIRValue decodes numbers via json.Number, so integers above
// 2^53 survive the round trip.
func unmarshalPayload(data string) (ir.IRValue, error) {
	v, err := ir.UnmarshalIRValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return v, nil
}
