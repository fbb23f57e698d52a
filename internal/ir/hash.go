package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainValue = "actdb/value/v1"
	DomainEntry = "actdb/entry/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ValueHash computes the content hash of a value.
// Values that are Equal but differ in number representation (IRInt(2) vs
// IRFloat(2)) hash identically because canonical JSON renders both as "2".
func ValueHash(v IRValue) (string, error) {
	canonical, err := MarshalCanonical(Normalize(v))
	if err != nil {
		return "", fmt.Errorf("ValueHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainValue, canonical), nil
}

// EntryHash computes the identity hash of a log entry's durable fields.
// name is the registry name of an action; seq is -1 for value entries.
func EntryHash(id string, version int, seq int, name string, payload IRValue) (string, error) {
	obj := IRObject{
		"id":      IRString(id),
		"version": IRInt(version),
		"seq":     IRInt(seq),
		"name":    IRString(name),
		"payload": Normalize(payload),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EntryHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEntry, canonical), nil
}

// MustValueHash is like ValueHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustValueHash(v IRValue) string {
	h, err := ValueHash(v)
	if err != nil {
		panic(err)
	}
	return h
}
