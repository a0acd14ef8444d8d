// File: internal/labels/labels.go

// Package labels resolves model class indices to CWE identifiers and CWE
// abstract-type names. The map ships as a JSON asset keyed by the stringified
// class index, exactly as the classification heads were trained.
package labels

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrUnknownIndex reports a class index the label map has no entry for.
// The model and the map disagreeing is a deployment fault, not something to
// paper over with a blank label.
var ErrUnknownIndex = errors.New("labels: unknown class index")

// Map resolves CWE-ID and CWE-type class indices.
type Map struct {
	cweID   map[string]string
	cweType map[string]string
}

type labelMapFile struct {
	CWEID   map[string]string `json:"cwe_id"`
	CWEType map[string]string `json:"cwe_type"`
}

// Load reads the label map asset from disk.
func Load(path string) (*Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("labels: read %s: %w", path, err)
	}
	var f labelMapFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("labels: parse %s: %w", path, err)
	}
	if len(f.CWEID) == 0 || len(f.CWEType) == 0 {
		return nil, fmt.Errorf("labels: %s is missing cwe_id or cwe_type entries", path)
	}
	return &Map{cweID: f.CWEID, cweType: f.CWEType}, nil
}

// CWEID resolves a class index to its CWE identifier (e.g. "CWE-787").
func (m *Map) CWEID(idx int) (string, error) {
	label, ok := m.cweID[strconv.Itoa(idx)]
	if !ok {
		return "", fmt.Errorf("%w: cwe_id %d", ErrUnknownIndex, idx)
	}
	return label, nil
}

// CWEType resolves a class index to its CWE abstract type (e.g. "Base").
func (m *Map) CWEType(idx int) (string, error) {
	label, ok := m.cweType[strconv.Itoa(idx)]
	if !ok {
		return "", fmt.Errorf("%w: cwe_type %d", ErrUnknownIndex, idx)
	}
	return label, nil
}
