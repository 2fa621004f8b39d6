package ner

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fallbacks used when the recognizer omits a field.
const (
	MissingWord  = "N/A"
	MissingLabel = "N/A"
)

// LabelSource records which response field produced an entity's label.
// Aggregating pipelines answer with entity_group; others with label.
type LabelSource int

const (
	LabelMissing LabelSource = iota
	LabelFromEntityGroup
	LabelFromLabel
)

func (s LabelSource) String() string {
	switch s {
	case LabelFromEntityGroup:
		return "entity_group"
	case LabelFromLabel:
		return "label"
	default:
		return "missing"
	}
}

func (s LabelSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entity is one recognized span.
type Entity struct {
	Word        string      `json:"word"`
	Label       string      `json:"label"`
	Score       float64     `json:"score"`
	LabelSource LabelSource `json:"label_source"`
}

// rawEntity mirrors the token-classification wire record. Pointers
// distinguish an absent field from a zero value.
type rawEntity struct {
	Word        *string  `json:"word"`
	EntityGroup *string  `json:"entity_group"`
	Label       *string  `json:"label"`
	Score       *float64 `json:"score"`
}

func (r rawEntity) entity() Entity {
	e := Entity{
		Word:  MissingWord,
		Label: MissingLabel,
	}
	if r.Word != nil {
		e.Word = *r.Word
	}
	switch {
	case r.EntityGroup != nil:
		e.Label = *r.EntityGroup
		e.LabelSource = LabelFromEntityGroup
	case r.Label != nil:
		e.Label = *r.Label
		e.LabelSource = LabelFromLabel
	}
	if r.Score != nil {
		e.Score = *r.Score
	}
	return e
}

// DecodeEntities parses a token-classification response. Both a flat array of
// records and a batched array of arrays are accepted; batches are flattened in
// order. An {"error": ...} object is reported as an error.
func DecodeEntities(data []byte) ([]Entity, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	if data[0] == '{' {
		var apiErr struct {
			Error any `json:"error"`
		}
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != nil {
			return nil, fmt.Errorf("inference error: %v", apiErr.Error)
		}
		return nil, fmt.Errorf("unexpected response object: %s", truncate(string(data), 200))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	entities := make([]Entity, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '[' {
			var batch []rawEntity
			if err := json.Unmarshal(item, &batch); err != nil {
				return nil, fmt.Errorf("decode batch %d: %w", i, err)
			}
			for _, r := range batch {
				entities = append(entities, r.entity())
			}
			continue
		}

		var r rawEntity
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, err)
		}
		entities = append(entities, r.entity())
	}
	return entities, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
