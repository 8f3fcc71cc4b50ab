package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Scan implements sql.Scanner for CustomData, following the JSON-column
// marshal/unmarshal idiom used throughout this codebase for jsonb columns.
func (c *CustomData) Scan(value interface{}) error {
	if value == nil {
		*c = CustomData{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("custom_data: unsupported scan type %T", value)
	}
	if len(bytes) == 0 {
		*c = CustomData{}
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// Value implements driver.Valuer for CustomData.
func (c CustomData) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// interactionList is the jsonb-backed shape of Device.Interactions.
type interactionList []Interaction

// scanInteractions decodes a jsonb column value into a Device's interaction list.
func (d *Device) scanInteractions(value interface{}) error {
	if value == nil {
		d.Interactions = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("interactions: unsupported scan type %T", value)
	}
	var list interactionList
	if len(bytes) > 0 {
		if err := json.Unmarshal(bytes, &list); err != nil {
			return err
		}
	}
	d.Interactions = []Interaction(list)
	return nil
}

// InteractionsJSON marshals the device's interaction list for storage.
func (d *Device) InteractionsJSON() ([]byte, error) {
	return json.Marshal(interactionList(d.Interactions))
}

// ScanInteractions is the exported entry point the store package uses when
// scanning a devices row (keeps Device.Interactions unexported-scan details
// local to this file while letting store call it explicitly per §4.1 of
// the Store ledger).
func (d *Device) ScanInteractions(value interface{}) error {
	return d.scanInteractions(value)
}

// MetadataJSON marshals a log entry's metadata map for storage.
func (l *LogEntry) MetadataJSON() ([]byte, error) {
	if l.Metadata == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(l.Metadata)
}

// ScanMetadata unmarshals a jsonb metadata column into the log entry.
func (l *LogEntry) ScanMetadata(value interface{}) error {
	if value == nil {
		l.Metadata = map[string]interface{}{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("metadata: unsupported scan type %T", value)
	}
	if len(bytes) == 0 {
		l.Metadata = map[string]interface{}{}
		return nil
	}
	return json.Unmarshal(bytes, &l.Metadata)
}
