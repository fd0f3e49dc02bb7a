package formdata

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"
)

// SnapshotVersion is written into every snapshot's metadata block.
const SnapshotVersion = "1.0"

// Data is the flat field-name to value mapping a hotel fills out.
type Data map[string]string

// Get returns the trimmed value of key.
func (d Data) Get(key string) string {
	return strings.TrimSpace(d[key])
}

// Clone copies d.
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	return maps.Clone(d)
}

// Metadata describes when and by which document a snapshot was captured.
type Metadata struct {
	Version    string    `json:"version"`
	LastSaved  time.Time `json:"lastSaved"`
	DocumentID string    `json:"documentId,omitempty"`
}

// Snapshot is one capture of the form. It serialises flat, with the logo
// under "logoData" and metadata under "_metadata", matching the data
// export format.
type Snapshot struct {
	Fields   Data
	Logo     string
	Metadata Metadata
}

// Data returns the fields plus the logo key, the view the assembler
// consumes.
func (s Snapshot) Data() Data {
	out := s.Fields.Clone()
	if s.Logo != "" {
		out[LogoKey] = s.Logo
	}
	return out
}

// Map renders the snapshot as a generic mapping suitable for Populate.
func (s Snapshot) Map() map[string]any {
	out := make(map[string]any, len(s.Fields)+2)
	for k, v := range s.Fields {
		out[k] = v
	}
	if s.Logo != "" {
		out[LogoKey] = s.Logo
	}
	out[MetadataKey] = map[string]any{
		"version":    s.Metadata.Version,
		"lastSaved":  s.Metadata.LastSaved.Format(time.RFC3339),
		"documentId": s.Metadata.DocumentID,
	}
	return out
}

// MarshalJSON flattens the snapshot. Keys come out sorted.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Fields)+2)
	for k, v := range s.Fields {
		out[k] = v
	}
	if s.Logo != "" {
		out[LogoKey] = s.Logo
	}
	out[MetadataKey] = s.Metadata
	return json.Marshal(out)
}

// UnmarshalJSON accepts the flat export shape. Non-string field values are
// rejected so a malformed document never half-applies.
func (s *Snapshot) UnmarshalJSON(raw []byte) error {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	if generic == nil {
		return fmt.Errorf("%w: snapshot is not an object", ErrInvalidData)
	}
	next := Snapshot{Fields: make(Data, len(generic))}
	for key, value := range generic {
		switch {
		case key == MetadataKey:
			if err := json.Unmarshal(value, &next.Metadata); err != nil {
				return fmt.Errorf("decode %s: %w", MetadataKey, err)
			}
		case strings.HasPrefix(key, "_"):
			continue
		case key == LogoKey:
			if err := json.Unmarshal(value, &next.Logo); err != nil {
				return fmt.Errorf("decode %s: %w", LogoKey, err)
			}
		default:
			var str *string
			if err := json.Unmarshal(value, &str); err != nil {
				return fmt.Errorf("decode field %q: %w", key, err)
			}
			if str != nil {
				next.Fields[key] = *str
			} else {
				next.Fields[key] = ""
			}
		}
	}
	*s = next
	return nil
}
