// Package records deals with the regage record files: parsing, discovery
// under the output root, and archiving after processing.
package records

import (
	"encoding/json"
	"fmt"
	"strings"
)

// unknownName is the sentinel for records missing a producer or waste name.
const unknownName = "desconocido"

// Record is one regage case as extracted from the E3L submission. All fields
// are optional in the source JSON; ids default to empty strings, names to the
// unknown sentinel.
type Record struct {
	Regage            string `json:"regage"`
	ProducerNIF       string `json:"nif_productor"`
	RepresentativeNIF string `json:"nif_representante"`
	ProducerName      string `json:"nombre_productor"`
	WasteName         string `json:"nombre_residuo"`
}

// Parse decodes one record from its JSON file contents.
func Parse(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("malformed record: %w", err)
	}
	return r, nil
}

// ProducerFolder is the sanitized producer name used for the download folder
// and the archive partition.
func (r Record) ProducerFolder() string {
	return sanitizeName(r.ProducerName)
}

// WasteFolder is the sanitized waste name used for the download folder.
func (r Record) WasteFolder() string {
	return sanitizeName(r.WasteName)
}

// sanitizeName makes a name safe as a folder component: spaces become
// underscores and the hazardous-waste asterisk marker is dropped. Empty names
// fall back to the unknown sentinel.
func sanitizeName(name string) string {
	if name == "" {
		return unknownName
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "*", "")
	if name == "" {
		return unknownName
	}
	return name
}
