package passport

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/dppkit/passport-cli/internal/schema"
)

// Draft is the reviewable artifact written between extraction and
// publication. A human edits the field values in place, then feeds the
// file to publish. Diagnostics carry the raw oracle responses so a
// degraded extraction stays visible during review.
type Draft struct {
	Category       schema.Category   `json:"category"`
	DocumentFields map[string]string `json:"document_fields"`
	ImageFields    map[string]string `json:"image_fields"`
	Diagnostics    Diagnostics       `json:"diagnostics,omitzero"`
}

// Diagnostics records how each extraction went. Raw responses are kept
// verbatim; FromSynonym notes values that arrived under alternate keys.
type Diagnostics struct {
	DocumentParsed      bool              `json:"document_parsed,omitempty"`
	DocumentRaw         string            `json:"document_raw,omitempty"`
	DocumentFromSynonym map[string]string `json:"document_from_synonym,omitempty"`
	DocumentError       string            `json:"document_error,omitempty"`
	ImageParsed         bool              `json:"image_parsed,omitempty"`
	ImageRaw            string            `json:"image_raw,omitempty"`
	ImageFromSynonym    map[string]string `json:"image_from_synonym,omitempty"`
	ImageError          string            `json:"image_error,omitempty"`
}

// WriteDraft serializes a draft to path with human-friendly indentation.
func WriteDraft(path string, d *Draft) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return eris.Wrap(err, "passport: marshal draft")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "passport: write draft %s", path)
	}
	return nil
}

// ReadDraft loads a reviewed draft from path.
func ReadDraft(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "passport: read draft %s", path)
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, eris.Wrapf(err, "passport: parse draft %s", path)
	}
	if d.Category == "" {
		return nil, eris.Errorf("passport: draft %s has no category", path)
	}
	return &d, nil
}
