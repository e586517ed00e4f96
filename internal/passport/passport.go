// Package passport assembles validated field mappings into the durable
// product-passport record. Assembly is the last gate before persistence:
// an incomplete record must never be published.
package passport

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/dppkit/passport-cli/internal/schema"
)

// Version is the record format version stamped at assembly.
const Version = 1

// idPattern is the canonical record id shape: uppercase category tag,
// dash, eight hex characters.
var idPattern = regexp.MustCompile(`^[A-Z]+-[0-9a-f]{8}$`)

// Record is the durable passport entity. It is constructed once by
// Assemble and never mutated afterwards: id and created_at are fixed at
// assembly time.
type Record struct {
	ID             string            `json:"id"`
	Category       schema.Category   `json:"category"`
	CreatedAt      time.Time         `json:"created_at"`
	Version        int               `json:"version"`
	DocumentFields map[string]string `json:"document_fields"`
	ImageFields    map[string]string `json:"image_fields"`
}

// ValidID reports whether id matches the canonical record id shape.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// NewID generates a fresh category-scoped record identifier.
func NewID(cat schema.Category) string {
	tag := strings.ToUpper(string(cat))
	return tag + "-" + uuid.New().String()[:8]
}

// MissingRequiredFieldsError reports the required document fields that
// were empty at assembly time. It names exactly the empty ones.
type MissingRequiredFieldsError struct {
	Fields []string
}

func (e *MissingRequiredFieldsError) Error() string {
	return fmt.Sprintf("passport: missing required fields: %s", strings.Join(e.Fields, ", "))
}

// ValidateFields normalizes reviewer-confirmed values and enforces the
// exact-domain invariant against the declared field set. Values are
// trimmed and NFC-normalized; a missing key or an extra key is an error,
// since validated mappings must mirror the schema exactly.
func ValidateFields(fields map[string]string, declared []string) (map[string]string, error) {
	out := make(map[string]string, len(declared))
	for _, f := range declared {
		v, ok := fields[f]
		if !ok {
			return nil, eris.Errorf("passport: validated fields missing declared field %q", f)
		}
		out[f] = norm.NFC.String(strings.TrimSpace(v))
	}
	if len(fields) != len(declared) {
		var extras []string
		declaredSet := make(map[string]bool, len(declared))
		for _, f := range declared {
			declaredSet[f] = true
		}
		for k := range fields {
			if !declaredSet[k] {
				extras = append(extras, k)
			}
		}
		sort.Strings(extras)
		return nil, eris.Errorf("passport: validated fields carry undeclared keys: %s", strings.Join(extras, ", "))
	}
	return out, nil
}

// Assemble builds an immutable Record from the two validated mappings.
// Every required document field must be non-empty; otherwise assembly
// fails with MissingRequiredFieldsError and no record is produced.
// Persistence is a separate explicit step.
func Assemble(cat schema.Category, docFields, imageFields map[string]string, reg *schema.Registry) (*Record, error) {
	docDeclared, err := reg.FieldsFor(cat, schema.SourceDocument)
	if err != nil {
		return nil, err
	}
	imgDeclared, err := reg.FieldsFor(cat, schema.SourceImage)
	if err != nil {
		return nil, err
	}

	doc, err := ValidateFields(docFields, docDeclared)
	if err != nil {
		return nil, err
	}
	img, err := ValidateFields(imageFields, imgDeclared)
	if err != nil {
		return nil, err
	}

	required, err := reg.Required(cat)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, f := range required {
		if doc[f] == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredFieldsError{Fields: missing}
	}

	return &Record{
		ID:             NewID(cat),
		Category:       cat,
		CreatedAt:      time.Now().UTC(),
		Version:        Version,
		DocumentFields: doc,
		ImageFields:    img,
	}, nil
}
