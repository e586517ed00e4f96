// Package schema declares, per product category, the fields a passport
// record must carry, split by the source they are extracted from.
package schema

import (
	"os"
	"regexp"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Category identifies a product type and selects which schema applies.
type Category string

// Recognized product categories. The set is closed: adding a category
// means adding a registry entry, not changing pipeline logic.
const (
	CategoryMobile     Category = "mobile"
	CategoryLampada    Category = "lampada"
	CategoryBicicletta Category = "bicicletta"
)

// Source identifies which input a field is extracted from.
type Source string

const (
	SourceDocument Source = "document"
	SourceImage    Source = "image"
)

// ErrUnknownCategory is returned when a category is not registered.
var ErrUnknownCategory = eris.New("schema: unknown category")

// categoryNamePattern restricts category names to lowercase ASCII
// letters. The name is uppercased into the record id prefix, so digits,
// hyphens or accented letters would yield ids no store accepts.
var categoryNamePattern = regexp.MustCompile(`^[a-z]+$`)

// CategorySchema holds the ordered field lists for one category. Order is
// presentational only; names are unique within each list.
type CategorySchema struct {
	DocumentFields []string `yaml:"document_fields"`
	ImageFields    []string `yaml:"image_fields"`
	Required       []string `yaml:"required"`
}

// Registry is the single source of truth for which fields must appear in
// a final record. It is immutable after construction.
type Registry struct {
	categories map[Category]CategorySchema
}

// NewRegistry creates a Registry from explicit category schemas.
func NewRegistry(categories map[Category]CategorySchema) *Registry {
	cp := make(map[Category]CategorySchema, len(categories))
	for cat, cs := range categories {
		cp[cat] = CategorySchema{
			DocumentFields: append([]string(nil), cs.DocumentFields...),
			ImageFields:    append([]string(nil), cs.ImageFields...),
			Required:       append([]string(nil), cs.Required...),
		}
	}
	return &Registry{categories: cp}
}

// Default returns the built-in registry covering the three product
// categories.
func Default() *Registry {
	return NewRegistry(defaultCategories)
}

// Load reads a yaml registry file and returns a Registry built from it.
// The file replaces the built-in defaults wholesale.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read registry %s", path)
	}
	var raw map[Category]CategorySchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "schema: parse registry %s", path)
	}
	if len(raw) == 0 {
		return nil, eris.Errorf("schema: registry %s declares no categories", path)
	}
	for cat := range raw {
		if !categoryNamePattern.MatchString(string(cat)) {
			return nil, eris.Errorf("schema: registry %s: category %q must be lowercase letters only", path, cat)
		}
	}
	return NewRegistry(raw), nil
}

// Has reports whether the category is registered.
func (r *Registry) Has(cat Category) bool {
	_, ok := r.categories[cat]
	return ok
}

// Categories returns the registered categories in sorted order.
func (r *Registry) Categories() []Category {
	out := make([]Category, 0, len(r.categories))
	for cat := range r.categories {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FieldsFor returns the ordered field names declared for the category and
// source. The returned slice is a copy.
func (r *Registry) FieldsFor(cat Category, src Source) ([]string, error) {
	cs, ok := r.categories[cat]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownCategory, "%q", cat)
	}
	switch src {
	case SourceDocument:
		return append([]string(nil), cs.DocumentFields...), nil
	case SourceImage:
		return append([]string(nil), cs.ImageFields...), nil
	default:
		return nil, eris.Errorf("schema: unknown source %q", src)
	}
}

// Required returns the designated required subset of the category's
// document fields. A record may not be published while any of them is
// empty.
func (r *Registry) Required(cat Category) ([]string, error) {
	cs, ok := r.categories[cat]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownCategory, "%q", cat)
	}
	return append([]string(nil), cs.Required...), nil
}

// defaultCategories mirrors the technical-sheet vocabulary the extraction
// prompts are written against.
var defaultCategories = map[Category]CategorySchema{
	CategoryMobile: {
		DocumentFields: []string{
			"nome_prodotto",
			"produttore",
			"materiali",
			"dimensioni",
			"anno_produzione",
			"nome_produttore",
			"indirizzo_produttore",
			"gtin",
			"numero_serie",
			"composizione_materiali_dettagliata",
			"impronta_carbonio",
			"consumo_energia",
			"documenti_conformita",
			"istruzioni_uso",
			"istruzioni_fine_vita",
		},
		ImageFields: []string{"colore", "condizioni"},
		Required:    []string{"nome_prodotto", "produttore"},
	},
	CategoryLampada: {
		DocumentFields: []string{
			"nome_prodotto",
			"produttore",
			"materiale",
			"wattaggio",
			"nome_produttore",
			"indirizzo_produttore",
			"gtin",
			"numero_serie",
			"composizione_materiali_dettagliata",
			"impronta_carbonio",
			"consumo_energia",
			"documenti_conformita",
			"istruzioni_uso",
			"istruzioni_fine_vita",
		},
		ImageFields: []string{"colore", "stile", "condizioni"},
		Required:    []string{"nome_prodotto", "produttore"},
	},
	CategoryBicicletta: {
		DocumentFields: []string{
			"nome_prodotto",
			"produttore",
			"modello",
			"anno_produzione",
			"nome_produttore",
			"indirizzo_produttore",
			"gtin",
			"numero_serie",
			"composizione_materiali_dettagliata",
			"impronta_carbonio",
			"consumo_energia",
			"documenti_conformita",
			"istruzioni_uso",
			"istruzioni_fine_vita",
		},
		ImageFields: []string{"colore_telaio", "condizioni"},
		Required:    []string{"nome_prodotto", "produttore"},
	},
}
