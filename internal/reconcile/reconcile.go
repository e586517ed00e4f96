// Package reconcile forces an oracle's free-form output into exact schema
// conformance. The output domain always equals the declared field set: no
// missing keys, no extras. Naming drift between the prompt wording and the
// canonical schema is resolved through a fixed synonym table.
package reconcile

// Absent is the normalized marker for "no data available". It is distinct
// from an error: a field the oracle could not ground is Absent, never
// omitted.
const Absent = ""

// Result is a schema-conformant field mapping plus provenance for values
// that arrived under an alternate key.
type Result struct {
	// Fields maps every declared field name to a value. Its key set is
	// exactly the declared field set.
	Fields map[string]string
	// FromSynonym records, per field, the alternate key a value was taken
	// from. Fields filled directly or with Absent are not listed.
	FromSynonym map[string]string
}

// Reconcile merges a raw extraction with the declared field set. For each
// declared field: a directly-present key wins (even when its value is
// Absent), then the synonym table is consulted, then Absent is set.
func Reconcile(raw map[string]string, declared []string, synonyms map[string][]string) Result {
	res := Result{
		Fields:      make(map[string]string, len(declared)),
		FromSynonym: make(map[string]string),
	}
	for _, field := range declared {
		if v, ok := raw[field]; ok {
			res.Fields[field] = v
			continue
		}
		if alt, v, ok := lookupSynonym(raw, field, synonyms); ok {
			res.Fields[field] = v
			res.FromSynonym[field] = alt
			continue
		}
		res.Fields[field] = Absent
	}
	return res
}

// lookupSynonym returns the first alternate key of field present in raw
// with a non-absent value.
func lookupSynonym(raw map[string]string, field string, synonyms map[string][]string) (string, string, bool) {
	for _, alt := range synonyms[field] {
		if v, ok := raw[alt]; ok && v != Absent {
			return alt, v, true
		}
	}
	return "", "", false
}

// DefaultSynonyms is the static alternate-key table. All entries are
// declared up front; nothing is inferred at runtime. It compensates for
// the oracle answering with English or otherwise drifted key names.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"produttore":                         {"nome_produttore", "manufacturer_name", "producer"},
		"nome_produttore":                    {"produttore", "manufacturer_name"},
		"indirizzo_produttore":               {"manufacturer_address"},
		"composizione_materiali_dettagliata": {"materiale_dettagliato", "detailed_material_composition"},
		"impronta_carbonio":                  {"carbon_footprint"},
		"consumo_energia":                    {"energy_use", "energy_consumption"},
		"documenti_conformita":               {"compliance_documents"},
		"istruzioni_uso":                     {"usage_instructions"},
		"istruzioni_fine_vita":               {"end_of_life_instructions"},
		"numero_serie":                       {"serial_number"},
		"serial_number":                      {"numero_serie"},
		"producer":                           {"manufacturer_name", "produttore"},
		"manufacturer_name":                  {"producer", "produttore"},
		"wattaggio":                          {"wattage"},
		"wattage":                            {"wattaggio"},
		"colore":                             {"color"},
		"colore_telaio":                      {"frame_color", "colore"},
		"condizioni":                         {"condition", "conditions"},
	}
}
