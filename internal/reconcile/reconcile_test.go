package reconcile

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestReconcile_DomainExactlyDeclared(t *testing.T) {
	declared := []string{"nome_prodotto", "produttore", "numero_serie"}

	cases := []struct {
		name string
		raw  map[string]string
	}{
		{"superset", map[string]string{
			"nome_prodotto": "Lampada X", "produttore": "Acme", "numero_serie": "123",
			"extra": "dropped", "another": "also dropped",
		}},
		{"subset", map[string]string{"nome_prodotto": "Lampada X"}},
		{"disjoint", map[string]string{"foo": "bar", "baz": "qux"}},
		{"empty", map[string]string{}},
		{"nil", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Reconcile(tc.raw, declared, DefaultSynonyms())
			want := append([]string(nil), declared...)
			sort.Strings(want)
			assert.Equal(t, want, keysOf(res.Fields))
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	declared := []string{"nome_prodotto", "produttore", "wattaggio"}
	raw := map[string]string{"nome_prodotto": "Lume", "manufacturer_name": "Acme"}

	first := Reconcile(raw, declared, DefaultSynonyms())
	second := Reconcile(first.Fields, declared, DefaultSynonyms())

	assert.Equal(t, first.Fields, second.Fields)
	// Second pass sees every key directly, so no synonym provenance.
	assert.Empty(t, second.FromSynonym)
}

func TestReconcile_SynonymLaw(t *testing.T) {
	raw := map[string]string{"manufacturer_name": "Acme"}
	res := Reconcile(raw, []string{"producer"}, DefaultSynonyms())

	assert.Equal(t, "Acme", res.Fields["producer"])
	assert.Equal(t, "manufacturer_name", res.FromSynonym["producer"])
}

func TestReconcile_DirectKeyWinsOverSynonym(t *testing.T) {
	raw := map[string]string{
		"produttore":      Absent,
		"nome_produttore": "Acme Srl",
	}
	res := Reconcile(raw, []string{"produttore"}, DefaultSynonyms())

	// A directly-present key wins even when its value is the absent marker.
	assert.Equal(t, Absent, res.Fields["produttore"])
	assert.Empty(t, res.FromSynonym)
}

func TestReconcile_SynonymSkipsAbsentValues(t *testing.T) {
	raw := map[string]string{
		"manufacturer_name": Absent,
		"produttore":        "Acme",
	}
	res := Reconcile(raw, []string{"producer"}, DefaultSynonyms())

	// First alternate holds the absent marker; the next one supplies a value.
	assert.Equal(t, "Acme", res.Fields["producer"])
	assert.Equal(t, "produttore", res.FromSynonym["producer"])
}

func TestReconcile_MissingFieldsGetAbsent(t *testing.T) {
	declared := []string{"colore", "condizioni"}
	res := Reconcile(map[string]string{"colore": "bianco"}, declared, DefaultSynonyms())

	require.Len(t, res.Fields, 2)
	assert.Equal(t, "bianco", res.Fields["colore"])
	assert.Equal(t, Absent, res.Fields["condizioni"])
}

func TestReconcile_NoSynonymTable(t *testing.T) {
	res := Reconcile(map[string]string{"manufacturer_name": "Acme"}, []string{"producer"}, nil)
	assert.Equal(t, Absent, res.Fields["producer"])
}

func TestDefaultSynonyms_Static(t *testing.T) {
	a := DefaultSynonyms()
	b := DefaultSynonyms()
	a["produttore"][0] = "mutated"
	assert.Equal(t, "nome_produttore", b["produttore"][0])
}
