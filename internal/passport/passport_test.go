package passport

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dppkit/passport-cli/internal/schema"
)

func validatedDoc(t *testing.T, cat schema.Category, overrides map[string]string) map[string]string {
	t.Helper()
	declared, err := schema.Default().FieldsFor(cat, schema.SourceDocument)
	require.NoError(t, err)
	out := make(map[string]string, len(declared))
	for _, f := range declared {
		out[f] = ""
	}
	out["nome_prodotto"] = "Lume 60"
	out["produttore"] = "Acme Lighting"
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func validatedImg(t *testing.T, cat schema.Category) map[string]string {
	t.Helper()
	declared, err := schema.Default().FieldsFor(cat, schema.SourceImage)
	require.NoError(t, err)
	out := make(map[string]string, len(declared))
	for _, f := range declared {
		out[f] = "valore"
	}
	return out
}

func TestAssemble_Success(t *testing.T) {
	reg := schema.Default()
	before := time.Now().UTC()

	rec, err := Assemble(schema.CategoryLampada, validatedDoc(t, schema.CategoryLampada, nil), validatedImg(t, schema.CategoryLampada), reg)
	require.NoError(t, err)

	assert.Regexp(t, `^LAMPADA-[0-9a-f]{8}$`, rec.ID)
	assert.True(t, ValidID(rec.ID))
	assert.Equal(t, schema.CategoryLampada, rec.Category)
	assert.Equal(t, Version, rec.Version)
	assert.False(t, rec.CreatedAt.Before(before))
	assert.Equal(t, "Lume 60", rec.DocumentFields["nome_prodotto"])
}

func TestAssemble_MissingRequiredFields(t *testing.T) {
	reg := schema.Default()
	doc := validatedDoc(t, schema.CategoryMobile, map[string]string{
		"nome_prodotto": "",
		"produttore":    "   ", // whitespace collapses to empty after trim
	})

	rec, err := Assemble(schema.CategoryMobile, doc, validatedImg(t, schema.CategoryMobile), reg)
	assert.Nil(t, rec)

	var missing *MissingRequiredFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"nome_prodotto", "produttore"}, missing.Fields)
}

func TestAssemble_NamesExactlyTheEmptyOnes(t *testing.T) {
	reg := schema.Default()
	doc := validatedDoc(t, schema.CategoryBicicletta, map[string]string{"produttore": ""})

	_, err := Assemble(schema.CategoryBicicletta, doc, validatedImg(t, schema.CategoryBicicletta), reg)

	var missing *MissingRequiredFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"produttore"}, missing.Fields)
}

func TestAssemble_UnknownCategory(t *testing.T) {
	_, err := Assemble(schema.Category("divano"), nil, nil, schema.Default())
	assert.ErrorIs(t, err, schema.ErrUnknownCategory)
}

func TestAssemble_UniqueIDs(t *testing.T) {
	reg := schema.Default()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec, err := Assemble(schema.CategoryLampada, validatedDoc(t, schema.CategoryLampada, nil), validatedImg(t, schema.CategoryLampada), reg)
		require.NoError(t, err)
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}

func TestValidateFields_TrimAndNormalize(t *testing.T) {
	declared := []string{"nome_prodotto", "produttore"}
	out, err := ValidateFields(map[string]string{
		"nome_prodotto": "  Lume 60\n",
		"produttore":    "Acme",
	}, declared)
	require.NoError(t, err)
	assert.Equal(t, "Lume 60", out["nome_prodotto"])
}

func TestValidateFields_RejectsMissingKey(t *testing.T) {
	_, err := ValidateFields(map[string]string{"nome_prodotto": "x"}, []string{"nome_prodotto", "produttore"})
	assert.Error(t, err)
}

func TestValidateFields_RejectsExtraKey(t *testing.T) {
	_, err := ValidateFields(map[string]string{
		"nome_prodotto": "x",
		"intruso":       "y",
	}, []string{"nome_prodotto"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intruso")
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("MOBILE-1a2b3c4d"))
	assert.True(t, ValidID("LAMPADA-deadbeef"))
	assert.False(t, ValidID("mobile-1a2b3c4d"))
	assert.False(t, ValidID("MOBILE-1A2B3C4D"))
	assert.False(t, ValidID("MOBILE-123"))
	assert.False(t, ValidID("MOBILE-1a2b3c4d9"))
	assert.False(t, ValidID("-1a2b3c4d"))
	assert.False(t, ValidID(""))
}

func TestDraft_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	d := &Draft{
		Category:       schema.CategoryLampada,
		DocumentFields: map[string]string{"nome_prodotto": "Lume"},
		ImageFields:    map[string]string{"colore": "bianco"},
		Diagnostics: Diagnostics{
			DocumentParsed: true,
			ImageParsed:    false,
			ImageRaw:       "not json",
		},
	}
	require.NoError(t, WriteDraft(path, d))

	got, err := ReadDraft(path)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestReadDraft_Errors(t *testing.T) {
	_, err := ReadDraft(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
