package qr

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dppkit/passport-cli/internal/passport"
	"github.com/dppkit/passport-cli/internal/schema"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestLookupURL(t *testing.T) {
	url, err := LookupURL("https://passports.example.com", "LAMPADA-1a2b3c4d")
	require.NoError(t, err)
	assert.Equal(t, "https://passports.example.com/api/passports/LAMPADA-1a2b3c4d", url)

	// Trailing slash on the base must not double up.
	url, err = LookupURL("https://passports.example.com/", "LAMPADA-1a2b3c4d")
	require.NoError(t, err)
	assert.Equal(t, "https://passports.example.com/api/passports/LAMPADA-1a2b3c4d", url)
}

func TestLookupURL_Rejects(t *testing.T) {
	_, err := LookupURL("https://passports.example.com", "not-an-id")
	assert.Error(t, err)

	_, err = LookupURL("", "LAMPADA-1a2b3c4d")
	assert.Error(t, err)
}

func TestEncodeURL(t *testing.T) {
	png, err := EncodeURL("https://passports.example.com/api/passports/MOBILE-deadbeef", 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestEncodeURL_TooLong(t *testing.T) {
	_, err := EncodeURL("https://example.com/"+strings.Repeat("x", maxBytesHigh), 256)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrPayloadTooLarge))
}

func testRecord() *passport.Record {
	return &passport.Record{
		ID:        "LAMPADA-1a2b3c4d",
		Category:  schema.CategoryLampada,
		CreatedAt: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
		Version:   passport.Version,
		DocumentFields: map[string]string{
			"nome_prodotto": "Lume 60",
			"produttore":    "Acme Lighting",
		},
		ImageFields: map[string]string{
			"colore": "bianco",
		},
	}
}

func TestEncodeRecord(t *testing.T) {
	png, err := EncodeRecord(testRecord(), 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestEncodeRecord_TooLarge(t *testing.T) {
	rec := testRecord()
	rec.DocumentFields["istruzioni_uso"] = strings.Repeat("a", maxBytesLow)

	_, err := EncodeRecord(rec, 256)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrPayloadTooLarge))
}
