// Package qr produces the public access encodings for a passport record:
// a lookup URL resolved against the store later, or a fully
// self-contained payload readable offline. Payloads over QR capacity are
// rejected, never truncated.
package qr

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/dppkit/passport-cli/internal/passport"
)

// ErrPayloadTooLarge is returned when the payload exceeds what a QR code
// can carry at the chosen error-correction level.
var ErrPayloadTooLarge = eris.New("qr: payload exceeds code capacity")

// Binary capacities of a version-40 QR code per error-correction level.
const (
	maxBytesHigh = 1273
	maxBytesLow  = 2953
)

// DefaultSize is the rendered PNG edge in pixels.
const DefaultSize = 512

// LookupURL builds the public lookup URL for a record id.
func LookupURL(baseURL, id string) (string, error) {
	if !passport.ValidID(id) {
		return "", eris.Errorf("qr: invalid record id %q", id)
	}
	if baseURL == "" {
		return "", eris.New("qr: empty base URL")
	}
	return strings.TrimRight(baseURL, "/") + "/api/passports/" + id, nil
}

// EncodeURL renders a lookup URL as a QR PNG at high error correction,
// matching the durability expected of a printed label.
func EncodeURL(url string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if len(url) > maxBytesHigh {
		return nil, eris.Wrapf(ErrPayloadTooLarge, "%d bytes at high error correction", len(url))
	}
	png, err := qrcode.Encode(url, qrcode.High, size)
	if err != nil {
		return nil, eris.Wrap(err, "qr: encode url")
	}
	return png, nil
}

// EncodeRecord renders the full record as a self-contained QR PNG. The
// payload needs no store or network at read time, so the low
// error-correction level is used for its higher capacity. Records that
// still exceed capacity are rejected.
func EncodeRecord(rec *passport.Record, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, eris.Wrap(err, "qr: marshal record")
	}
	if len(payload) > maxBytesLow {
		return nil, eris.Wrapf(ErrPayloadTooLarge, "%d bytes at low error correction", len(payload))
	}
	png, err := qrcode.Encode(string(payload), qrcode.Low, size)
	if err != nil {
		return nil, eris.Wrap(err, "qr: encode record")
	}
	return png, nil
}
