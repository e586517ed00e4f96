package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dppkit/passport-cli/internal/passport"
	"github.com/dppkit/passport-cli/internal/schema"
)

func testRecord(id string) *passport.Record {
	return &passport.Record{
		ID:        id,
		Category:  schema.CategoryLampada,
		CreatedAt: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
		Version:   passport.Version,
		DocumentFields: map[string]string{
			"nome_prodotto": "Lume 60",
			"produttore":    "Acme Lighting",
			"wattaggio":     "60W",
		},
		ImageFields: map[string]string{
			"colore":     "bianco",
			"stile":      "moderno",
			"condizioni": "nuovo",
		},
	}
}

// stores builds each Store implementation against a fresh temp location.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFile(filepath.Join(t.TempDir(), "passports"))
	require.NoError(t, err)

	sqliteStore, err := NewSQLite(filepath.Join(t.TempDir(), "passports.db"))
	require.NoError(t, err)

	out := map[string]Store{
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
	t.Cleanup(func() {
		for _, s := range out {
			s.Close()
		}
	})
	return out
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec := testRecord("LAMPADA-1a2b3c4d")

			loc, err := s.Save(ctx, rec)
			require.NoError(t, err)
			assert.NotEmpty(t, loc)

			got, err := s.Load(ctx, rec.ID)
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, rec.ID, got.ID)
			assert.Equal(t, rec.Category, got.Category)
			assert.Equal(t, rec.Version, got.Version)
			assert.Equal(t, rec.DocumentFields, got.DocumentFields)
			assert.Equal(t, rec.ImageFields, got.ImageFields)
			assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
		})
	}
}

func TestLoad_AbsentIsNotAnError(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Load(ctx, "MOBILE-deadbeef")
			assert.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestSaveLoad_RejectsMalformedID(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, testRecord("not-a-valid-id"))
			assert.Error(t, err)

			_, err = s.Load(ctx, "../../etc/passwd")
			assert.Error(t, err)
		})
	}
}

func TestSave_OverwriteLastWins(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec := testRecord("LAMPADA-cafebabe")
			_, err := s.Save(ctx, rec)
			require.NoError(t, err)

			rec2 := testRecord("LAMPADA-cafebabe")
			rec2.DocumentFields["wattaggio"] = "75W"
			_, err = s.Save(ctx, rec2)
			require.NoError(t, err)

			got, err := s.Load(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, "75W", got.DocumentFields["wattaggio"])
		})
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ids, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, ids)

			_, err = s.Save(ctx, testRecord("LAMPADA-00000002"))
			require.NoError(t, err)
			_, err = s.Save(ctx, testRecord("LAMPADA-00000001"))
			require.NoError(t, err)

			ids, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"LAMPADA-00000001", "LAMPADA-00000002"}, ids)
		})
	}
}
