package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dppkit/passport-cli/internal/extract"
	"github.com/dppkit/passport-cli/internal/schema"
	"github.com/dppkit/passport-cli/internal/store"
	"github.com/dppkit/passport-cli/pkg/oracle"
)

// openStore builds the configured persistence backend. Callers should
// defer Close.
func openStore() (store.Store, error) {
	switch cfg.Store.Driver {
	case "file", "":
		return store.NewFile(cfg.Store.Dir)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DSN)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// loadRegistry returns the category registry, applying the schema
// override file when configured.
func loadRegistry() (*schema.Registry, error) {
	if cfg.Schema.Path == "" {
		return schema.Default(), nil
	}
	reg, err := schema.Load(cfg.Schema.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "load schema overrides from %s", cfg.Schema.Path)
	}
	cats := make([]string, 0, len(reg.Categories()))
	for _, c := range reg.Categories() {
		cats = append(cats, string(c))
	}
	zap.L().Info("category schemas loaded from override file",
		zap.String("path", cfg.Schema.Path),
		zap.Strings("categories", cats))
	return reg, nil
}

// newExtractor wires the oracle client and the extractor from config.
// The registry is returned alongside so callers can prefill drafts.
func newExtractor() (*extract.Extractor, *schema.Registry, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, nil, err
	}

	var opts []oracle.Option
	if cfg.Anthropic.RateLimit > 0 {
		opts = append(opts, oracle.WithRateLimit(cfg.Anthropic.RateLimit, cfg.Anthropic.RateBurst))
	}
	client := oracle.NewClient(cfg.Anthropic.Key, opts...)

	ex := extract.New(client, reg, extract.Config{
		Model:        cfg.Anthropic.Model,
		VisionModel:  cfg.Anthropic.VisionModel,
		MaxTokens:    int64(cfg.Anthropic.MaxTokens),
		MaxImageEdge: cfg.Image.MaxEdge,
		JPEGQuality:  cfg.Image.JPEGQuality,
	})
	return ex, reg, nil
}

// absentFields returns an all-empty mapping over the declared field set,
// used for a source the user did not supply.
func absentFields(reg *schema.Registry, cat schema.Category, src schema.Source) (map[string]string, error) {
	declared, err := reg.FieldsFor(cat, src)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(declared))
	for _, f := range declared {
		out[f] = ""
	}
	return out, nil
}
