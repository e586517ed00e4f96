// Package extract sends document text and product photographs to the
// extraction oracle and coerces the free-form responses into
// schema-conformant field mappings. Oracle unreliability never crashes
// the pipeline: a response that cannot be parsed degrades to an
// absent-filled mapping with the raw text retained for diagnostics.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dppkit/passport-cli/internal/reconcile"
	"github.com/dppkit/passport-cli/internal/schema"
	"github.com/dppkit/passport-cli/pkg/oracle"
)

// Config holds extractor settings.
type Config struct {
	Model        string
	VisionModel  string
	MaxTokens    int64
	MaxImageEdge int
	JPEGQuality  int
}

const (
	defaultMaxTokens    = 1024
	defaultMaxImageEdge = 512
	defaultJPEGQuality  = 80
)

// Extractor turns one source (document text or photograph) into a
// reconciled field mapping for a category. Both sources share the same
// contract shape; only the prompt and payload differ.
type Extractor struct {
	client   oracle.Client
	reg      *schema.Registry
	synonyms map[string][]string
	cfg      Config
}

// New creates an Extractor driven by the given registry.
func New(client oracle.Client, reg *schema.Registry, cfg Config) *Extractor {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.MaxImageEdge == 0 {
		cfg.MaxImageEdge = defaultMaxImageEdge
	}
	if cfg.JPEGQuality == 0 {
		cfg.JPEGQuality = defaultJPEGQuality
	}
	return &Extractor{
		client:   client,
		reg:      reg,
		synonyms: reconcile.DefaultSynonyms(),
		cfg:      cfg,
	}
}

// Outcome is the tagged result of one extraction. Parsed=false means the
// oracle was reachable but its response could not be read as JSON; Fields
// is then fully absent-filled and Raw holds the response verbatim.
type Outcome struct {
	// Fields maps every declared field for the source to a value. Domain
	// is exactly the declared field set.
	Fields map[string]string
	// FromSynonym records fields whose value arrived under an alternate
	// oracle key.
	FromSynonym map[string]string
	// Raw is the oracle's response text, retained for diagnostics.
	Raw string
	// Parsed reports whether a JSON object was isolated from Raw.
	Parsed bool
	Usage  oracle.TokenUsage
}

const systemText = "You are a technical data extraction assistant. Return a single valid JSON object and nothing else. Use an empty string for facts not present in the source. Never invent values."

const documentPromptTmpl = `Estrai i dati tecnici del prodotto di tipo '%s' dal seguente testo.
Se un dato non è presente nel testo, usa la stringa vuota "".
NON inventare valori non presenti nel testo.
Restituisci SOLO un oggetto JSON con i campi: %s.

TESTO:
%s`

const imagePromptTmpl = `L'immagine mostra un prodotto di tipo '%s'.
Restituisci SOLO un oggetto JSON con i seguenti campi: %s.
Se un campo non è verificabile visivamente, usa la stringa vuota "".
NON inventare nulla.
Esempio di output:
{%s}`

// Document extracts the document-sourced fields for the category from
// plain text. Transport failures surface as retryable errors; parse
// failures degrade.
func (e *Extractor) Document(ctx context.Context, cat schema.Category, text string) (*Outcome, error) {
	fields, err := e.reg.FieldsFor(cat, schema.SourceDocument)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, eris.New("extract: empty document text")
	}

	prompt := fmt.Sprintf(documentPromptTmpl, cat, strings.Join(fields, ", "), text)
	resp, err := e.createMessage(ctx, e.cfg.Model, oracle.NewUserText(prompt))
	if err != nil {
		return nil, err
	}

	return e.outcome(cat, "document", fields, resp), nil
}

// Image extracts the image-sourced fields for the category from an
// encoded photograph. Oversized images are downscaled and re-encoded
// before transmission.
func (e *Extractor) Image(ctx context.Context, cat schema.Category, img []byte) (*Outcome, error) {
	fields, err := e.reg.FieldsFor(cat, schema.SourceImage)
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, eris.New("extract: empty image payload")
	}

	payload, mediaType, err := PrepareImage(img, e.cfg.MaxImageEdge, e.cfg.JPEGQuality)
	if err != nil {
		return nil, eris.Wrap(err, "extract: prepare image")
	}

	example := make([]string, len(fields))
	for i, f := range fields {
		example[i] = fmt.Sprintf("%q: \"valore\"", f)
	}
	prompt := fmt.Sprintf(imagePromptTmpl, cat, strings.Join(fields, ", "), strings.Join(example, ", "))

	model := e.cfg.VisionModel
	if model == "" {
		model = e.cfg.Model
	}
	resp, err := e.createMessage(ctx, model, oracle.NewUserImage(mediaType, payload, prompt))
	if err != nil {
		return nil, err
	}

	return e.outcome(cat, "image", fields, resp), nil
}

// createMessage performs one deterministic (temperature 0) oracle call.
func (e *Extractor) createMessage(ctx context.Context, model string, msg oracle.Message) (*oracle.MessageResponse, error) {
	temperature := 0.0
	resp, err := e.client.CreateMessage(ctx, oracle.MessageRequest{
		Model:       model,
		MaxTokens:   e.cfg.MaxTokens,
		System:      systemText,
		Messages:    []oracle.Message{msg},
		Temperature: &temperature,
	})
	if err != nil {
		// Transport failures are the caller's to observe and retry.
		return nil, err
	}
	return resp, nil
}

// outcome parses the response text and reconciles it against the declared
// fields. Parse failures are absorbed here, never propagated.
func (e *Extractor) outcome(cat schema.Category, source string, fields []string, resp *oracle.MessageResponse) *Outcome {
	raw := resp.Text()
	parsed, ok := parseObject(raw)
	if !ok {
		zap.L().Warn("extract: oracle response is not valid JSON, degrading",
			zap.String("category", string(cat)),
			zap.String("source", source),
			zap.Int("raw_len", len(raw)),
		)
		parsed = map[string]string{}
	}

	res := reconcile.Reconcile(parsed, fields, e.synonyms)
	return &Outcome{
		Fields:      res.Fields,
		FromSynonym: res.FromSynonym,
		Raw:         raw,
		Parsed:      ok,
		Usage:       resp.Usage,
	}
}
