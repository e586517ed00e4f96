package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dppkit/passport-cli/internal/extract"
	"github.com/dppkit/passport-cli/internal/ocr"
	"github.com/dppkit/passport-cli/internal/passport"
	"github.com/dppkit/passport-cli/internal/schema"
	"github.com/dppkit/passport-cli/pkg/oracle"
)

var (
	extractCategory string
	extractDocPath  string
	extractImgPath  string
	extractOutPath  string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract product fields from a document and a photo into a reviewable draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}
		if extractDocPath == "" && extractImgPath == "" {
			return eris.New("at least one of --document or --image is required")
		}

		ex, reg, err := newExtractor()
		if err != nil {
			return err
		}

		draft, srcErr := runExtract(ctx, ex, reg, schema.Category(extractCategory), extractDocPath, extractImgPath)
		if draft == nil {
			return srcErr
		}

		// The draft is written even when a source failed: the surviving
		// side stays available for review, the failed side is
		// absent-filled with its error on record.
		if err := passport.WriteDraft(extractOutPath, draft); err != nil {
			return err
		}
		zap.L().Info("draft written for review", zap.String("path", extractOutPath))

		if srcErr != nil {
			if oracle.IsRetryable(srcErr) {
				zap.L().Warn("transient oracle failure, rerun extract to fill the missing source", zap.Error(srcErr))
			}
			return eris.Wrap(srcErr, "extract (partial draft written)")
		}
		return nil
	},
}

// runExtract runs the requested extractions and assembles the draft. The
// two sources are independent: a plain errgroup.Group (no shared-context
// cancellation) lets a failure on one source be recorded in the
// diagnostics while the other proceeds, so a partial draft always comes
// back. The returned error is the first per-source failure; the draft is
// nil only when the category itself is unknown.
func runExtract(ctx context.Context, ex *extract.Extractor, reg *schema.Registry, cat schema.Category, docPath, imgPath string) (*passport.Draft, error) {
	docFields, err := absentFields(reg, cat, schema.SourceDocument)
	if err != nil {
		return nil, err
	}
	imgFields, err := absentFields(reg, cat, schema.SourceImage)
	if err != nil {
		return nil, err
	}
	draft := &passport.Draft{
		Category:       cat,
		DocumentFields: docFields,
		ImageFields:    imgFields,
	}

	var g errgroup.Group

	if docPath != "" {
		g.Go(func() error {
			out, err := extractDocument(ctx, ex, cat, docPath)
			if err != nil {
				draft.Diagnostics.DocumentError = err.Error()
				zap.L().Warn("document extraction failed, draft keeps absent fields",
					zap.String("category", string(cat)),
					zap.Error(err))
				return err
			}
			draft.DocumentFields = out.Fields
			draft.Diagnostics.DocumentParsed = out.Parsed
			draft.Diagnostics.DocumentFromSynonym = out.FromSynonym
			if !out.Parsed {
				draft.Diagnostics.DocumentRaw = out.Raw
			}
			zap.L().Info("document extraction complete",
				zap.String("category", string(cat)),
				zap.Bool("parsed", out.Parsed),
				zap.Int64("input_tokens", out.Usage.InputTokens),
				zap.Int64("output_tokens", out.Usage.OutputTokens))
			return nil
		})
	}

	if imgPath != "" {
		g.Go(func() error {
			out, err := extractImage(ctx, ex, cat, imgPath)
			if err != nil {
				draft.Diagnostics.ImageError = err.Error()
				zap.L().Warn("image extraction failed, draft keeps absent fields",
					zap.String("category", string(cat)),
					zap.Error(err))
				return err
			}
			draft.ImageFields = out.Fields
			draft.Diagnostics.ImageParsed = out.Parsed
			draft.Diagnostics.ImageFromSynonym = out.FromSynonym
			if !out.Parsed {
				draft.Diagnostics.ImageRaw = out.Raw
			}
			zap.L().Info("image extraction complete",
				zap.String("category", string(cat)),
				zap.Bool("parsed", out.Parsed),
				zap.Int64("input_tokens", out.Usage.InputTokens),
				zap.Int64("output_tokens", out.Usage.OutputTokens))
			return nil
		})
	}

	return draft, g.Wait()
}

// extractDocument loads the document text (through OCR for PDFs) and runs
// the document-side extraction.
func extractDocument(ctx context.Context, ex *extract.Extractor, cat schema.Category, path string) (*extract.Outcome, error) {
	ocrExt, err := ocr.NewExtractor(cfg.OCR.Provider, cfg.OCR.PdfToTextPath, cfg.OCR.MistralKey, cfg.OCR.MistralModel)
	if err != nil {
		return nil, err
	}
	text, err := ocr.LoadDocument(ctx, ocrExt, path)
	if err != nil {
		return nil, err
	}
	return ex.Document(ctx, cat, text)
}

// extractImage reads the photo and runs the image-side extraction.
func extractImage(ctx context.Context, ex *extract.Extractor, cat schema.Category, path string) (*extract.Outcome, error) {
	img, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read image %s", path)
	}
	return ex.Image(ctx, cat, img)
}

func init() {
	extractCmd.Flags().StringVar(&extractCategory, "category", "", "product category (required)")
	extractCmd.Flags().StringVar(&extractDocPath, "document", "", "technical document path (.txt or .pdf)")
	extractCmd.Flags().StringVar(&extractImgPath, "image", "", "product photo path")
	extractCmd.Flags().StringVar(&extractOutPath, "out", "draft.json", "draft output path")
	_ = extractCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(extractCmd)
}
