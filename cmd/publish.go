package main

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dppkit/passport-cli/internal/passport"
	"github.com/dppkit/passport-cli/internal/qr"
)

var publishDraftPath string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Assemble a reviewed draft into a passport record and persist it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("publish"); err != nil {
			return err
		}

		draft, err := passport.ReadDraft(publishDraftPath)
		if err != nil {
			return err
		}

		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		rec, err := passport.Assemble(draft.Category, draft.DocumentFields, draft.ImageFields, reg)
		if err != nil {
			var missing *passport.MissingRequiredFieldsError
			if errors.As(err, &missing) {
				zap.L().Warn("draft rejected, required fields still empty",
					zap.Strings("fields", missing.Fields))
			}
			return eris.Wrap(err, "assemble passport")
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		loc, err := st.Save(ctx, rec)
		if err != nil {
			return eris.Wrap(err, "save passport")
		}

		zap.L().Info("passport published",
			zap.String("id", rec.ID),
			zap.String("category", string(rec.Category)),
			zap.String("location", loc))

		fmt.Println(rec.ID)
		if cfg.Server.PublicBaseURL != "" {
			url, err := qr.LookupURL(cfg.Server.PublicBaseURL, rec.ID)
			if err == nil {
				fmt.Println(url)
			}
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishDraftPath, "draft", "draft.json", "reviewed draft path")
	rootCmd.AddCommand(publishCmd)
}
