package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dppkit/passport-cli/internal/qr"
)

var (
	qrOutPath       string
	qrSize          int
	qrSelfContained bool
)

var qrCmd = &cobra.Command{
	Use:   "qr <id>",
	Short: "Render the QR code for a published passport",
	Long:  "Renders a QR PNG for a passport id. By default the code carries the public lookup URL; with --self-contained it carries the full record and needs no server at scan time.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]

		if err := cfg.Validate("publish"); err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.Load(ctx, id)
		if err != nil {
			return eris.Wrap(err, "load passport")
		}
		if rec == nil {
			return eris.Errorf("no passport found for %s", id)
		}

		var png []byte
		if qrSelfContained {
			png, err = qr.EncodeRecord(rec, qrSize)
		} else {
			var url string
			url, err = qr.LookupURL(cfg.Server.PublicBaseURL, id)
			if err == nil {
				png, err = qr.EncodeURL(url, qrSize)
			}
		}
		if err != nil {
			return eris.Wrap(err, "encode qr")
		}

		out := qrOutPath
		if out == "" {
			out = id + ".png"
		}
		if err := os.WriteFile(out, png, 0o644); err != nil {
			return eris.Wrapf(err, "write qr %s", out)
		}
		zap.L().Info("qr code written",
			zap.String("id", id),
			zap.String("path", out),
			zap.Bool("self_contained", qrSelfContained))
		return nil
	},
}

func init() {
	qrCmd.Flags().StringVar(&qrOutPath, "out", "", "output PNG path (default <id>.png)")
	qrCmd.Flags().IntVar(&qrSize, "size", qr.DefaultSize, "PNG edge in pixels")
	qrCmd.Flags().BoolVar(&qrSelfContained, "self-contained", false, "embed the full record instead of a lookup URL")
	rootCmd.AddCommand(qrCmd)
}
