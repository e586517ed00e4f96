package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dppkit/passport-cli/internal/passport"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a stored passport record, or list all ids",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("publish"); err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 0 {
			ids, err := st.List(ctx)
			if err != nil {
				return eris.Wrap(err, "list passports")
			}
			return enc.Encode(ids)
		}

		id := args[0]
		if !passport.ValidID(id) {
			return eris.Errorf("malformed passport id %q", id)
		}
		rec, err := st.Load(ctx, id)
		if err != nil {
			return eris.Wrap(err, "load passport")
		}
		if rec == nil {
			// Absence is a lookup result, not a failure.
			fmt.Fprintf(cmd.OutOrStdout(), "no passport found for %s\n", id)
			return nil
		}
		return enc.Encode(rec)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
