package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cleared-dev/shopbooks/internal/render"
)

func newInventoryCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Show stock positions and restock alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			date, err := asOf(v)
			if err != nil {
				return err
			}

			rep, _, err := ws.run(cmd.Context(), v.GetString(keyInput), v.GetString(keyFormat), date)
			if err != nil {
				return err
			}
			return render.Inventory(cmd.OutOrStdout(), rep, ws.money)
		},
	}

	cmd.Flags().String(keyAsOf, "", "stock date (YYYY-MM-DD, default today)")
	cmd.Flags().String(keyInput, "", "input workbook or csv directory (default newest in input/)")
	cmd.Flags().String(keyFormat, "", "input format: csv or xlsx (default detected)")

	return cmd
}
