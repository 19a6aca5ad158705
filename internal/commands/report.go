package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cleared-dev/shopbooks/internal/faultlog"
	"github.com/cleared-dev/shopbooks/internal/gitops"
	"github.com/cleared-dev/shopbooks/internal/ledger"
	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/pipeline"
	"github.com/cleared-dev/shopbooks/internal/render"
	"github.com/cleared-dev/shopbooks/internal/source"
	"github.com/cleared-dev/shopbooks/internal/workbook"
)

func newReportCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the financial statements workbook",
		Long: `Replays the ledger up to the report date, books COGS and tax accruals,
and writes the statements to reports/<date> FS_BS.xlsx. CSV inputs also get
the augmented ledger as reports/<date> transactions.csv. Faults are appended
to logs/fault-log.csv and a summary is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			date, err := asOf(v)
			if err != nil {
				return err
			}

			rep, format, err := ws.run(cmd.Context(), v.GetString(keyInput), v.GetString(keyFormat), date)
			if err != nil {
				return err
			}

			path, err := workbook.Save(filepath.Join(ws.root, ReportDir), rep)
			if err != nil {
				return err
			}
			ws.log.Info().Str("path", path).Msg("report written")

			if format == source.FormatCSV {
				ledgerPath, err := saveLedger(filepath.Join(ws.root, ReportDir), rep)
				if err != nil {
					return err
				}
				ws.log.Info().Str("path", ledgerPath).Int("entries", len(rep.Ledger)).Msg("ledger written")
			}

			if err := faultlog.Append(ws.root, faultlog.FromFaults(rep.RunID, time.Now(), rep.Faults)); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := render.Summary(out, ws.cfg.Business.Name, rep, ws.money); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nWrote %s\n", path)

			if !v.GetBool(keyCommit) && !ws.cfg.Git.AutoCommit {
				return nil
			}
			if !gitops.IsRepo(ws.root) {
				ws.log.Warn().Str("repo", ws.root).Msg("not a git repository, skipping commit")
				return nil
			}
			msg := "report: " + rep.AsOf.Format(model.DateFormat)
			hash, err := gitops.CommitAll(ws.root, msg, ws.cfg.Git.AuthorName, ws.cfg.Git.AuthorEmail)
			if errors.Is(err, gitops.ErrNothingToCommit) {
				fmt.Fprintln(out, "Nothing to commit")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Committed %s\n", hash)
			return nil
		},
	}

	cmd.Flags().String(keyAsOf, "", "report date (YYYY-MM-DD, default today)")
	cmd.Flags().String(keyInput, "", "input workbook or csv directory (default newest in input/)")
	cmd.Flags().String(keyFormat, "", "input format: csv or xlsx (default detected)")
	cmd.Flags().Bool(keyCommit, false, "commit the repository after writing the report")

	return cmd
}

// LedgerFileName names the augmented ledger written next to a report.
func LedgerFileName(rep *pipeline.Report) string {
	return rep.AsOf.Format(model.DateFormat) + " transactions.csv"
}

// saveLedger writes the ledger with COGS and tax entries in the canonical
// csv layout, so it can be fed back as input.
func saveLedger(dir string, rep *pipeline.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}
	path := filepath.Join(dir, LedgerFileName(rep))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating ledger: %w", err)
	}
	if err := ledger.WriteEntries(f, rep.Ledger); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing ledger: %w", err)
	}
	return path, nil
}
