package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cleared-dev/shopbooks/internal/accounts"
	"github.com/cleared-dev/shopbooks/internal/config"
	"github.com/cleared-dev/shopbooks/internal/logger"
	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/pipeline"
	"github.com/cleared-dev/shopbooks/internal/render"
	"github.com/cleared-dev/shopbooks/internal/source"
)

// ConfigFile is the books config at the repository root.
const ConfigFile = "shopbooks.yaml"

// ReportDir holds the generated workbooks.
const ReportDir = "reports"

// workspace is an opened books repository.
type workspace struct {
	root  string
	cfg   *config.Config
	chart *accounts.Service
	log   *logger.Logger
	money render.Formatter
}

func openWorkspace(v *viper.Viper, logOut io.Writer) (*workspace, error) {
	root, err := filepath.Abs(v.GetString(keyRepo))
	if err != nil {
		return nil, fmt.Errorf("resolving repo: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, ConfigFile))
	if err != nil {
		return nil, err
	}
	if lvl := v.GetString(keyLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	if format := v.GetString(keyLogFormat); format != "" {
		cfg.Log.Format = format
	}

	chart, err := accounts.Load(root, cfg.Inventory.ShopPrefix)
	if err != nil {
		return nil, err
	}
	money, err := render.NewFormatter(cfg.Business.Currency)
	if err != nil {
		return nil, err
	}

	return &workspace{
		root:  root,
		cfg:   cfg,
		chart: chart,
		log:   logger.New(logger.Config{Format: cfg.Log.Format, Level: cfg.Log.Level, Out: logOut}),
		money: money,
	}, nil
}

// asOf resolves the report date. Without one the run covers everything up
// to today.
func asOf(v *viper.Viper) (time.Time, error) {
	s := v.GetString(keyAsOf)
	if s == "" {
		return model.Day(time.Now()), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--as-of: %w", err)
	}
	return d, nil
}

// inputPath returns the explicit input or the newest one in the input
// directory.
func (ws *workspace) inputPath(explicit string) (string, error) {
	if explicit != "" {
		if filepath.IsAbs(explicit) {
			return explicit, nil
		}
		return filepath.Abs(explicit)
	}
	files, err := source.Scan(ws.root)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no input found in %s", filepath.Join(ws.root, source.InputDir))
	}
	return files[0].Path, nil
}

// run loads the input and computes the report. It also returns the input
// format actually read.
func (ws *workspace) run(ctx context.Context, input, format string, date time.Time) (*pipeline.Report, string, error) {
	path, err := ws.inputPath(input)
	if err != nil {
		return nil, "", err
	}
	if format == "" {
		if format, err = source.Detect(path); err != nil {
			return nil, "", err
		}
	}
	format = strings.ToLower(format)
	ws.log.Info().Str("input", path).Str("format", format).Msg("loading input")

	in, err := source.DefaultRegistry().Load(path, format)
	if err != nil {
		return nil, "", err
	}

	opts, err := pipeline.OptionsFromConfig(ws.cfg, ws.chart, date, ws.log)
	if err != nil {
		return nil, "", err
	}
	rep, err := pipeline.Run(ctx, in, opts)
	if err != nil {
		return nil, "", err
	}
	return rep, format, nil
}
