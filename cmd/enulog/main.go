package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/15226124477/enulog"
	"github.com/15226124477/enulog/config"
	"github.com/15226124477/enulog/dashboard"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

type globalFlags struct {
	configPath string
	csvFile    string
	encoding   string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "enulog",
		Short:         "Dispersion statistics and charts for ENU positioning logs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&g.csvFile, "csv", "", "input CSV log (overrides csv_file)")
	rootCmd.PersistentFlags().StringVar(&g.encoding, "encoding", "", "input encoding: utf-8 or gbk")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warning, error)")

	rootCmd.AddCommand(
		newReportCmd(g),
		newServeCmd(g),
		newExportCmd(g),
		newGapsCmd(g),
	)
	return rootCmd
}

// load resolves the configuration and builds the session.
func (g *globalFlags) load() (*config.Config, *enulog.Session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if g.csvFile != "" {
		cfg.CSVFile = g.csvFile
	}
	if g.encoding != "" {
		cfg.Encoding = g.encoding
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cfg.SetupLogging()

	session, err := enulog.NewSession(cfg.CSVFile, style(cfg), chartOptions(cfg), enulog.WithEncoding(cfg.Encoding))
	if err != nil {
		return nil, nil, err
	}
	return cfg, session, nil
}

func style(cfg *config.Config) enulog.Style {
	s := enulog.DefaultStyle()
	if len(cfg.Chart.Palette) > 0 {
		s.Palette = cfg.Chart.Palette
	}
	s.SymbolSize = cfg.Chart.SymbolSize
	s.Opacity = cfg.Chart.Opacity
	return s
}

func chartOptions(cfg *config.Config) enulog.ChartOptions {
	return enulog.ChartOptions{AssetsHost: cfg.AssetsHost, Height: cfg.Chart.Height}
}

func outPath(cfg *config.Config, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(cfg.CSVFile), filepath.Ext(cfg.CSVFile))
	return filepath.Join(cfg.OutDir, base+suffix)
}

func newReportCmd(g *globalFlags) *cobra.Command {
	var figures, html bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print per-cycle and global metrics, optionally writing charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, session, err := g.load()
			if err != nil {
				return err
			}
			perCycle, global, err := session.Metrics()
			if err != nil {
				return err
			}
			if err := enulog.WriteReport(cmd.OutOrStdout(), perCycle, global); err != nil {
				return err
			}
			if !figures && !html {
				return nil
			}

			conv, err := enulog.Convergence(session.Dataset)
			if err != nil {
				return err
			}
			if figures {
				o := enulog.FigureOptions{
					Width:  vg.Length(cfg.Figure.Width) * vg.Inch,
					Height: vg.Length(cfg.Figure.Height) * vg.Inch,
					Style:  session.Style,
				}
				if _, err := enulog.SaveFigures(cfg.OutDir, session.Dataset, conv, o); err != nil {
					return err
				}
			}
			if html {
				if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
					return err
				}
				path := outPath(cfg, ".html")
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := enulog.WriteChartPage(f, session.Dataset, conv, session.Style, session.Chart); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				log.Info("chart page written to ", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&figures, "figures", false, "write PNG figures to out_dir")
	cmd.Flags().BoolVar(&html, "html", false, "write an interactive HTML chart page to out_dir")
	return cmd
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the interactive cycle dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, session, err := g.load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info("Starting interactive scatter plot...")
			return dashboard.New(session).ListenAndServe(ctx, cfg.Listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides listen)")
	return cmd
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write metrics and the convergence series to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, session, err := g.load()
			if err != nil {
				return err
			}
			perCycle, global, err := session.Metrics()
			if err != nil {
				return err
			}
			conv, err := enulog.Convergence(session.Dataset)
			if err != nil {
				return err
			}
			if output == "" {
				if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
					return err
				}
				output = outPath(cfg, ".xlsx")
			}
			return enulog.ExportWorkbook(output, perCycle, global, conv)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "workbook path (default out_dir/<log>.xlsx)")
	return cmd
}

func newGapsCmd(g *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "Report the sampling interval, lost epochs and integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, session, err := g.load()
			if err != nil {
				return err
			}
			info, err := enulog.AnalyzeSampling(session.Dataset)
			if err != nil {
				return err
			}
			if output == "" {
				return enulog.WriteSamplingReport(cmd.OutOrStdout(), session.Dataset.Path, info)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			return enulog.WriteSamplingReport(f, session.Dataset.Path, info)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	return cmd
}
