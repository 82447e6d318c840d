package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sant0-9/reportgenie/internal/pipeline"
	"github.com/sant0-9/reportgenie/internal/style"
)

func newGenerateCmd(flags *globalFlags) *cobra.Command {
	var (
		styleName string
		input     string
		outDir    string
		toStdout  bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report from a notes file",
		Long: `Reads notes from a file or stdin, runs them through the model and writes the finished document.

Examples:
  reportgenie generate --in notes.txt                     # modern_report.pdf in the output dir
  reportgenie generate -s academic --in notes.txt         # report.tex
  cat notes.txt | reportgenie generate -s simple --stdout > out.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := style.Parse(styleName)
			if err != nil {
				return err
			}

			text, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}

			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.OutputDir
			}

			logger, closeLog, err := newLogger(cfg, "")
			if err != nil {
				return err
			}
			defer closeLog()

			p, err := pipeline.FromConfig(cfg, logger)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			if !quiet {
				p.SetProgressCallback(func(pr pipeline.Progress) {
					if pr.Message != "" {
						fmt.Fprintf(stderr, "[%3d%%] %s\n", pr.Percent, pr.Message)
					}
				})
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			artifact, err := p.Run(ctx, pipeline.Request{Style: st, Text: text})
			if err != nil {
				return err
			}

			if toStdout {
				_, err := cmd.OutOrStdout().Write(artifact.Data)
				return err
			}

			path, err := artifact.Save(outDir)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"path": path,
				"size": artifact.SizeHuman(),
			}).Debug("report saved")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&styleName, "style", "s", "modern", "report style: simple, modern or academic")
	cmd.Flags().StringVarP(&input, "in", "i", "-", "notes file, - for stdin")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write the document to stdout instead of a file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")

	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
