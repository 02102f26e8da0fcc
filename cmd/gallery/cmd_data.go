package main

import (
	"fmt"
	"os"

	"photo-gallery/internal/loader"
	"photo-gallery/internal/manage"
	"photo-gallery/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportOut string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a gallery data file, or the configured data URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch the published list and write it in canonical form",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func readPhotos(cmd *cobra.Command, args []string) ([]models.Photo, string, error) {
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		photos, err := loader.Decode(f)
		return photos, args[0], err
	}
	l := loader.New(cfg.DataURL(), logger)
	photos, err := l.Get(cmd.Context())
	return photos, l.URL(), err
}

func runCheck(cmd *cobra.Command, args []string) error {
	photos, source, err := readPhotos(cmd, args)
	if err != nil {
		return err
	}
	issues, err := models.Validate(photos)
	out := cmd.OutOrStdout()
	for _, is := range issues {
		fmt.Fprintln(out, is.String())
	}
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	fmt.Fprintf(out, "%s: %d photos OK\n", source, len(photos))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	photos, source, err := readPhotos(cmd, nil)
	if err != nil {
		return err
	}
	data, err := manage.Export(photos)
	if err != nil {
		return err
	}
	if exportOut == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(exportOut, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	logger.Info("Exported gallery data", zap.String("from", source), zap.String("to", exportOut), zap.Int("count", len(photos)))
	return nil
}
