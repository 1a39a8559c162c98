package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kolah/specir/internal/builder"
	"github.com/kolah/specir/internal/config"
	"github.com/kolah/specir/internal/ir"
	"github.com/kolah/specir/internal/writer"
)

func CheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that building, writing, and rebuilding is lossless",
		RunE:  runCheck,
	}
	config.BindCommonFlags(cmd)
	cmd.Flags().String("dir", "", "Directory for normalized.json and reprocessed.json (default: no files)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	doc, err := loadAndBuild(cmd, cfg)
	if err != nil {
		return err
	}

	model, err := writer.Write(doc)
	if err != nil {
		return fmt.Errorf("writing OpenAPI model: %w", err)
	}

	rebuilt, err := builder.Build(model, builder.Options{ExcludeSchemas: cfg.ExcludeSchemas})
	if err != nil {
		return fmt.Errorf("rebuilding IR: %w", err)
	}

	normalized, err := ir.MarshalDocumentIndent(doc)
	if err != nil {
		return fmt.Errorf("encoding IR: %w", err)
	}
	reprocessed, err := ir.MarshalDocumentIndent(rebuilt)
	if err != nil {
		return fmt.Errorf("encoding rebuilt IR: %w", err)
	}

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		for name, data := range map[string][]byte{
			"normalized.json":  normalized,
			"reprocessed.json": reprocessed,
		} {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			cmd.PrintErrf("Written: %s\n", path)
		}
	}

	if !bytes.Equal(normalized, reprocessed) {
		return fmt.Errorf("round trip mismatch: rebuilt IR differs from the original")
	}

	cmd.PrintErrln("Round trip OK: rebuilt IR matches the original.")
	return nil
}
