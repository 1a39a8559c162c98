package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolah/specir/internal/builder"
	"github.com/kolah/specir/internal/config"
	"github.com/kolah/specir/internal/ir"
	"github.com/kolah/specir/internal/loader"
)

func BuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the intermediate representation from an OpenAPI spec",
		RunE:  runBuild,
	}
	config.BindCommonFlags(cmd)
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	doc, err := loadAndBuild(cmd, cfg)
	if err != nil {
		return err
	}

	data, err := marshalIR(doc, cfg.Pretty)
	if err != nil {
		return fmt.Errorf("encoding IR: %w", err)
	}

	return emit(cmd, cfg.Out, data)
}

// loadAndBuild runs the load, optional validate, and build steps shared by
// the build, graph, and check commands.
func loadAndBuild(cmd *cobra.Command, cfg *config.Config) (*ir.Document, error) {
	result, err := loader.LoadFile(cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("loading spec: %w", err)
	}

	for _, w := range result.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	if cfg.ValidateSpec {
		messages, err := loader.Validate(result)
		if err != nil {
			return nil, fmt.Errorf("validating spec: %w", err)
		}
		if len(messages) > 0 {
			for _, m := range messages {
				cmd.PrintErrf("Validation: %s\n", m)
			}
			return nil, fmt.Errorf("spec failed validation with %d error(s)", len(messages))
		}
	}

	doc, err := builder.Build(&result.Document.Model, builder.Options{
		ExcludeSchemas: cfg.ExcludeSchemas,
	})
	if err != nil {
		return nil, fmt.Errorf("building IR: %w", err)
	}

	cmd.PrintErrf("Loaded OpenAPI %s: %s v%s\n", result.Version, doc.Info.Title, doc.Info.Version)
	cmd.PrintErrf("  Schemas: %d\n", len(doc.SchemaNames))
	cmd.PrintErrf("  Operations: %d\n", len(doc.Operations))

	return doc, nil
}

func marshalIR(doc *ir.Document, pretty bool) ([]byte, error) {
	if pretty {
		return ir.MarshalDocumentIndent(doc)
	}
	return ir.MarshalDocument(doc)
}

// emit writes data to the output path, or stdout when no path is set.
func emit(cmd *cobra.Command, out string, data []byte) error {
	if out == "" {
		cmd.Print(string(data))
		return nil
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	cmd.PrintErrf("Written: %s\n", out)
	return nil
}
