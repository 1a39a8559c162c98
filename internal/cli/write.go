package cli

import (
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/specir/internal/ir"
	"github.com/kolah/specir/internal/writer"
)

func WriteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <ir-file>",
		Short: "Write an OpenAPI document from a serialized IR",
		Args:  cobra.ExactArgs(1),
		RunE:  runWrite,
	}

	flags := cmd.Flags()
	flags.StringP("out", "o", "", "Output file path (default: stdout)")
	flags.String("format", "yaml", "Output format: json or yaml")

	return cmd
}

func runWrite(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading IR file: %w", err)
	}

	doc, err := ir.UnmarshalDocument(data)
	if err != nil {
		return fmt.Errorf("decoding IR: %w", err)
	}

	model, err := writer.Write(doc)
	if err != nil {
		return fmt.Errorf("writing OpenAPI model: %w", err)
	}

	rendered, err := model.Render()
	if err != nil {
		return fmt.Errorf("rendering OpenAPI document: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
	case "json":
		rendered, err = yamlToJSON(rendered)
		if err != nil {
			return fmt.Errorf("converting to JSON: %w", err)
		}
	default:
		return fmt.Errorf("invalid format: %s (valid: json, yaml)", format)
	}

	out, _ := cmd.Flags().GetString("out")
	return emit(cmd, out, rendered)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}
