package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolah/specir/internal/config"
)

func GraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Report schema dependencies, depths, and cycles",
		RunE:  runGraph,
	}
	config.BindCommonFlags(cmd)
	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	doc, err := loadAndBuild(cmd, cfg)
	if err != nil {
		return err
	}

	graph := doc.Graph
	var report strings.Builder

	report.WriteString("Topological order:\n")
	for _, name := range graph.TopologicalOrder {
		node := graph.Nodes[name]
		marker := ""
		if node.IsCircular {
			marker = " (circular)"
		}
		fmt.Fprintf(&report, "  %s depth=%d%s\n", name, node.Depth, marker)
	}

	if len(graph.CircularReferences) > 0 {
		report.WriteString("Cycles:\n")
		for _, cycle := range graph.CircularReferences {
			fmt.Fprintf(&report, "  %s\n", strings.Join(cycle, " -> "))
		}
	} else {
		report.WriteString("No cycles.\n")
	}

	return emit(cmd, cfg.Out, []byte(report.String()))
}
