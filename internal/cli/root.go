package cli

import "github.com/spf13/cobra"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "specir",
		Short:   "specir - OpenAPI intermediate representation toolkit",
		Version: "1.0.0",

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(
		BuildCommand(),
		WriteCommand(),
		GraphCommand(),
		CheckCommand(),
	)

	return root
}
