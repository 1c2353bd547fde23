package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newWorkflowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Inspect project lifecycle definitions",
	}

	var file string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective lifecycle definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = os.Getenv("WORKFLOW_FILE")
			}
			sm, err := loadMachine(file)
			if err != nil {
				return err
			}
			out, err := sm.MarshalDefinition()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	show.Flags().StringVarP(&file, "file", "f", "", "workflow definition file, defaults to WORKFLOW_FILE or the built-in one")

	validate := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a lifecycle definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sm, err := loadMachine(args[0])
			if err != nil {
				return fmt.Errorf("invalid workflow %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "workflow %s is valid: %d states, %d transitions\n",
				sm.Name, len(sm.States), len(sm.Transitions))
			return nil
		},
	}

	cmd.AddCommand(show, validate)
	return cmd
}
