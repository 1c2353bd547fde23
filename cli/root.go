package cli

import (
	"creativehub/common"
	"creativehub/config"
	"creativehub/domain/state"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var envFile string

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "creativehub",
		Short:         "Creative project marketplace service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				logrus.Warnf("failed to load %s: %v", envFile, err)
			}
			logConfig := config.LoadLogConfig()
			common.ConfigureLogging(logConfig.Level, logConfig.Format)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	root.AddCommand(newServeCommand(), newMigrateCommand(), newWorkflowCommand())
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// loadMachine reads the workflow file when given, the built-in lifecycle otherwise.
func loadMachine(path string) (*state.StateMachine, error) {
	if path == "" {
		return state.Default(), nil
	}
	return state.LoadFile(path)
}
