package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"platformcli/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	assumeYes  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "platform-cli",
	Short: "Manage owner-tagged AWS compute, storage and DNS resources",
	Long: `platform-cli creates, lists, manages and removes EC2 instances, S3 buckets and
Route53 hosted zones. Every resource it creates carries an owner tag, and only
resources with that tag can be changed or deleted through it.`,
	Version:       version,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// arguments are valid by now; later failures are not usage errors
		cmd.SilenceUsage = true
		return nil
	},
}

// Execute runs the command tree. Failures are printed to stdout and exit with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Logger().Debug("command failed", zap.Error(err))
		fmt.Fprintln(rootCmd.OutOrStdout(), err)
		stop()
		_ = logging.Sync()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file (default $CONFIG_PATH or ./platform-cli.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")
}
