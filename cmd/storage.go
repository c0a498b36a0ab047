package cmd

import (
	"fmt"
	"strings"

	"platformcli/internal/storage"

	"github.com/spf13/cobra"
)

// storageCmd groups the S3 bucket commands
var storageCmd = &cobra.Command{
	Use:     "storage",
	Aliases: []string{"s3"},
	Short:   "Manage S3 buckets",
}

var storageCreateCmd = &cobra.Command{
	Use:   "create <visibility>",
	Short: "Create a bucket",
	Long: `Create a bucket named after the owner with a random suffix. A public bucket asks
for confirmation first and stays private if the public read policy cannot be applied.`,
	Example: "  platform-cli storage create private",
	Args:    cobra.MatchAll(cobra.ExactArgs(1), choiceArgs(0, "visibility", storage.Visibilities)),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		_, err = a.storage().Create(cmd.Context(), storage.Visibility(strings.ToLower(args[0])))
		return err
	},
}

var storageDeleteCmd = &cobra.Command{
	Use:     "delete <bucket>",
	Short:   "Empty and delete a bucket created by the owner",
	Example: "  platform-cli storage delete s3-bucket-lirchen-a1b2c3",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.storage().Delete(cmd.Context(), args[0])
	},
}

var storageUploadCmd = &cobra.Command{
	Use:     "upload <local-path> <bucket> <object-name>",
	Short:   "Upload a file to a bucket",
	Example: "  platform-cli storage upload ./report.pdf s3-bucket-lirchen-a1b2c3 reports/report.pdf",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.storage().Upload(cmd.Context(), args[0], args[1], args[2])
	},
}

var storageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List buckets created by the owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		buckets, err := a.storage().List(cmd.Context())
		if err != nil {
			return err
		}
		return writeList(a, format,
			fmt.Sprintf("S3 buckets created by %s:", a.cfg.Owner),
			fmt.Sprintf("No S3 buckets created by %s", a.cfg.Owner),
			buckets)
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageCreateCmd, storageDeleteCmd, storageUploadCmd, storageListCmd)
	addOutputFlag(storageListCmd)
}
