package cmd

import (
	"fmt"
	"strings"

	"platformcli/internal/compute"
	"platformcli/internal/config"

	"github.com/spf13/cobra"
)

// computeCmd groups the EC2 instance commands
var computeCmd = &cobra.Command{
	Use:     "compute",
	Aliases: []string{"ec2"},
	Short:   "Manage EC2 instances",
}

var computeCreateCmd = &cobra.Command{
	Use:   "create <image> <instance-type>",
	Short: "Launch an instance",
	Long: `Launch one instance from an allowed image and instance type. Nothing is launched
when the owner already has the maximum number of running instances.`,
	Example: "  platform-cli compute create ubuntu t3.micro",
	Args:    cobra.MatchAll(cobra.ExactArgs(2), imageTypeArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		image, err := choice("image", args[0], a.cfg.ImageChoices())
		if err != nil {
			return err
		}
		instanceType, err := choice("type", args[1], a.cfg.InstanceTypes)
		if err != nil {
			return err
		}
		_, err = a.compute().Create(cmd.Context(), image, instanceType)
		return err
	},
}

// imageTypeArgs checks image and instance type against the configured allow-lists.
// A configuration that does not load is reported by the command itself.
func imageTypeArgs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil
	}
	if _, err := choice("image", args[0], cfg.ImageChoices()); err != nil {
		return err
	}
	_, err = choice("type", args[1], cfg.InstanceTypes)
	return err
}

var computeManageCmd = &cobra.Command{
	Use:     "manage <action> <instance-id>",
	Short:   "Start, stop or terminate an instance",
	Example: "  platform-cli compute manage stop i-0123456789abcdef0",
	Args:    cobra.MatchAll(cobra.ExactArgs(2), choiceArgs(0, "action", compute.Actions)),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.compute().Manage(cmd.Context(), compute.Action(strings.ToLower(args[0])), args[1])
	},
}

var computeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List instances created by the owner",
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
		instances, err := a.compute().List(cmd.Context())
		if err != nil {
			return err
		}
		return writeList(a, format,
			fmt.Sprintf("Instances created by %s:", a.cfg.Owner),
			fmt.Sprintf("No instances created by %s", a.cfg.Owner),
			instances)
	},
}

func init() {
	rootCmd.AddCommand(computeCmd)
	computeCmd.AddCommand(computeCreateCmd, computeManageCmd, computeListCmd)
	addOutputFlag(computeListCmd)
}
