package cmd

import (
	"fmt"

	"platformcli/internal/dns"

	"github.com/spf13/cobra"
)

// dnsCmd groups the Route53 commands
var dnsCmd = &cobra.Command{
	Use:     "dns",
	Aliases: []string{"route53"},
	Short:   "Manage Route53 hosted zones and records",
}

var dnsCreateCmd = &cobra.Command{
	Use:     "create <domain>",
	Short:   "Create a hosted zone",
	Example: "  platform-cli dns create example.com",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		_, err = a.dns().Create(cmd.Context(), args[0])
		return err
	},
}

var dnsDeleteCmd = &cobra.Command{
	Use:     "delete <zone-id>",
	Short:   "Delete an empty hosted zone created by the owner",
	Example: "  platform-cli dns delete Z0123456789ABCDEFGHIJ",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.dns().Delete(cmd.Context(), args[0])
	},
}

var dnsManageCmd = &cobra.Command{
	Use:   "manage <action> <zone-id> <record-name> <record-type> <record-value>",
	Short: "Create, update or delete a record set",
	Long: `Create, update or delete a record set in a hosted zone created by the owner.
record-value may list several values separated by commas; a CNAME takes exactly one.`,
	Example: "  platform-cli dns manage update Z0123456789ABCDEFGHIJ www.example.com. A 1.2.3.4",
	Args:    cobra.MatchAll(cobra.ExactArgs(5), choiceArgs(0, "action", dns.RecordActions)),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := dns.ParseRecordAction(args[0])
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		_, err = a.dns().Manage(cmd.Context(), action, args[1], args[2], args[3], args[4])
		return err
	},
}

var dnsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hosted zones created by the owner",
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
		zones, err := a.dns().List(cmd.Context())
		if err != nil {
			return err
		}
		return writeList(a, format,
			fmt.Sprintf("Route53 zones created by %s:", a.cfg.Owner),
			fmt.Sprintf("No Route53 zones created by %s", a.cfg.Owner),
			zones)
	},
}

func init() {
	rootCmd.AddCommand(dnsCmd)
	dnsCmd.AddCommand(dnsCreateCmd, dnsDeleteCmd, dnsManageCmd, dnsListCmd)
	addOutputFlag(dnsListCmd)
}
