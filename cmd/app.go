package cmd

import (
	"fmt"
	"io"
	"strings"

	"platformcli/internal/cloud"
	"platformcli/internal/compute"
	"platformcli/internal/config"
	"platformcli/internal/dns"
	"platformcli/internal/logging"
	"platformcli/internal/output"
	"platformcli/internal/prompt"
	"platformcli/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every resource command needs: configuration, an AWS session and the operator streams
type app struct {
	cfg     *config.Config
	session *cloud.Session
	confirm prompt.ConfirmFunc
	out     io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug("Configuration loaded",
		zap.String("owner", cfg.Owner),
		zap.String("region", cfg.Region))

	session, err := cloud.NewSession(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	confirm := prompt.Stdin(out)
	if assumeYes {
		confirm = prompt.AlwaysYes
	}
	return &app{cfg: cfg, session: session, confirm: confirm, out: out}, nil
}

func (a *app) compute() *compute.Service {
	return compute.NewService(a.session.EC2(), compute.Options{
		Owner:         a.cfg.Owner,
		MaxRunning:    a.cfg.MaxRunningInstances,
		Images:        a.cfg.Images,
		InstanceTypes: a.cfg.InstanceTypes,
	}, a.out)
}

func (a *app) storage() *storage.Service {
	return storage.NewService(a.session.S3(), storage.Options{
		Owner:  a.cfg.Owner,
		Region: a.session.Region(),
	}, a.confirm, a.out)
}

func (a *app) dns() *dns.Service {
	return dns.NewService(a.session.Route53(), dns.Options{
		Owner: a.cfg.Owner,
		TTL:   a.cfg.RecordTTL,
	}, a.confirm, a.out)
}

// choice returns the canonical spelling of value if it matches one of choices, ignoring case
func choice(name, value string, choices []string) (string, error) {
	for _, c := range choices {
		if strings.EqualFold(c, value) {
			return c, nil
		}
	}
	quoted := make([]string, len(choices))
	for i, c := range choices {
		quoted[i] = "'" + c + "'"
	}
	return "", fmt.Errorf("argument %s: invalid choice: '%s' (choose from %s)", name, value, strings.Join(quoted, ", "))
}

// choiceArgs validates the positional argument at pos against a fixed set of choices
func choiceArgs(pos int, name string, choices []string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if pos >= len(args) {
			return nil
		}
		_, err := choice(name, args[pos], choices)
		return err
	}
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", string(output.FormatTable), "Output format: "+strings.Join(output.Formats, ", "))
}

func outputFormat(cmd *cobra.Command) (output.Format, error) {
	value, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

func writeList(a *app, format output.Format, title, empty string, v output.Tabular) error {
	return output.Write(a.out, format, title, empty, v)
}
