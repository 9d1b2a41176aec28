package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ZhangYouJie-Major/AskIt/cmd/askit/app/option"
	"github.com/ZhangYouJie-Major/AskIt/internal/adapters/httpclient"
	"github.com/ZhangYouJie-Major/AskIt/internal/config"
	"github.com/ZhangYouJie-Major/AskIt/internal/contract"
	"github.com/ZhangYouJie-Major/AskIt/internal/logger"
)

// session is built once per invocation, before any subcommand runs.
type session struct {
	cfg    *config.Config
	client *contract.Client
	out    io.Writer
}

func NewCommand(version string) *cobra.Command {
	opt := &option.Option{}
	s := &session{}

	cmd := &cobra.Command{
		Use:           "askit",
		Short:         "AskIt knowledge base client",
		Long:          "askit queries the AskIt enterprise knowledge base and manages its documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opt.GenerateConfig()
			if err != nil {
				return err
			}
			logger.InitLogger(cfg.LogLevel)

			s.cfg = cfg
			s.out = cmd.OutOrStdout()
			s.client = contract.New(httpclient.NewClient(httpclient.Config{
				BaseURL:   cfg.BaseURL,
				Token:     cfg.Token,
				Timeout:   cfg.Timeout,
				UserAgent: "askit/" + versionOrDev(version),
			}))
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print version and exit",
		Example: "askit version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "version:", versionOrDev(version))
		},
	}

	opt.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(versionCmd)
	cmd.AddCommand(newQueryCommand(s))
	cmd.AddCommand(newChatCommand(s))
	cmd.AddCommand(newDocsCommand(s))
	cmd.AddCommand(newHealthCommand(s))
	cmd.AddCommand(newRouteCommand(s))
	return cmd
}

func versionOrDev(version string) string {
	if version == "" {
		return "dev"
	}
	return version
}
