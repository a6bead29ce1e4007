package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/capyflow/bibsplit/parse/toml"
	"github.com/spf13/cobra"
)

// app 保存一次命令执行的配置和日志
type app struct {
	configPath string
	logLevel   string

	conf   *Config
	doc    *toml.Table
	logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "aq",
		Short:         "Aq is a tool for processing various types of data.",
		Long:          "Aq is a tool for processing various types of data. It splits bibtex databases into typed blocks and reads its settings from TOML.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./"+defaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newBibCmd(a))
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Aq",
		Long:  `All software has versions. This is Aq's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aq v0.2 -- HEAD")
		},
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	conf, doc, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		conf.LogLevel = a.logLevel
	}
	level, err := parseLevel(conf.LogLevel)
	if err != nil {
		return err
	}
	a.conf = conf
	a.doc = doc
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}
