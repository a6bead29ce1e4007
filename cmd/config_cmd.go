package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/capyflow/bibsplit/parse/toml"
	"github.com/capyflow/bibsplit/pkg"
	"github.com/spf13/cobra"
)

type TomlParams struct {
	Find   string `json:"find"`   // 查找的key，点分路径
	Output string `json:"output"` // 输出文件地址
}

func newConfigCmd(a *app) *cobra.Command {
	params := &TomlParams{}
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "show the effective aq settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return configRun(cmd, a, params)
		},
	}
	configCmd.Flags().StringVarP(&params.Find, "find", "f", "", "print one key of the config file, e.g. bib.format")
	configCmd.Flags().StringVarP(&params.Output, "output", "o", "", "output path")
	return configCmd
}

func configRun(cmd *cobra.Command, a *app, params *TomlParams) error {
	var v any
	if params.Find != "" {
		n, ok := toml.Get(a.doc, strings.Split(params.Find, ".")...)
		if !ok {
			return fmt.Errorf("key %q not found in config", params.Find)
		}
		v = toml.ToUntyped(n)
	} else {
		v = map[string]any{
			"log": map[string]any{"level": a.conf.LogLevel},
			"bib": map[string]any{
				"format": a.conf.Bib.Format,
				"strict": a.conf.Bib.Strict,
				"indent": a.conf.Bib.Indent,
			},
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return pkg.WriteOutput(params.Output, cmd.OutOrStdout(), append(b, '\n'))
}
