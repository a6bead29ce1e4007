package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/capyflow/bibsplit/parse/bibtex"
	"github.com/capyflow/bibsplit/pkg"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type BibParams struct {
	Format string `json:"format"` // json | yaml | bibtex | summary
	Output string `json:"output"` // 输出文件地址
	Strict bool   `json:"strict"` // 存在解析失败的块时返回错误
}

func newBibCmd(a *app) *cobra.Command {
	params := &BibParams{}
	bibCmd := &cobra.Command{
		Use:   "bib [file]",
		Short: "split a bibtex database into typed blocks",
		Long:  "Split a bibtex database into entries, strings, preambles and comments. Broken blocks are reported and kept as raw text. Reads stdin when no file or - is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.parseBib(cmd, args)
			if err != nil {
				return err
			}
			format := params.Format
			if format == "" {
				format = a.conf.Bib.Format
			}
			out, err := a.render(lib, format)
			if err != nil {
				return err
			}
			return pkg.WriteOutput(params.Output, cmd.OutOrStdout(), out)
		},
	}
	bibCmd.Flags().StringVarP(&params.Format, "format", "f", "", "json, yaml, bibtex or summary")
	bibCmd.Flags().StringVarP(&params.Output, "output", "o", "", "output path")

	checkCmd := &cobra.Command{
		Use:   "check [file]",
		Short: "report failed blocks and duplicate field keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.parseBib(cmd, args)
			if err != nil {
				return err
			}
			name := "<stdin>"
			if len(args) == 1 {
				name = args[0]
			}
			failed := writeReport(cmd.OutOrStdout(), name, lib)
			if failed > 0 && (params.Strict || a.conf.Bib.Strict) {
				return fmt.Errorf("%s: %d problem blocks", name, failed)
			}
			return nil
		},
	}
	checkCmd.Flags().BoolVar(&params.Strict, "strict", false, "exit with an error if any block failed")

	fmtCmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "rewrite a bibtex database in normalized form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.parseBib(cmd, args)
			if err != nil {
				return err
			}
			out, err := a.render(lib, "bibtex")
			if err != nil {
				return err
			}
			return pkg.WriteOutput(params.Output, cmd.OutOrStdout(), out)
		},
	}
	fmtCmd.Flags().StringVarP(&params.Output, "output", "o", "", "output path")

	bibCmd.AddCommand(checkCmd, fmtCmd)
	return bibCmd
}

func (a *app) parseBib(cmd *cobra.Command, args []string) (*bibtex.Library, error) {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	src, err := pkg.ReadInput(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	lib, err := bibtex.Parse(string(src), bibtex.Options{Logger: a.logger.With("file", path)})
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", path, err)
	}
	return lib, nil
}

func (a *app) render(lib *bibtex.Library, format string) ([]byte, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(bibtex.ToRecords(lib), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml":
		return yaml.Marshal(bibtex.ToRecords(lib))
	case "bibtex":
		var buf bytes.Buffer
		if err := bibtex.Write(&buf, lib, bibtex.WriteOptions{Indent: a.conf.Bib.Indent}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "summary":
		var buf bytes.Buffer
		writeSummary(&buf, lib)
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func writeSummary(w io.Writer, lib *bibtex.Library) {
	counts := make(map[bibtex.BlockKind]int)
	for _, b := range lib.Blocks() {
		counts[b.Kind()]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "%-20s %d\n", k, counts[bibtex.BlockKind(k)])
	}
}

// writeReport 输出每个问题块，返回问题块数量
func writeReport(w io.Writer, name string, lib *bibtex.Library) int {
	failed := lib.FailedBlocks()
	for _, b := range failed {
		switch b := b.(type) {
		case *bibtex.ParsingFailedBlock:
			fmt.Fprintf(w, "%s:%d: %s\n", name, b.StartLine(), b.Err().Reason)
		case *bibtex.DuplicateFieldKeyBlock:
			fmt.Fprintf(w, "%s:%d: entry %q has duplicate field keys %v\n", name, b.StartLine(), b.Entry().Key(), b.DuplicateKeys())
		}
	}
	writeSummary(w, lib)
	fmt.Fprintf(w, "%d blocks, %d entries, %d problems\n", lib.Len(), len(lib.Entries()), len(failed))
	return len(failed)
}
