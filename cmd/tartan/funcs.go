package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tartan/internal/gvariant"
)

var funcsCmd = &cobra.Command{
	Use:   "funcs [path]",
	Short: "List the functions whose format strings are checked",
	Long: `List the built-in GVariant functions together with the ones added by
[[functions]] entries of tartan.toml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFuncs,
}

func init() {
	funcsCmd.Flags().String("format", "table", "output format (table|json)")
}

type funcJSON struct {
	Name        string `json:"name"`
	FormatParam int    `json:"format_param"`
	FirstVararg int    `json:"first_vararg"`
	VaList      bool   `json:"va_list"`
	Direction   string `json:"direction"`
}

func runFuncs(cmd *cobra.Command, args []string) error {
	start := "."
	if len(args) == 1 {
		start = args[0]
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	manifest, _, err := loadProjectManifest(configPath, start)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	tbl := gvariant.DefaultTable()
	if manifest != nil {
		if tbl, err = manifest.Config.functionTable(manifest.Path); err != nil {
			return &exitError{code: exitUsage, err: err}
		}
	}

	switch format {
	case "table":
		renderFuncTable(cmd.OutOrStdout(), tbl.All())
		return nil
	case "json":
		return renderFuncJSON(cmd.OutOrStdout(), tbl.All())
	default:
		return usageError("unknown format: %s (expected table|json)", format)
	}
}

func renderFuncTable(w io.Writer, sigs []gvariant.Signature) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Function", "Format", "First vararg", "va_list", "Direction"})
	for _, s := range sigs {
		t.AppendRow(table.Row{s.Name, s.FormatParam, s.FirstVararg, yesNo(s.UsesVaList), s.Direction()})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d functions", len(sigs)), "", "", "", ""})
	t.Render()
}

func renderFuncJSON(w io.Writer, sigs []gvariant.Signature) error {
	out := make([]funcJSON, 0, len(sigs))
	for _, s := range sigs {
		out = append(out, funcJSON{
			Name:        s.Name,
			FormatParam: s.FormatParam,
			FirstVararg: s.FirstVararg,
			VaList:      s.UsesVaList,
			Direction:   s.Direction(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
