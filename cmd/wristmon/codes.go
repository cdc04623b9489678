package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wristmon-go/services/config"
	"wristmon-go/types"
)

func newCodesCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List the output byte protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCodes(cmd.OutOrStdout(), asYAML)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML")
	return cmd
}

func printCodes(w io.Writer, asYAML bool) error {
	if asYAML {
		type row struct {
			Code        string `yaml:"code"`
			Source      string `yaml:"source"`
			Description string `yaml:"description"`
		}
		rows := make([]row, 0, len(types.CodeTable))
		for _, c := range types.CodeTable {
			rows = append(rows, row{string(c.Code), c.Source, c.Description})
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(rows)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BYTE\tMODE\tMEANING")
	for _, c := range types.CodeTable {
		fmt.Fprintf(tw, "%c\t%s\t%s\n", c.Code, c.Source, c.Description)
	}
	return tw.Flush()
}

func newBoardsCmd() *cobra.Command {
	var dump string
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List embedded board configs, or print one with --dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if dump != "" {
				raw, ok := config.EmbeddedConfigLookup(dump)
				if !ok {
					return fmt.Errorf("unknown board %q", dump)
				}
				_, err := w.Write(raw)
				return err
			}
			for _, b := range config.Boards() {
				fmt.Fprintln(w, b)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dump, "dump", "", "print the YAML for this board")
	return cmd
}
