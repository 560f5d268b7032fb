package main

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"os"
	"path/filepath"

	"github.com/pboyd/detour/internal/binfile"
	"github.com/spf13/cobra"
)

var (
	goVar     string
	goPackage string
	output    string
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <binary> [filter]",
	Short: "List the symbols of an ELF or PE binary",
	Long: `List the symbols of an ELF or PE binary, optionally only those containing filter.

With --go the names are written as a Go string slice for a forwarding table.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := binfile.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		var filter string
		if len(args) > 1 {
			filter = args[1]
		}
		syms := f.Symbols(filter)

		out := cmd.OutOrStdout()
		if output != "" {
			file, err := os.Create(output)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}

		if goVar != "" {
			return writeGoSymbols(out, goVar, goPackage, filepath.Base(args[0]), syms)
		}

		for _, sym := range syms {
			fmt.Fprintf(out, "%#x\t%6d\t%s\n", sym.Addr, sym.Size, sym.Name)
		}
		return nil
	},
}

func init() {
	symbolsCmd.Flags().StringVar(&goVar, "go", "", "Write Go source declaring a []string with this name")
	symbolsCmd.Flags().StringVar(&goPackage, "package", "main", "Package name for --go")
	symbolsCmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
}

func writeGoSymbols(w io.Writer, name, pkg, binary string, syms []binfile.Symbol) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by \"detour symbols --go %s --package %s %s\"; DO NOT EDIT.\n\n", name, pkg, binary)
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	fmt.Fprintf(&buf, "// %s lists every export of %s.\n", name, binary)
	fmt.Fprintf(&buf, "var %s = []string{\n", name)
	for _, sym := range syms {
		fmt.Fprintf(&buf, "\t%q,\n", sym.Name)
	}
	buf.WriteString("}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(src)
	return err
}
