package main

import (
	"fmt"

	"github.com/apex/log"
	"github.com/pboyd/detour"
	"github.com/pboyd/detour/internal/binfile"
	"github.com/spf13/cobra"
)

var minSize int

var prologueCmd = &cobra.Command{
	Use:   "prologue <binary> <symbol>",
	Short: "Find the shortest safe patch length at a symbol",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := binfile.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		sym, ok := f.Lookup(args[1])
		if !ok {
			return fmt.Errorf("%w: %s", detour.ErrUnknownSymbol, args[1])
		}
		log.WithFields(log.Fields{
			"addr": fmt.Sprintf("%#x", sym.Addr),
			"size": sym.Size,
		}).Debug("found symbol")

		// Enough for the last instruction to straddle minSize.
		code, err := f.CodeAt(sym.Addr, minSize+15)
		if err != nil {
			return err
		}

		n, err := detour.PrologueLength(code, minSize)
		if err != nil {
			return err
		}

		asm, err := detour.Disassemble(code[:n], uintptr(sym.Addr))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, asm)
		fmt.Fprintf(out, "size: %d\n", n)
		return nil
	},
}

func init() {
	prologueCmd.Flags().IntVar(&minSize, "min", detour.MinPatchSize, "Minimum patch length")
}
