package main

import (
	"errors"
	"fmt"

	"github.com/pboyd/detour"
	"github.com/pboyd/detour/versions"
	"github.com/spf13/cobra"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <binary>",
	Short: "Print the SHA-256 fingerprint of a binary and the build it matches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fp, err := versions.Fingerprint(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, fp)

		desc, err := versions.Default.Find(fp)
		if errors.Is(err, detour.ErrUnknownVersion) {
			fmt.Fprintln(out, "unknown build")
			return nil
		} else if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s (%v)\n", desc.Name, versions.DetectVariant(desc.Platform, args[0]))
		return nil
	},
}
