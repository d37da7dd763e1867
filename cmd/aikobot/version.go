package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set via -ldflags at release build time.
var Version = ""

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the aikobot version",
		Run: func(cmd *cobra.Command, args []string) {
			v := Version
			if v == "" {
				if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
					v = info.Main.Version
				} else {
					v = "(devel)"
				}
			}
			fmt.Println("aikobot", v)
		},
	}
}
