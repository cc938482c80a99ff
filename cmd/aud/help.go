package main

import (
	"fmt"
	"path/filepath"

	"oss.audgraph.dev/aud/audthemes/audthemescatalog"
	"oss.audgraph.dev/aud/lib/version"
	"oss.audgraph.dev/aud/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--watch=false] [--theme=0] file.trace [file.svg]

%[1]s renders the audio node graph captured in file.trace to file.svg.
It defaults to file.svg if an output path is not provided.

Use - to have %[1]s read from stdin or write to stdout.

Flags:
%[3]s

Subcommands:
  %[1]s themes - Lists available themes
  %[1]s version - Prints the version
`, filepath.Base(ms.Name), version.Version, ms.Opts.Help())
}

func themesCmd(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, "Available themes:\n%s", audthemescatalog.CLIString())
}
