package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"cdr.dev/slog"

	"oss.terrastruct.com/xdefer"

	"oss.audgraph.dev/aud/audgraph"
	"oss.audgraph.dev/aud/audlib"
	"oss.audgraph.dev/aud/audrenderers/audsvg"
	"oss.audgraph.dev/aud/audthemes"
	"oss.audgraph.dev/aud/audthemes/audthemescatalog"
	"oss.audgraph.dev/aud/lib/log"
	"oss.audgraph.dev/aud/lib/textmeasure"
	timelib "oss.audgraph.dev/aud/lib/time"
	"oss.audgraph.dev/aud/lib/version"
	"oss.audgraph.dev/aud/lib/xmain"
)

func main() {
	xmain.Main(run)
}

func run(ctx context.Context, ms *xmain.State) (err error) {
	ctx = log.Stderr(ctx)

	watchFlag, err := ms.Opts.Bool("AUD_WATCH", "watch", "w", false, "watch for changes to the trace and live reload. Use $HOST and $PORT to specify the listening address.\n(default localhost:0, which will open on a randomly available local port).")
	if err != nil {
		return err
	}
	hostFlag := ms.Opts.String("HOST", "host", "", "localhost", "host listening address when used with watch")
	portFlag := ms.Opts.String("PORT", "port", "p", "0", "port listening address when used with watch")
	themeFlag, err := ms.Opts.Int64("AUD_THEME", "theme", "t", 0, "the diagram theme ID. For a list of available options, run `aud themes`")
	if err != nil {
		return err
	}
	padFlag, err := ms.Opts.Int64("AUD_PAD", "pad", "", audsvg.DEFAULT_PADDING, "pixels padded around the rendered diagram")
	if err != nil {
		return err
	}
	noXMLTagFlag, err := ms.Opts.Bool("AUD_NO_XML_TAG", "no-xml-tag", "", false, "omit the XML tag (<?xml ...?>) from the output SVG. Useful when embedding directly in HTML")
	if err != nil {
		return err
	}
	browserFlag := ms.Opts.String("BROWSER", "browser", "", "", "browser executable that watch opens. Setting to 0 opens no browser.")
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		return err
	}
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if len(ms.Opts.Flags.Args()) > 0 {
		switch ms.Opts.Flags.Arg(0) {
		case "themes":
			themesCmd(ms)
			return nil
		case "version":
			if len(ms.Opts.Flags.Args()) > 1 {
				return xmain.UsageErrorf("version subcommand accepts no arguments")
			}
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
	}

	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
		ms.Env.Setenv("DEBUG", "1")
	}
	if *browserFlag != "" {
		ms.Env.Setenv("BROWSER", *browserFlag)
	}

	var inputPath string
	var outputPath string

	if len(ms.Opts.Flags.Args()) == 0 {
		if versionFlag != nil && *versionFlag {
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
		help(ms)
		return nil
	} else if len(ms.Opts.Flags.Args()) >= 3 {
		return xmain.UsageErrorf("too many arguments passed")
	}

	inputPath = ms.Opts.Flags.Arg(0)
	if len(ms.Opts.Flags.Args()) >= 2 {
		outputPath = ms.Opts.Flags.Arg(1)
	} else {
		if inputPath == "-" {
			outputPath = "-"
		} else {
			outputPath = renameExt(inputPath, ".svg")
		}
	}

	match := audthemescatalog.Find(*themeFlag)
	if match == (audthemes.Theme{}) {
		return xmain.UsageErrorf("-t[heme] could not be found. The available options are:\n%s\nYou provided: %d", audthemescatalog.CLIString(), *themeFlag)
	}
	ms.Log.Debug.Printf("using theme %s (ID: %d)", match.Name, *themeFlag)

	renderOpts := audsvg.RenderOpts{
		Pad:      padFlag,
		ThemeID:  themeFlag,
		NoXMLTag: noXMLTagFlag,
	}

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		ms.Env.Setenv("LOG_TIMESTAMPS", "1")
		w, err := newWatcher(ctx, ms, watcherOpts{
			renderOpts: renderOpts,
			host:       *hostFlag,
			port:       *portFlag,
			inputPath:  inputPath,
			outputPath: outputPath,
		})
		if err != nil {
			return err
		}
		return w.run()
	}

	ctx, cancel := timelib.WithTimeout(ctx, time.Minute*2)
	defer cancel()

	_, err = compile(ctx, ms, renderOpts, inputPath, outputPath)
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("successfully compiled %v to %v", inputPath, outputPath)
	return nil
}

func compile(ctx context.Context, ms *xmain.State, renderOpts audsvg.RenderOpts, inputPath, outputPath string) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to compile %s", inputPath)

	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, err
	}

	ruler, err := textmeasure.NewRuler()
	if err != nil {
		return nil, err
	}

	diagram, _, err := audlib.Compile(ctx, string(input), &audlib.CompileOptions{
		Ruler:  ruler,
		Layout: placeUnplaced(ms),
	})
	if err != nil {
		return nil, err
	}

	svg, err := audsvg.Render(diagram, &renderOpts)
	if err != nil {
		return nil, err
	}

	err = ms.WritePath(outputPath, svg)
	if err != nil {
		return nil, err
	}
	return svg, nil
}

// placeUnplaced parks nodes the trace never placed in a row underneath the
// placed ones, in creation order. Real positions come from the host's
// node-placed events, the row only keeps partial traces viewable.
func placeUnplaced(ms *xmain.State) audgraph.LayoutGraph {
	return func(ctx context.Context, g *audgraph.Graph) error {
		var unplaced []*audgraph.Node
		bottom := 0.
		for _, n := range g.Nodes {
			if n.Placed() {
				bottom = math.Max(bottom, n.Box.TopLeft.Y+n.Box.Height)
				continue
			}
			unplaced = append(unplaced, n)
		}
		if len(unplaced) == 0 {
			return nil
		}
		ms.Log.Warn.Printf("trace placed %d of %d nodes: laying the rest out in a row", len(g.Nodes)-len(unplaced), len(g.Nodes))

		const gap = 60.
		x := 0.
		y := bottom + gap
		for _, n := range unplaced {
			n.SetCenter(x+n.Box.Width/2, y+n.Box.Height/2)
			x += n.Box.Width + gap
		}
		return nil
	}
}

// newExt must include leading .
func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	} else {
		return strings.TrimSuffix(fp, ext) + newExt
	}
}
