package main

import (
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// appFlags holds all flags for the resident listener.
type appFlags struct {
	from           string
	wps            bool
	title          string
	straightQuotes bool
	hotkey         string
	engine         string
	timeout        time.Duration
	stylesFile     string
	keepDir        string
	verbose        bool
	quiet          bool
	version        bool
}

// defaultHotkey matches the published desktop builds.
const defaultHotkey = "ctrl+shift+t"

// newFlagSet builds the flag set with legacy aliases normalized, so both
// --from-format and --word-title from older releases keep working.
func newFlagSet(f *appFlags, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("markup-docx", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.SetNormalizeFunc(func(_ *flag.FlagSet, name string) flag.NormalizedName {
		switch name {
		case "from-format":
			name = "from"
		case "word-title":
			name = "title"
		}
		return flag.NormalizedName(name)
	})

	fs.StringVarP(&f.from, "from", "f", "typst", "source markup format: typst, markdown_mmd, md, html")
	fs.BoolVar(&f.wps, "wps", false, "target WPS Office instead of Word")
	fs.StringVar(&f.title, "title", "", "override target window title suffix")
	fs.BoolVar(&f.straightQuotes, "force-straight-quotes", false, "normalize curly quotes before conversion")
	fs.StringVar(&f.hotkey, "hotkey", defaultHotkey, "conversion hotkey")
	fs.StringVar(&f.engine, "engine", "", "rendering engine command line (default: pandoc)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 30*time.Second, "render timeout per conversion")
	fs.StringVar(&f.stylesFile, "styles", "", "YAML style map file")
	fs.StringVar(&f.keepDir, "keep-output", "", "copy each rendered .docx into this directory")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logging")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() { printUsage(output, fs) }
	return fs
}

// parseFlags parses arguments and returns the remaining positionals
// (the optional "doctor" subcommand).
func parseFlags(args []string, output io.Writer) (*appFlags, []string, error) {
	f := &appFlags{}
	fs := newFlagSet(f, output)
	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "markup-docx - convert the selected markup in Word/WPS to rendered content")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  markup-docx [flags]")
	fmt.Fprintln(w, "  markup-docx doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
