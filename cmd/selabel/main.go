/*******************************************************************************
*
* Copyright 2016 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ogier/pflag"

	"github.com/holocm/go-selabel/internal/bundle"
	"github.com/holocm/go-selabel/selabel"
)

// stringListFlag is a repeatable string flag (--path a --path b), since
// ogier/pflag predates the StringArray/StringSlice flag types that later
// pflag forks added.
type stringListFlag []string

func (f *stringListFlag) String() string {
	return strings.Join(*f, ",")
}

func (f *stringListFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func (f *stringListFlag) Type() string {
	return "string"
}

type options struct {
	subcommand string
	paths      []string
	subset     string
	baseOnly   bool
	mode       uint32
	aliases    []string
	key        string
	otherPaths []string
}

func main() {
	opts, exit := parseArgs()
	if exit {
		return
	}

	switch opts.subcommand {
	case "lookup":
		runLookup(opts)
	case "partial-match":
		runPartialMatch(opts)
	case "best-match":
		runBestMatch(opts)
	case "cmp":
		runCmp(opts)
	case "stats":
		runStats(opts)
	case "bundle":
		runBundle(opts)
	default:
		showError(fmt.Errorf("unrecognized subcommand: %q", opts.subcommand))
		os.Exit(1)
	}
}

func parseArgs() (result options, exit bool) {
	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return options{}, true
	}

	subcommand := args[0]
	if subcommand == "--help" || subcommand == "-h" {
		printHelp()
		return options{}, true
	}

	fs := pflag.NewFlagSet(subcommand, pflag.ExitOnError)
	var paths, aliases, otherPaths stringListFlag
	fs.Var(&paths, "path", "specfile base path (repeatable)")
	subsetFlag := fs.String("subset", "", "restrict to patterns starting with this prefix")
	baseOnlyFlag := fs.Bool("base-only", false, "skip homedirs/local overlays")
	modeFlag := fs.String("mode", "", "file-type filter: reg, dir, lnk, chr, blk, fifo, sock")
	fs.Var(&aliases, "alias", "alias path for best-match (repeatable)")
	fs.Var(&otherPaths, "other-path", "second rule set's specfile path, for cmp (repeatable)")

	if err := fs.Parse(args[1:]); err != nil {
		showError(err)
		os.Exit(1)
	}

	mode, err := parseModeFlag(*modeFlag)
	if err != nil {
		showError(err)
		os.Exit(1)
	}

	opts := options{
		subcommand: subcommand,
		paths:      []string(paths),
		subset:     *subsetFlag,
		baseOnly:   *baseOnlyFlag,
		mode:       mode,
		aliases:    []string(aliases),
		otherPaths: []string(otherPaths),
	}
	if fs.NArg() > 0 {
		opts.key = fs.Arg(0)
	}
	return opts, false
}

func parseModeFlag(s string) (uint32, error) {
	switch s {
	case "":
		return 0, nil
	case "reg":
		return selabel.ModeRegular, nil
	case "dir":
		return selabel.ModeDir, nil
	case "lnk":
		return selabel.ModeSymlink, nil
	case "chr":
		return selabel.ModeChar, nil
	case "blk":
		return selabel.ModeBlock, nil
	case "fifo":
		return selabel.ModeFIFO, nil
	case "sock":
		return selabel.ModeSocket, nil
	default:
		return 0, fmt.Errorf("unrecognized --mode value: %q", s)
	}
}

func openHandle(opts options) *selabel.Handle {
	env := selabel.Environment{Paths: opts.paths, Subset: opts.subset, BaseOnly: opts.baseOnly}
	h, err := selabel.Init(env)
	if err != nil {
		showError(err)
		os.Exit(2)
	}
	return h
}

func runLookup(opts options) {
	if opts.key == "" {
		showError(fmt.Errorf("lookup requires a path argument"))
		os.Exit(1)
	}
	h := openHandle(opts)
	defer h.Close()

	label, err := h.Lookup(opts.key, opts.mode)
	if err != nil {
		showError(err)
		os.Exit(1)
	}
	fmt.Println(label.Raw)
}

func runPartialMatch(opts options) {
	if opts.key == "" {
		showError(fmt.Errorf("partial-match requires a path argument"))
		os.Exit(1)
	}
	h := openHandle(opts)
	defer h.Close()

	ok, err := h.PartialMatch(opts.key)
	if err != nil {
		showError(err)
		os.Exit(1)
	}
	fmt.Println(strconv.FormatBool(ok))
}

func runBestMatch(opts options) {
	if opts.key == "" {
		showError(fmt.Errorf("best-match requires a path argument"))
		os.Exit(1)
	}
	h := openHandle(opts)
	defer h.Close()

	label, err := h.BestMatch(opts.key, opts.aliases, opts.mode)
	if err != nil {
		showError(err)
		os.Exit(1)
	}
	fmt.Println(label.Raw)
}

func runCmp(opts options) {
	if len(opts.otherPaths) == 0 {
		showError(fmt.Errorf("cmp requires at least one --other-path"))
		os.Exit(1)
	}
	h1 := openHandle(opts)
	defer h1.Close()

	h2, err := selabel.Init(selabel.Environment{Paths: opts.otherPaths, Subset: opts.subset, BaseOnly: opts.baseOnly})
	if err != nil {
		showError(err)
		os.Exit(2)
	}
	defer h2.Close()

	fmt.Println(cmpResultString(h1.Cmp(h2)))
}

func cmpResultString(r selabel.CmpResult) string {
	switch r {
	case selabel.CmpEqual:
		return "Equal"
	case selabel.CmpSubset:
		return "Subset"
	case selabel.CmpSuperset:
		return "Superset"
	default:
		return "Incomparable"
	}
}

func runStats(opts options) {
	h := openHandle(opts)
	defer h.Close()
	h.Stats()
}

func runBundle(opts options) {
	if len(opts.paths) == 0 {
		showError(fmt.Errorf("bundle requires at least one --path"))
		os.Exit(1)
	}

	var files []bundle.File
	for _, path := range opts.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			showError(err)
			os.Exit(1)
		}
		files = append(files, bundle.File{Name: trimDir(path), Contents: data})
	}

	data, err := bundle.ArBytes(files)
	if err != nil {
		showError(err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
}

func trimDir(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx == -1 {
		return path
	}
	return path[idx+1:]
}

func printHelp() {
	program := os.Args[0]
	fmt.Printf("Usage: %s <subcommand> [options] [path]\n\nSubcommands:\n", program)
	fmt.Println("  lookup <path>\t\tResolve a label for the given path")
	fmt.Println("  partial-match <path>\tReport whether path could be a valid prefix of some rule")
	fmt.Println("  best-match <path>\tResolve a label, considering --alias paths too")
	fmt.Println("  cmp\t\t\tCompare the --path rule set against --other-path")
	fmt.Println("  stats\t\t\tReport rules that were never matched")
	fmt.Println("  bundle\t\tPack --path specfiles into an ar archive on stdout")
	fmt.Println("Options:")
	fmt.Println("  --path <p>\t\tSpecfile base path (repeatable)")
	fmt.Println("  --subset <prefix>\tRestrict to patterns starting with this prefix")
	fmt.Println("  --base-only\t\tSkip homedirs/local overlays")
	fmt.Println("  --mode <m>\t\tFile-type filter: reg, dir, lnk, chr, blk, fifo, sock")
	fmt.Println("  --alias <p>\t\tAlias path for best-match (repeatable)")
	fmt.Println("  --other-path <p>\tSecond rule set's specfile path, for cmp (repeatable)")
}

func showError(err error) {
	fmt.Fprintf(os.Stderr, "\x1b[31m\x1b[1m!!\x1b[0m %s\n", err.Error())
}
