// Command typegen drives a spec-check campaign from the command line:
// it loads a module file's type and spec definitions, runs a property
// campaign against the placeholder noopCallable, and prints a report.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/funvibe/typegen/internal/collab"
	"github.com/funvibe/typegen/internal/config"
	"github.com/funvibe/typegen/internal/registry"
	"github.com/funvibe/typegen/internal/speccheck"
	"github.com/funvibe/typegen/pkg/typegen"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  typegen check -module <file.yaml> -name <spec> -arity <n> [-config <file.yaml>] [-history <db>]")
	fmt.Fprintln(os.Stderr, "  typegen sample -module <file.yaml> -type <name> [-n <count>]")
	fmt.Fprintln(os.Stderr, "  typegen -help")
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		return false
	}
	if os.Args[1] != "-help" && os.Args[1] != "--help" && os.Args[1] != "help" {
		return false
	}
	usage()
	return true
}

// stringFlag scans args for "-name value" pairs.
func stringFlag(args []string, name, def string) string {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return def
}

func intFlag(args []string, name string, def int) int {
	v := stringFlag(args, name, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func handleCheck() bool {
	if len(os.Args) < 2 || os.Args[1] != "check" {
		return false
	}
	args := os.Args[2:]
	modulePath := stringFlag(args, "-module", "")
	name := stringFlag(args, "-name", "")
	arity := intFlag(args, "-arity", -1)
	configPath := stringFlag(args, "-config", "")
	historyPath := stringFlag(args, "-history", "")

	if modulePath == "" || name == "" || arity < 0 {
		fmt.Fprintln(os.Stderr, "check requires -module, -name and -arity")
		usage()
		os.Exit(1)
	}

	cfg := config.Defaults()
	if configPath != "" {
		loaded, err := config.LoadCampaignConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "typegen: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if historyPath == "" {
		historyPath = cfg.HistoryDB
	}

	src := registry.NewMemorySource()
	if err := registry.LoadYAMLModule(src, modulePath); err != nil {
		fmt.Fprintf(os.Stderr, "typegen: %v\n", err)
		os.Exit(1)
	}

	var hist speccheck.History
	if historyPath != "" {
		cache, err := registry.OpenCachingSource(src, historyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "typegen: %v\n", err)
			os.Exit(1)
		}
		defer cache.Close()
		hist = cache
	}

	module := moduleNameOf(src)
	fn := noopCallable

	opts := typegen.ValidateOptions{
		MinSuccessfulTests: cfg.MinSuccessfulTests,
		MaxSize:            cfg.MaxSize,
		SeedCount:          cfg.SeedCount,
	}

	var result *speccheck.Result
	var err error
	if hist != nil {
		resolver := collab.NewResolver(src)
		reg, rerr := resolver.Registry(module)
		if rerr != nil {
			fmt.Fprintf(os.Stderr, "typegen: %v\n", rerr)
			os.Exit(1)
		}
		result, err = speccheck.ValidateAndRecord(src, resolver, reg, module, name, arity, fn, opts, hist, "")
	} else {
		result, err = typegen.Validate(src, module, name, arity, fn, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "typegen: %v\n", err)
		os.Exit(1)
	}

	speccheck.Report(os.Stdout, module, name, arity, result)
	if !result.OK {
		os.Exit(1)
	}
	return true
}

func handleSample() bool {
	if len(os.Args) < 2 || os.Args[1] != "sample" {
		return false
	}
	args := os.Args[2:]
	modulePath := stringFlag(args, "-module", "")
	typeName := stringFlag(args, "-type", "")
	n := intFlag(args, "-n", 5)

	if modulePath == "" || typeName == "" {
		fmt.Fprintln(os.Stderr, "sample requires -module and -type")
		usage()
		os.Exit(1)
	}

	src := registry.NewMemorySource()
	if err := registry.LoadYAMLModule(src, modulePath); err != nil {
		fmt.Fprintf(os.Stderr, "typegen: %v\n", err)
		os.Exit(1)
	}
	module := moduleNameOf(src)

	gen, err := typegen.FromType(src, module, typeName, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "typegen: %v\n", err)
		os.Exit(1)
	}
	for i := 0; i < n; i++ {
		v, ok := gen.Sample(config.DefaultMaxSize)
		if !ok {
			fmt.Fprintln(os.Stderr, "typegen: generator produced no value")
			os.Exit(1)
		}
		fmt.Printf("%v\n", v)
	}
	return true
}

// moduleNameOf recovers the registered module name from a freshly
// populated MemorySource; LoadYAMLModule only ever registers one.
func moduleNameOf(src *registry.MemorySource) string {
	return src.SoleModuleName()
}

// noopCallable is the placeholder fn a CLI run exercises when the
// caller has no Go callable to wire up directly (the common case: the
// function under test lives in a different process or language
// runtime and would be invoked over some transport in its place).
func noopCallable(args []any) (any, error) {
	return nil, nil
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "typegen: internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}
	if handleCheck() {
		return
	}
	if handleSample() {
		return
	}
	usage()
	os.Exit(1)
}
