package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/peterh/liner"

	"convgen/internal/compiler"
	"convgen/internal/missing"
	"convgen/internal/registry"
	"convgen/internal/tree"
)

const usage = `convgen - tag-table conversion compiler

Usage:
  convgen build [--out <dir>] [--pkg <name>] [--watch] <input>
                                  Compile extraction records to Go source
  convgen missing <input>         Report conversions that fell back to placeholders
  convgen expr [--kind <kind>] <expression>
                                  Compile one expression and print the result
  convgen shell                   Interactive expression shell

Options:
  --out <dir>    Output directory for generated files (default: convs)
  --pkg <name>   Package name for generated files (default: convs)
  --watch        Rebuild whenever the input files change
  --kind <kind>  Conversion kind: PrintConv, ValueConv, or Condition

Input is a directory of extraction files (*.json, manifests excluded)
or a single extraction file. Files may hold a JSON array of records or
a stream of JSON objects.

Examples:
  convgen build --out gen/convs extract/
  convgen build --watch extract/canon.json
  convgen missing extract/
  convgen expr --kind ValueConv 'exp($val/32*log(2))*100'
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "build":
		handleBuild(os.Args[2:])
	case "missing":
		handleMissing(os.Args[2:])
	case "expr":
		handleExpr(os.Args[2:])
	case "shell":
		handleShell()
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func handleBuild(args []string) {
	outDir := "convs"
	pkg := ""
	watch := false
	var inputPath string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--out":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --out requires a directory")
				os.Exit(1)
			}
			i++
			outDir = args[i]
		case "--pkg":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --pkg requires a name")
				os.Exit(1)
			}
			i++
			pkg = args[i]
		case "--watch":
			watch = true
		default:
			if strings.HasPrefix(args[i], "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", args[i])
				os.Exit(1)
			}
			inputPath = args[i]
		}
	}

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no input specified")
		os.Exit(1)
	}

	if err := runBuild(inputPath, outDir, pkg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if !watch {
			os.Exit(1)
		}
	}

	if watch {
		if err := watchAndBuild(inputPath, outDir, pkg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}
}

func runBuild(inputPath, outDir, pkg string) error {
	records, err := loadInput(inputPath)
	if err != nil {
		return err
	}

	res := compiler.Compile(records, compiler.Options{Package: pkg})
	if res.Diagnostics.Count() > 0 {
		fmt.Fprint(os.Stderr, res.Diagnostics.Format())
	}
	if res.Diagnostics.HasErrors() {
		return fmt.Errorf("%d record(s) failed", res.Diagnostics.ErrorCount())
	}

	if err := compiler.EmitFiles(res.Files, outDir); err != nil {
		return err
	}

	s := res.Stats
	fmt.Printf("Wrote %d file(s) to %s\n", len(res.Files), outDir)
	fmt.Printf("%d record(s): %d arithmetic, %d tree, %d manual, %d placeholder\n",
		s.Requests, s.Arith, s.Tree, s.Manual, s.Placeholder)
	if len(res.Missing) > 0 {
		fmt.Printf("%d missing conversion(s), run `convgen missing` for details\n", len(res.Missing))
	}
	return nil
}

// watchAndBuild rebuilds on every change to the input path. Editors
// replace files instead of writing in place, so renames and creates
// count as changes too.
func watchAndBuild(inputPath, outDir, pkg string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	watchTarget := inputPath
	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		watchTarget = filepath.Dir(inputPath)
	}
	if err := watcher.Add(watchTarget); err != nil {
		return fmt.Errorf("watching %s: %w", watchTarget, err)
	}

	fmt.Printf("Watching %s for changes...\n", watchTarget)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			fmt.Printf("Change detected: %s\n", event.Name)
			if err := runBuild(inputPath, outDir, pkg); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %s\n", err)
		}
	}
}

func handleMissing(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input specified")
		os.Exit(1)
	}

	records, err := loadInput(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	res := compiler.Compile(records, compiler.Options{})
	if res.Diagnostics.HasErrors() {
		fmt.Fprint(os.Stderr, res.Diagnostics.Format())
		os.Exit(1)
	}
	fmt.Print(compiler.RenderMissingReport(res.Missing))
}

func handleExpr(args []string) {
	kind := tree.PrintConv
	var expr string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--kind":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --kind requires a value")
				os.Exit(1)
			}
			i++
			k, err := tree.ParseConvKind(args[i])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
				os.Exit(1)
			}
			kind = k
		default:
			if strings.HasPrefix(args[i], "--") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", args[i])
				os.Exit(1)
			}
			expr = args[i]
		}
	}

	if expr == "" {
		fmt.Fprintln(os.Stderr, "Error: no expression specified")
		os.Exit(1)
	}

	spec, err := compileOne(expr, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("tier: %s\n\n%s", spec.Tier, spec.Body)
}

func handleShell() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	kind := tree.PrintConv
	fmt.Println("convgen shell. Type an expression, :kind <kind> to switch, :quit to exit.")

	for {
		input, err := line.Prompt(fmt.Sprintf("%s> ", kind))
		if err != nil {
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case input == ":quit" || input == ":q":
			return
		case strings.HasPrefix(input, ":kind"):
			arg := strings.TrimSpace(strings.TrimPrefix(input, ":kind"))
			k, err := tree.ParseConvKind(arg)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			kind = k
		default:
			spec, err := compileOne(input, kind)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			fmt.Printf("tier: %s\n%s", spec.Tier, spec.Body)
		}
	}
}

// compileOne resolves a single expression outside any tag table.
func compileOne(expr string, kind tree.ConvKind) (*registry.FuncSpec, error) {
	resolver := registry.NewResolver(registry.DefaultManualRegistry(), missing.NewTracker())
	return resolver.Resolve(registry.Request{
		Module: "Shell",
		Table:  "Adhoc",
		Tag:    "Expr",
		Kind:   kind,
		Expr:   expr,
	})
}

func loadInput(path string) ([]compiler.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return compiler.LoadDir(path)
	}
	return compiler.LoadRecordsFile(path)
}
