package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stonecutter-forge/n2t/pkg/jack"

	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The Jack Compiler compiles programs (composed of multiple classes/files) written in
the Jack language into VM modules that can be further elaborated. The Jack language
is a higher-level OOP language tailored for use with the Hack computer architecture.
`, "\n", " ")

var JackCompiler = cli.New(Description).
	WithArg(cli.NewArg("input", "The source (.jack) file or directory to be compiled")).
	WithOption(cli.NewOption("tokens", "Emits a per-file '.tok' XML dump of the token stream").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("ast", "Emits a per-file '.ast' XML dump of the parse trace").
		WithType(cli.TypeBool)).
	WithAction(Handler)

// jackFiles expands 'input' into the set of '.jack' translation units to compile: itself
// if it names a file, or every non-recursive '.jack' sibling if it names a directory.
func jackFiles(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jack" {
			continue
		}
		files = append(files, filepath.Join(input, entry.Name()))
	}
	return files, nil
}

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	files, err := jackFiles(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Unable to enumerate input '%s': %s\n", args[0], err)
		return -1
	}

	_, emitTokens := options["tokens"]
	_, emitAst := options["ast"]

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		stem := strings.TrimSuffix(file, filepath.Ext(file))

		if emitTokens {
			dump, err := jack.DumpTokensXML(string(content))
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: Unable to complete 'tokenize' pass: %s\n", err)
				return -1
			}
			if err := os.WriteFile(stem+".tok", []byte(dump), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: Unable to write '.tok' file: %s\n", err)
				return -1
			}
		}

		parser := jack.NewParser(string(content))
		if emitAst {
			parser.EnableTrace()
		}

		vmLines, err := parser.Parse()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Unable to complete 'parsing' pass on '%s': %s\n", file, err)
			return -1
		}

		if emitAst {
			if err := os.WriteFile(stem+".ast", []byte(parser.TraceXML()), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: Unable to write '.ast' file: %s\n", err)
				return -1
			}
		}

		output, err := os.Create(stem + ".vm")
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Unable to open output file: %s\n", err)
			return -1
		}

		for _, line := range vmLines {
			if _, err := fmt.Fprintf(output, "%s\n", line); err != nil {
				output.Close()
				fmt.Fprintf(os.Stderr, "ERROR: Unable to write output file: %s\n", err)
				return -1
			}
		}
		output.Close()
	}

	return 0
}

func main() { os.Exit(JackCompiler.Run(os.Args, os.Stdout)) }
