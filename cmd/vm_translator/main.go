package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stonecutter-forge/n2t/pkg/asm"
	"github.com/stonecutter-forge/n2t/pkg/vm"

	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The VM Translator translates programs (composed of multiple modules/files) written in
the VM language into Hack assembly code that can be further elaborated. The VM language
is a higher-level (bytecode-like) language tailored for use with the Hack computer arch.
`, "\n", " ")

var VmTranslator = cli.New(Description).
	WithArg(cli.NewArg("input", "The bytecode (.vm) file or directory to be translated")).
	WithOption(cli.NewOption("output", "The compiled assembly output (.asm), defaults next to the input").
		WithType(cli.TypeString)).
	WithAction(Handler)

// vmFiles expands 'input' into the set of '.vm' translation units to translate (in
// directory order) plus whether the input was a directory - a directory translation
// gets the bootstrap prepended, a single file does not (spec §4.4/§6).
func vmFiles(input string) (files []string, isDir bool, err error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, false, err
	}

	if !info.IsDir() {
		return []string{input}, false, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, false, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".vm" {
			continue
		}
		files = append(files, filepath.Join(input, entry.Name()))
	}
	return files, true, nil
}

// defaultOutput derives the '.asm' path the spec implies when '--output' isn't given:
// a single file 'Foo.vm' translates to 'Foo.asm'; a directory 'Bar/' translates to
// 'Bar/Bar.asm', matching the nand2tetris convention of naming the program after its folder.
func defaultOutput(input string, isDir bool) string {
	if !isDir {
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".asm"
	}
	base := filepath.Base(filepath.Clean(input))
	return filepath.Join(input, base+".asm")
}

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	files, isDir, err := vmFiles(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Unable to enumerate input '%s': %s\n", args[0], err)
		return -1
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "ERROR: No '.vm' files found under '%s'\n", args[0])
		return -1
	}

	outputPath := options["output"]
	if outputPath == "" {
		outputPath = defaultOutput(args[0], isDir)
	}

	program := asm.Program{}

	if isDir {
		bootstrap, err := vm.Bootstrap()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Unable to generate bootstrap code: %s\n", err)
			return -1
		}
		program = append(program, bootstrap...)
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		parser := vm.NewParser(strings.NewReader(string(content)))
		module, err := parser.Parse()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Unable to complete 'parsing' pass on '%s': %s\n", file, err)
			return -1
		}

		lowerer := vm.NewLowerer(file)
		asmProgram, err := lowerer.Lower(module)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Unable to complete 'lowering' pass on '%s': %s\n", file, err)
			return -1
		}
		program = append(program, asmProgram...)
	}

	codegen := asm.NewCodeGenerator(program)
	compiled, err := codegen.Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	output, err := os.Create(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Unable to open output file: %s\n", err)
		return -1
	}
	defer output.Close()

	for _, line := range compiled {
		if _, err := fmt.Fprintf(output, "%s\n", line); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Unable to write output file: %s\n", err)
			return -1
		}
	}

	return 0
}

func main() { os.Exit(VmTranslator.Run(os.Args, os.Stdout)) }
