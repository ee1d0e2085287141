package main

import (
	"os"
	"path/filepath"
	"testing"
)

// Add.asm: adds the constant 3 to RAM[2] and stores the sum into R0.
const addAsm = `
@2
D=M
@3
D=D+A
@0
M=D
`

const addHack = "0000000000000010\n" +
	"1111110000010000\n" +
	"0000000000000011\n" +
	"1110000010010000\n" +
	"0000000000000000\n" +
	"1110001100001000\n"

// Max.asm: forward/backward label references and built-in registers, exercising bindLabels
// and the symbol-resolution pass of asm.Lowerer.Lower.
const maxAsm = `
@R0
D=M
@R1
D=D-M
@OUTPUT_FIRST
D;JGT
@R1
D=M
@OUTPUT_D
0;JMP
(OUTPUT_FIRST)
@R0
D=M
(OUTPUT_D)
@R2
M=D
(END)
@END
0;JMP
`

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}

func TestHackAssembler(t *testing.T) {
	t.Run("Add.asm", func(t *testing.T) {
		dir := t.TempDir()
		input := writeTemp(t, dir, "Add.asm", addAsm)
		output := filepath.Join(dir, "Add.hack")

		status := Handler(nil, map[string]string{"input": input, "output": output})
		if status != 0 {
			t.Fatalf("unexpected exit status: expected 0 got %d", status)
		}

		got, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("reading output file: %v", err)
		}
		if string(got) != addHack {
			t.Fatalf("output mismatch:\ngot:\n%s\nwant:\n%s", got, addHack)
		}
	})

	t.Run("Max.asm labels resolve", func(t *testing.T) {
		dir := t.TempDir()
		input := writeTemp(t, dir, "Max.asm", maxAsm)
		output := filepath.Join(dir, "Max.hack")

		status := Handler(nil, map[string]string{"input": input, "output": output})
		if status != 0 {
			t.Fatalf("unexpected exit status: expected 0 got %d", status)
		}

		got, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("reading output file: %v", err)
		}
		lines := 0
		for _, b := range got {
			if b == '\n' {
				lines++
			}
		}
		if lines != 16 {
			t.Fatalf("expected 16 instructions, got %d lines", lines)
		}
	})

	t.Run("missing --input", func(t *testing.T) {
		status := Handler(nil, map[string]string{})
		if status == 0 {
			t.Fatal("expected non-zero exit status for missing --input")
		}
	})

	t.Run("defaults --output to output.hack", func(t *testing.T) {
		dir := t.TempDir()
		input := writeTemp(t, dir, "Add.asm", addAsm)

		wd, err := os.Getwd()
		if err != nil {
			t.Fatalf("getwd: %v", err)
		}
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir: %v", err)
		}
		defer os.Chdir(wd)

		status := Handler(nil, map[string]string{"input": input})
		if status != 0 {
			t.Fatalf("unexpected exit status: expected 0 got %d", status)
		}
		if _, err := os.Stat(filepath.Join(dir, "output.hack")); err != nil {
			t.Fatalf("expected default output.hack to exist: %v", err)
		}
	})
}
