package jack_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stonecutter-forge/n2t/pkg/jack"
)

func compile(t *testing.T, source string) []string {
	t.Helper()
	lines, err := jack.NewParser(source).Parse()
	require.NoError(t, err)
	return lines
}

// "1 + 2 * 3" must compile as "(1+2)*3": the Jack grammar is strictly left-associative
// with no operator precedence, spec's own worked "not a bug" callout.
func TestExpressionIsLeftAssociativeWithoutPrecedence(t *testing.T) {
	lines := compile(t, `
		class Main {
			function void main() {
				do Output.printInt(1 + 2 * 3);
				return;
			}
		}
	`)

	want := []string{
		"function Main.main 0",
		"push constant 1",
		"push constant 2",
		"add",
		"push constant 3",
		"call Math.multiply 2",
		"call Output.printInt 1",
		"pop temp 0",
		"push constant 0",
		"return",
	}
	require.Equal(t, want, lines)
}

// An indexed write must compute and stash the target address before evaluating the RHS,
// so that the RHS is free to reference 'that' (or the same array) without clobbering it.
func TestIndexedLetUsesTwoStepWrite(t *testing.T) {
	lines := compile(t, `
		class Main {
			function void main() {
				var Array arr;
				let arr[1] = 2;
				return;
			}
		}
	`)

	want := []string{
		"function Main.main 1",
		"push constant 1",
		"push local 0",
		"add",
		"push constant 2",
		"pop temp 0",
		"pop pointer 1",
		"push temp 0",
		"pop that 0",
		"push constant 0",
		"return",
	}
	require.Equal(t, want, lines)
}

// Reading an indexed element dereferences through 'that' after repositioning it via 'pointer 1'.
func TestIndexedReadDereferencesThroughThat(t *testing.T) {
	lines := compile(t, `
		class Main {
			function void main() {
				var Array arr;
				var int x;
				let x = arr[1];
				return;
			}
		}
	`)

	want := []string{
		"function Main.main 2",
		"push constant 1",
		"push local 0",
		"add",
		"pop pointer 1",
		"push that 0",
		"pop local 1",
		"push constant 0",
		"return",
	}
	require.Equal(t, want, lines)
}

// if/else compiles into IF_FALSE_n / IF_END_n labels, negating the condition and jumping
// over the 'then' branch.
func TestIfElseBranching(t *testing.T) {
	lines := compile(t, `
		class Main {
			function void main() {
				if (true) {
					do Output.println();
				} else {
					do Output.println();
				}
				return;
			}
		}
	`)

	want := []string{
		"function Main.main 0",
		"push constant 0",
		"not",
		"not",
		"if-goto IF_FALSE_1",
		"call Output.println 0",
		"pop temp 0",
		"goto IF_END_2",
		"label IF_FALSE_1",
		"call Output.println 0",
		"pop temp 0",
		"label IF_END_2",
		"push constant 0",
		"return",
	}
	require.Equal(t, want, lines)
}

// A string literal compiles via String.new/appendChar, one call per byte, no escape processing.
func TestStringLiteralUsesStringNewAndAppendChar(t *testing.T) {
	lines := compile(t, `
		class Main {
			function void main() {
				do Output.printString("hi");
				return;
			}
		}
	`)

	want := []string{
		"function Main.main 0",
		"push constant 2",
		"call String.new 1",
		"push constant 104",
		"call String.appendChar 2",
		"push constant 105",
		"call String.appendChar 2",
		"call Output.printString 1",
		"pop temp 0",
		"push constant 0",
		"return",
	}
	require.Equal(t, want, lines)
}

// While loops compile into WHILE_START_n / WHILE_END_n labels with the negated condition
// test at the top, matching the canonical lowering.
func TestWhileLoop(t *testing.T) {
	lines := compile(t, `
		class Main {
			function void main() {
				var int i;
				let i = 0;
				while (i < 10) {
					let i = i + 1;
				}
				return;
			}
		}
	`)

	want := []string{
		"function Main.main 1",
		"push constant 0",
		"pop local 0",
		"label WHILE_START_1",
		"push local 0",
		"push constant 10",
		"lt",
		"not",
		"if-goto WHILE_END_2",
		"push local 0",
		"push constant 1",
		"add",
		"pop local 0",
		"goto WHILE_START_1",
		"label WHILE_END_2",
		"push constant 0",
		"return",
	}
	require.Equal(t, want, lines)
}

// A constructor allocates a block sized to its field count and binds 'this' to it.
func TestConstructorAllocatesAndBindsThis(t *testing.T) {
	lines := compile(t, `
		class Point {
			field int x, y;

			constructor Point new(int ax, int ay) {
				let x = ax;
				let y = ay;
				return this;
			}
		}
	`)

	want := []string{
		"function Point.new 0",
		"push constant 2",
		"call Memory.alloc 1",
		"pop pointer 0",
		"push argument 0",
		"pop this 0",
		"push argument 1",
		"pop this 1",
		"push pointer 0",
		"return",
	}
	require.Equal(t, want, lines)
}

// A method call on a variable pushes the receiver and dispatches with one extra argument.
func TestMethodCallOnVariablePushesReceiver(t *testing.T) {
	lines := compile(t, `
		class Main {
			function void main() {
				var Point p;
				do p.dispose();
				return;
			}
		}
	`)

	want := []string{
		"function Main.main 1",
		"push local 0",
		"call Point.dispose 1",
		"pop temp 0",
		"push constant 0",
		"return",
	}
	require.Equal(t, want, lines)
}

// Trailing content after the class's closing brace is a syntax error, not silently ignored.
func TestParseRejectsTrailingTokens(t *testing.T) {
	source := `
		class Main {
			function void main() {
				return;
			}
		}
		garbage
	`
	_, err := jack.NewParser(source).Parse()
	require.Error(t, err)
}

func TestParseTraceXMLDump(t *testing.T) {
	p := jack.NewParser(`class Main { function void main() { return; } }`)
	p.EnableTrace()
	_, err := p.Parse()
	require.NoError(t, err)

	trace := p.TraceXML()
	require.True(t, strings.Contains(trace, "<class>"))
	require.True(t, strings.Contains(trace, "<subroutineDec>"))
	require.True(t, strings.Contains(trace, "<returnStatement>"))
}
