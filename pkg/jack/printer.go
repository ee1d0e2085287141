package jack

import (
	"fmt"
	"strings"
)

// ----------------------------------------------------------------------------
// Debug output (--tokens / --ast)

// This section implements the two optional debug dumps the CLI can ask for: a flat
// token listing and a parse trace. Neither is consulted by 'Parser.Parse' itself -
// they exist purely so a user can inspect what the scanner/parser saw, the way the
// reference compiler's own '--tokens'/'--ast' flags do. Grounded on the technique
// (not the code) of 'original_source/src/compiler/src/printer.rs': one XML leaf tag
// per token, escaping the handful of characters that collide with XML markup.

// xmlEscape replaces the symbols that would otherwise be misread as XML markup,
// matching the reference printer's exact substitution table.
func xmlEscape(s string) string {
	replacer := strings.NewReplacer("<", "&lt;", ">", "&gt;", "\"", "&quot;", "&", "&amp;")
	return replacer.Replace(s)
}

// tagFor returns the XML tag name the reference compiler uses for each TokenKind.
func tagFor(kind TokenKind) string {
	switch kind {
	case KeywordTok:
		return "keyword"
	case SymbolTok:
		return "symbol"
	case IntTok:
		return "integerConstant"
	case StringTok:
		return "stringConstant"
	case IdentifierTok:
		return "identifier"
	default:
		return string(kind)
	}
}

// DumpTokensXML scans 'source' independently of any 'Parser' and renders every
// token it finds as a flat "<tokens>...</tokens>" document, one leaf tag per
// token - this is what '--tokens' writes to the '.tok' file.
func DumpTokensXML(source string) (string, error) {
	scanner := NewScanner(source)
	var b strings.Builder
	b.WriteString("<tokens>\n")

	for {
		tok, err := scanner.Next()
		if err != nil {
			return "", err
		}
		if tok.Kind == EOFTok {
			break
		}
		fmt.Fprintf(&b, "<%s> %s </%s>\n", tagFor(tok.Kind), xmlEscape(tok.Text), tagFor(tok.Kind))
	}

	b.WriteString("</tokens>\n")
	return b.String(), nil
}

// trace accumulates a nested XML rendering of the productions a 'Parser' recognizes,
// one open/close tag pair per grammar construct entered and one leaf tag per token
// consumed while a construct is open. It is not a real AST (no semantic payload is
// attached to a node beyond the token text) - just a readable record of what the
// parser walked through, for the same informal debugging purpose the reference
// compiler's '--ast' flag serves.
type trace struct {
	b     strings.Builder
	depth int
}

func newTrace() *trace { return &trace{} }

func (t *trace) indent() string { return strings.Repeat("  ", t.depth) }

func (t *trace) enter(tag string) {
	fmt.Fprintf(&t.b, "%s<%s>\n", t.indent(), tag)
	t.depth++
}

func (t *trace) leave(tag string) {
	t.depth--
	fmt.Fprintf(&t.b, "%s</%s>\n", t.indent(), tag)
}

func (t *trace) leaf(tok Token) {
	tag := tagFor(tok.Kind)
	fmt.Fprintf(&t.b, "%s<%s> %s </%s>\n", t.indent(), tag, xmlEscape(tok.Text), tag)
}

func (t *trace) String() string { return t.b.String() }

// EnableTrace turns on parse-trace recording; subsequent calls to 'Parse' record
// every production entered/left and every token consumed. Call 'TraceXML' after
// 'Parse' returns to retrieve the recorded document - this is what '--ast' writes
// to the '.ast' file.
func (p *Parser) EnableTrace() { p.trace = newTrace() }

// TraceXML returns the parse trace recorded so far, or the empty string if
// 'EnableTrace' was never called.
func (p *Parser) TraceXML() string {
	if p.trace == nil {
		return ""
	}
	return p.trace.String()
}

func (p *Parser) enter(tag string) {
	if p.trace != nil {
		p.trace.enter(tag)
	}
}

func (p *Parser) leave(tag string) {
	if p.trace != nil {
		p.trace.leave(tag)
	}
}
