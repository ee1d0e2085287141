package jack

import (
	"fmt"

	"github.com/stonecutter-forge/n2t/pkg/vm"
)

// ----------------------------------------------------------------------------
// Jack Parser / Emitter

// This section implements the single-pass recursive-descent parser for the Jack language.
//
// Unlike the VM and Assembler front-ends, the Jack parser never materializes a 'Class' or
// 'Statement' tree: each grammar production, as soon as it's recognized, emits its VM lines
// directly into the accumulator. This mirrors the teacher's DFS-style 'HandleX' dispatch (one
// method per construct) but collapses "parse to a tree" and "lower the tree to VM" into a
// single traversal, since nothing downstream ever needs to look at another class's members.

// Parser drives a 'Scanner' one class at a time and emits VM text as it recognizes constructs.
type Parser struct {
	scanner *Scanner
	scopes  ScopeTable
	codegen vm.CodeGenerator // Renders one 'vm.Operation' at a time to VM text, never holds a Program

	class  string // Current class name, set once 'class' is parsed
	nLabel uint   // Monotonic per-class label counter (if/while)

	lines []string // VM code accumulator, one instruction/label per entry

	trace *trace // Non-nil once 'EnableTrace' is called, records the '--ast' dump
}

// Initializes and returns to the caller a brand new 'Parser' struct over 'source'.
func NewParser(source string) *Parser {
	return &Parser{scanner: NewScanner(source), scopes: ScopeTable{}, codegen: vm.NewCodeGenerator(nil)}
}

func (p *Parser) emit(line string) { p.lines = append(p.lines, line) }
func (p *Parser) newLabel() uint   { p.nLabel++; return p.nLabel }

// The following helpers build one 'vm.Operation' value, render it through the shared
// 'vm.CodeGenerator' and immediately discard the struct - the same "build one, emit,
// discard" discipline the parser already applies to raw VM text, so no intermediate
// tree is ever materialized (Open Question 1). This also means the bounds checks
// 'vm.CodeGenerator' performs (e.g. 'pointer' offset <= 1, 'temp' offset <= 7) run on
// every emitted memory access here, same as they would for the VM translator's own input.

func (p *Parser) emitPush(seg vm.SegmentType, offset uint16) error {
	line, err := p.codegen.GenerateMemoryOp(vm.MemoryOp{Operation: vm.Push, Segment: seg, Offset: offset})
	if err != nil {
		return err
	}
	p.emit(line)
	return nil
}

func (p *Parser) emitPop(seg vm.SegmentType, offset uint16) error {
	line, err := p.codegen.GenerateMemoryOp(vm.MemoryOp{Operation: vm.Pop, Segment: seg, Offset: offset})
	if err != nil {
		return err
	}
	p.emit(line)
	return nil
}

func (p *Parser) emitArith(op vm.ArithOpType) error {
	line, err := p.codegen.GenerateArithmeticOp(vm.ArithmeticOp{Operation: op})
	if err != nil {
		return err
	}
	p.emit(line)
	return nil
}

func (p *Parser) emitLabel(name string) error {
	line, err := p.codegen.GenerateLabelDecl(vm.LabelDecl{Name: name})
	if err != nil {
		return err
	}
	p.emit(line)
	return nil
}

func (p *Parser) emitGoto(jump vm.JumpType, label string) error {
	line, err := p.codegen.GenerateGotoOp(vm.GotoOp{Jump: jump, Label: label})
	if err != nil {
		return err
	}
	p.emit(line)
	return nil
}

func (p *Parser) emitCall(name string, nArgs uint8) error {
	line, err := p.codegen.GenerateFuncCallOp(vm.FuncCallOp{Name: name, NArgs: nArgs})
	if err != nil {
		return err
	}
	p.emit(line)
	return nil
}

func (p *Parser) emitReturn() error {
	line, err := p.codegen.GenerateReturnOp(vm.ReturnOp{})
	if err != nil {
		return err
	}
	p.emit(line)
	return nil
}

// Parse drives the whole 'class' production and returns the VM text produced,
// one instruction or label pseudo-instruction per line.
func (p *Parser) Parse() ([]string, error) {
	if err := p.parseClass(); err != nil {
		return nil, err
	}

	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != EOFTok {
		return nil, fmt.Errorf("expected end of file at %d:%d, got '%s'", tok.Line, tok.Col, tok.Text)
	}

	return p.lines, nil
}

func (p *Parser) next() (Token, error) {
	tok, err := p.scanner.Next()
	if err == nil && p.trace != nil && tok.Kind != EOFTok {
		p.trace.leaf(tok)
	}
	return tok, err
}
func (p *Parser) peek() (Token, error) { return p.scanner.Peek() }

// expectKeyword consumes the next token, failing unless it's the Keyword 'kw'.
func (p *Parser) expectKeyword(kw string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.Kind != KeywordTok || tok.Text != kw {
		return fmt.Errorf("expected keyword '%s' at %d:%d, got '%s'", kw, tok.Line, tok.Col, tok.Text)
	}
	return nil
}

// expectSymbol consumes the next token, failing unless it's the Symbol 'sym'.
func (p *Parser) expectSymbol(sym string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.Kind != SymbolTok || tok.Text != sym {
		return fmt.Errorf("expected symbol '%s' at %d:%d, got '%s'", sym, tok.Line, tok.Col, tok.Text)
	}
	return nil
}

// expectIdent consumes the next token, failing unless it's an Identifier, and returns its text.
func (p *Parser) expectIdent() (string, error) {
	tok, err := p.next()
	if err != nil {
		return "", err
	}
	if tok.Kind != IdentifierTok {
		return "", fmt.Errorf("expected identifier at %d:%d, got '%s'", tok.Line, tok.Col, tok.Text)
	}
	return tok.Text, nil
}

// peekIsSymbol reports (without consuming) whether the next token is the Symbol 'sym'.
func (p *Parser) peekIsSymbol(sym string) bool {
	tok, err := p.peek()
	return err == nil && tok.Kind == SymbolTok && tok.Text == sym
}

// peekIsKeyword reports (without consuming) whether the next token is one of 'kws'.
func (p *Parser) peekIsKeyword(kws ...string) bool {
	tok, err := p.peek()
	if err != nil || tok.Kind != KeywordTok {
		return false
	}
	for _, kw := range kws {
		if tok.Text == kw {
			return true
		}
	}
	return false
}

// dataType parses a primitive or class-named type (both return types and var declarations).
func (p *Parser) dataType() (DataType, string, error) {
	tok, err := p.next()
	if err != nil {
		return "", "", err
	}
	switch {
	case tok.Kind == KeywordTok && tok.Text == "int":
		return Int, "", nil
	case tok.Kind == KeywordTok && tok.Text == "char":
		return Char, "", nil
	case tok.Kind == KeywordTok && tok.Text == "boolean":
		return Bool, "", nil
	case tok.Kind == KeywordTok && tok.Text == "void":
		return Void, "", nil
	case tok.Kind == IdentifierTok:
		return Object, tok.Text, nil
	default:
		return "", "", fmt.Errorf("expected a type at %d:%d, got '%s'", tok.Line, tok.Col, tok.Text)
	}
}

// ----------------------------------------------------------------------------
// Class / class-var / subroutine productions

func (p *Parser) parseClass() error {
	p.enter("class")
	defer p.leave("class")

	if err := p.expectKeyword("class"); err != nil {
		return err
	}
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	p.class = name
	p.scopes.PushClassScope(name)
	defer p.scopes.PopClassScope()

	if err := p.expectSymbol("{"); err != nil {
		return err
	}

	for p.peekIsKeyword("static", "field") {
		if err := p.parseClassVarDec(); err != nil {
			return err
		}
	}

	for p.peekIsKeyword("constructor", "function", "method") {
		if err := p.parseSubroutine(); err != nil {
			return err
		}
	}

	return p.expectSymbol("}")
}

func (p *Parser) parseClassVarDec() error {
	p.enter("classVarDec")
	defer p.leave("classVarDec")

	kindTok, err := p.next()
	if err != nil {
		return err
	}
	varType := Static
	if kindTok.Text == "field" {
		varType = Field
	}

	dType, className, err := p.dataType()
	if err != nil {
		return err
	}

	for {
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		p.scopes.RegisterVariable(Variable{Name: name, VarType: varType, DataType: dType, ClassName: className})

		if p.peekIsSymbol(",") {
			p.next()
			continue
		}
		break
	}

	return p.expectSymbol(";")
}

func (p *Parser) parseSubroutine() error {
	p.enter("subroutineDec")
	defer p.leave("subroutineDec")

	kindTok, err := p.next()
	if err != nil {
		return err
	}
	var kind SubroutineType
	switch kindTok.Text {
	case "constructor":
		kind = Constructor
	case "method":
		kind = Method
	case "function":
		kind = Function
	}

	if _, _, err := p.dataType(); err != nil { // Return type, not needed for codegen
		return err
	}

	subName, err := p.expectIdent()
	if err != nil {
		return err
	}

	p.scopes.PushSubRoutineScope(subName)
	defer p.scopes.PopSubroutineScope()

	if kind == Method {
		p.scopes.RegisterVariable(Variable{Name: "this", VarType: Parameter, DataType: Object, ClassName: p.class})
	}

	if err := p.expectSymbol("("); err != nil {
		return err
	}
	if err := p.parseParameterList(); err != nil {
		return err
	}
	if err := p.expectSymbol(")"); err != nil {
		return err
	}

	if err := p.expectSymbol("{"); err != nil {
		return err
	}

	for p.peekIsKeyword("var") {
		if err := p.parseVarDec(); err != nil {
			return err
		}
	}

	// Defer emission of 'function Class.sub k' until the local count is known, then splice
	// the body (and its prelude) in after it - matches the grammar's "header then body" shape.
	headerIdx := len(p.lines)
	p.emit("") // placeholder for the function declaration line

	if kind == Constructor {
		nFields := uint16(p.scopes.field.entries.Count())
		if err := p.emitPush(vm.Constant, nFields); err != nil {
			return err
		}
		if err := p.emitCall("Memory.alloc", 1); err != nil {
			return err
		}
		if err := p.emitPop(vm.Pointer, 0); err != nil {
			return err
		}
	}
	if kind == Method {
		if err := p.emitPush(vm.Argument, 0); err != nil {
			return err
		}
		if err := p.emitPop(vm.Pointer, 0); err != nil {
			return err
		}
	}

	for !p.peekIsSymbol("}") {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return err
	}

	nLocal := p.scopes.local.entries.Count()
	header, err := p.codegen.GenerateFuncDecl(vm.FuncDecl{
		Name: fmt.Sprintf("%s.%s", p.class, subName), NLocal: uint8(nLocal),
	})
	if err != nil {
		return err
	}
	p.lines[headerIdx] = header

	return nil
}

func (p *Parser) parseParameterList() error {
	p.enter("parameterList")
	defer p.leave("parameterList")

	if p.peekIsSymbol(")") {
		return nil
	}
	for {
		dType, className, err := p.dataType()
		if err != nil {
			return err
		}
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		p.scopes.RegisterVariable(Variable{Name: name, VarType: Parameter, DataType: dType, ClassName: className})

		if p.peekIsSymbol(",") {
			p.next()
			continue
		}
		return nil
	}
}

func (p *Parser) parseVarDec() error {
	p.enter("varDec")
	defer p.leave("varDec")

	if err := p.expectKeyword("var"); err != nil {
		return err
	}
	dType, className, err := p.dataType()
	if err != nil {
		return err
	}
	for {
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		p.scopes.RegisterVariable(Variable{Name: name, VarType: Local, DataType: dType, ClassName: className})

		if p.peekIsSymbol(",") {
			p.next()
			continue
		}
		break
	}
	return p.expectSymbol(";")
}

// ----------------------------------------------------------------------------
// Statements

func (p *Parser) parseStatement() error {
	switch {
	case p.peekIsKeyword("let"):
		return p.parseLetStmt()
	case p.peekIsKeyword("if"):
		return p.parseIfStmt()
	case p.peekIsKeyword("while"):
		return p.parseWhileStmt()
	case p.peekIsKeyword("do"):
		return p.parseDoStmt()
	case p.peekIsKeyword("return"):
		return p.parseReturnStmt()
	default:
		tok, _ := p.peek()
		return fmt.Errorf("expected a statement at %d:%d, got '%s'", tok.Line, tok.Col, tok.Text)
	}
}

func (p *Parser) segmentOf(v Variable) vm.SegmentType {
	switch v.VarType {
	case Local:
		return vm.Local
	case Parameter:
		return vm.Argument
	case Field:
		return vm.This
	case Static:
		return vm.Static
	default:
		return ""
	}
}

func (p *Parser) parseLetStmt() error {
	p.enter("letStatement")
	defer p.leave("letStatement")

	if err := p.expectKeyword("let"); err != nil {
		return err
	}
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	offset, variable, err := p.scopes.ResolveVariable(name)
	if err != nil {
		return fmt.Errorf("error resolving variable '%s': %w", name, err)
	}
	seg := p.segmentOf(variable)

	if p.peekIsSymbol("[") { // Indexed assignment: let name[expr] = expr
		p.next()
		if err := p.parseExpression(); err != nil {
			return err
		}
		if err := p.expectSymbol("]"); err != nil {
			return err
		}
		if err := p.emitPush(seg, offset); err != nil {
			return err
		}
		if err := p.emitArith(vm.Add); err != nil {
			return err
		}

		if err := p.expectSymbol("="); err != nil {
			return err
		}
		if err := p.parseExpression(); err != nil {
			return err
		}
		if err := p.expectSymbol(";"); err != nil {
			return err
		}

		// Two-step write so the computed address survives even if the RHS used 'that' itself.
		if err := p.emitPop(vm.Temp, 0); err != nil {
			return err
		}
		if err := p.emitPop(vm.Pointer, 1); err != nil {
			return err
		}
		if err := p.emitPush(vm.Temp, 0); err != nil {
			return err
		}
		return p.emitPop(vm.That, 0)
	}

	if err := p.expectSymbol("="); err != nil {
		return err
	}
	if err := p.parseExpression(); err != nil {
		return err
	}
	if err := p.expectSymbol(";"); err != nil {
		return err
	}
	return p.emitPop(seg, offset)
}

func (p *Parser) parseIfStmt() error {
	p.enter("ifStatement")
	defer p.leave("ifStatement")

	if err := p.expectKeyword("if"); err != nil {
		return err
	}
	l1, l2 := p.newLabel(), p.newLabel()
	l1Name, l2Name := fmt.Sprintf("IF_FALSE_%d", l1), fmt.Sprintf("IF_END_%d", l2)

	if err := p.expectSymbol("("); err != nil {
		return err
	}
	if err := p.parseExpression(); err != nil {
		return err
	}
	if err := p.expectSymbol(")"); err != nil {
		return err
	}

	if err := p.emitArith(vm.Not); err != nil {
		return err
	}
	if err := p.emitGoto(vm.Conditional, l1Name); err != nil {
		return err
	}

	if err := p.expectSymbol("{"); err != nil {
		return err
	}
	for !p.peekIsSymbol("}") {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return err
	}

	if err := p.emitGoto(vm.Unconditional, l2Name); err != nil {
		return err
	}
	if err := p.emitLabel(l1Name); err != nil {
		return err
	}

	if p.peekIsKeyword("else") {
		p.next()
		if err := p.expectSymbol("{"); err != nil {
			return err
		}
		for !p.peekIsSymbol("}") {
			if err := p.parseStatement(); err != nil {
				return err
			}
		}
		if err := p.expectSymbol("}"); err != nil {
			return err
		}
	}

	return p.emitLabel(l2Name)
}

func (p *Parser) parseWhileStmt() error {
	p.enter("whileStatement")
	defer p.leave("whileStatement")

	if err := p.expectKeyword("while"); err != nil {
		return err
	}
	l1, l2 := p.newLabel(), p.newLabel()
	l1Name, l2Name := fmt.Sprintf("WHILE_START_%d", l1), fmt.Sprintf("WHILE_END_%d", l2)

	if err := p.emitLabel(l1Name); err != nil {
		return err
	}

	if err := p.expectSymbol("("); err != nil {
		return err
	}
	if err := p.parseExpression(); err != nil {
		return err
	}
	if err := p.expectSymbol(")"); err != nil {
		return err
	}

	if err := p.emitArith(vm.Not); err != nil {
		return err
	}
	if err := p.emitGoto(vm.Conditional, l2Name); err != nil {
		return err
	}

	if err := p.expectSymbol("{"); err != nil {
		return err
	}
	for !p.peekIsSymbol("}") {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return err
	}

	if err := p.emitGoto(vm.Unconditional, l1Name); err != nil {
		return err
	}
	return p.emitLabel(l2Name)
}

func (p *Parser) parseDoStmt() error {
	p.enter("doStatement")
	defer p.leave("doStatement")

	if err := p.expectKeyword("do"); err != nil {
		return err
	}
	if err := p.parseCallExpression(); err != nil {
		return err
	}
	if err := p.expectSymbol(";"); err != nil {
		return err
	}
	return p.emitPop(vm.Temp, 0)
}

func (p *Parser) parseReturnStmt() error {
	p.enter("returnStatement")
	defer p.leave("returnStatement")

	if err := p.expectKeyword("return"); err != nil {
		return err
	}
	if p.peekIsSymbol(";") {
		p.next()
		if err := p.emitPush(vm.Constant, 0); err != nil {
			return err
		}
		return p.emitReturn()
	}
	if err := p.parseExpression(); err != nil {
		return err
	}
	if err := p.expectSymbol(";"); err != nil {
		return err
	}
	return p.emitReturn()
}

// ----------------------------------------------------------------------------
// Expressions

var binaryOpLowering = map[string]vm.ArithOpType{
	"+": vm.Add, "-": vm.Sub, "&": vm.And, "|": vm.Or, "<": vm.Lt, ">": vm.Gt, "=": vm.Eq,
}

// parseExpression implements 'term ((op term)*)': strictly left-associative, no precedence -
// each operator combines the running result with the next term, in source order.
func (p *Parser) parseExpression() error {
	p.enter("expression")
	defer p.leave("expression")

	if err := p.parseTerm(); err != nil {
		return err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok.Kind != SymbolTok {
			return nil
		}
		if _, isOp := binaryOpLowering[tok.Text]; !isOp && tok.Text != "*" && tok.Text != "/" {
			return nil
		}
		p.next()

		if err := p.parseTerm(); err != nil {
			return err
		}

		switch tok.Text {
		case "*":
			if err := p.emitCall("Math.multiply", 2); err != nil {
				return err
			}
		case "/":
			if err := p.emitCall("Math.divide", 2); err != nil {
				return err
			}
		default:
			if err := p.emitArith(binaryOpLowering[tok.Text]); err != nil {
				return err
			}
		}
	}
}

func (p *Parser) parseTerm() error {
	p.enter("term")
	defer p.leave("term")

	tok, err := p.peek()
	if err != nil {
		return err
	}

	switch {
	case tok.Kind == IntTok:
		p.next()
		return p.emitPush(vm.Constant, tok.Value)

	case tok.Kind == StringTok:
		p.next()
		if err := p.emitPush(vm.Constant, uint16(len(tok.Text))); err != nil {
			return err
		}
		if err := p.emitCall("String.new", 1); err != nil {
			return err
		}
		for i := 0; i < len(tok.Text); i++ {
			if err := p.emitPush(vm.Constant, uint16(tok.Text[i])); err != nil {
				return err
			}
			if err := p.emitCall("String.appendChar", 2); err != nil {
				return err
			}
		}
		return nil

	case tok.Kind == KeywordTok && tok.Text == "true":
		p.next()
		if err := p.emitPush(vm.Constant, 0); err != nil {
			return err
		}
		return p.emitArith(vm.Not)

	case tok.Kind == KeywordTok && (tok.Text == "false" || tok.Text == "null"):
		p.next()
		return p.emitPush(vm.Constant, 0)

	case tok.Kind == KeywordTok && tok.Text == "this":
		p.next()
		return p.emitPush(vm.Pointer, 0)

	case tok.Kind == SymbolTok && tok.Text == "-":
		p.next()
		if err := p.parseTerm(); err != nil {
			return err
		}
		return p.emitArith(vm.Neg)

	case tok.Kind == SymbolTok && tok.Text == "~":
		p.next()
		if err := p.parseTerm(); err != nil {
			return err
		}
		return p.emitArith(vm.Not)

	case tok.Kind == SymbolTok && tok.Text == "(":
		p.next()
		if err := p.parseExpression(); err != nil {
			return err
		}
		return p.expectSymbol(")")

	case tok.Kind == IdentifierTok:
		return p.parseIdentifierTerm()

	default:
		return fmt.Errorf("expected a term at %d:%d, got '%s'", tok.Line, tok.Col, tok.Text)
	}
}

// parseIdentifierTerm handles the three lookahead forms the grammar allows after an
// identifier: array indexing, a subroutine call, or a plain variable read.
func (p *Parser) parseIdentifierTerm() error {
	name, err := p.expectIdent()
	if err != nil {
		return err
	}

	if p.peekIsSymbol("[") {
		p.next()
		offset, variable, err := p.scopes.ResolveVariable(name)
		if err != nil {
			return fmt.Errorf("error resolving variable '%s': %w", name, err)
		}
		if err := p.parseExpression(); err != nil {
			return err
		}
		if err := p.expectSymbol("]"); err != nil {
			return err
		}
		if err := p.emitPush(p.segmentOf(variable), offset); err != nil {
			return err
		}
		if err := p.emitArith(vm.Add); err != nil {
			return err
		}
		if err := p.emitPop(vm.Pointer, 1); err != nil {
			return err
		}
		return p.emitPush(vm.That, 0)
	}

	if p.peekIsSymbol("(") || p.peekIsSymbol(".") {
		return p.parseCallExpressionFrom(name)
	}

	offset, variable, err := p.scopes.ResolveVariable(name)
	if err != nil {
		return fmt.Errorf("error resolving variable '%s': %w", name, err)
	}
	return p.emitPush(p.segmentOf(variable), offset)
}

// parseCallExpression parses a subroutine call starting fresh (used by 'do').
func (p *Parser) parseCallExpression() error {
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	return p.parseCallExpressionFrom(name)
}

// parseCallExpressionFrom resolves and lowers a subroutine call whose leading identifier
// ('name') has already been consumed. Two forms:
//   - 'name(args)'            -> method on the current object, call <class>.name n+1
//   - 'qualifier.name(args)'  -> if 'qualifier' resolves to a variable in scope it's a method
//     call on that object (push it, call <varClass>.name n+1); otherwise 'qualifier' is taken
//     to be a class name and this is a function/constructor call, call qualifier.name n.
func (p *Parser) parseCallExpressionFrom(name string) error {
	var fnClass, fnName string
	extraArg := uint8(0)

	if p.peekIsSymbol(".") {
		p.next()
		member, err := p.expectIdent()
		if err != nil {
			return err
		}

		if offset, variable, err := p.scopes.ResolveVariable(name); err == nil {
			fnClass, fnName = variable.ClassName, member
			if err := p.emitPush(p.segmentOf(variable), offset); err != nil {
				return err
			}
			extraArg = 1
		} else {
			fnClass, fnName = name, member
		}
	} else {
		fnClass, fnName = p.class, name
		if err := p.emitPush(vm.Pointer, 0); err != nil {
			return err
		}
		extraArg = 1
	}

	if err := p.expectSymbol("("); err != nil {
		return err
	}
	nArgs, err := p.parseExpressionList()
	if err != nil {
		return err
	}
	if err := p.expectSymbol(")"); err != nil {
		return err
	}

	return p.emitCall(fmt.Sprintf("%s.%s", fnClass, fnName), nArgs+extraArg)
}

func (p *Parser) parseExpressionList() (uint8, error) {
	p.enter("expressionList")
	defer p.leave("expressionList")

	if p.peekIsSymbol(")") {
		return 0, nil
	}
	count := uint8(0)
	for {
		if err := p.parseExpression(); err != nil {
			return 0, err
		}
		count++
		if p.peekIsSymbol(",") {
			p.next()
			continue
		}
		return count, nil
	}
}
