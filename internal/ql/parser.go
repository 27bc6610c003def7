package ql

import "fmt"

// ParseError reports a syntax error at a byte offset.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// Parser is a recursive-descent parser over a token stream produced by
// a Lexer. It buffers a single token of lookahead.
type Parser struct {
	lex  *Lexer
	tok  Token
	errs []error
}

// NewParser constructs a Parser over src and primes its first token.
func NewParser(src []byte) *Parser {
	p := &Parser{lex: NewLexer(src)}
	p.advance()
	return p
}

func (p *Parser) advance() { p.tok = p.lex.Scan() }

func (p *Parser) errorf(format string, args ...any) {
	p.errs = append(p.errs, &ParseError{Offset: p.tok.Offset, Message: fmt.Sprintf(format, args...)})
}

// Errors returns every parse error (and any underlying lexical error)
// accumulated during Parse.
func (p *Parser) Errors() []error {
	all := make([]error, 0, len(p.errs)+len(p.lex.Errors()))
	for _, e := range p.lex.Errors() {
		all = append(all, fmt.Errorf("%s", e))
	}
	all = append(all, p.errs...)
	return all
}

func (p *Parser) expect(k Kind) Token {
	tok := p.tok
	if tok.Kind != k {
		p.errorf("expected %s, found %s %q", k, tok.Kind, tok.Lit)
	}
	p.advance()
	return tok
}

func (p *Parser) at(k Kind) bool { return p.tok.Kind == k }

// Parse parses a full file: zero or more definitions followed by an
// optional entry pattern expression, and returns the Program node.
func (p *Parser) Parse() *Node {
	prog := &Node{Kind: Program}
	for !p.at(EOF) {
		switch p.tok.Kind {
		case KW_PATTERN:
			prog.Children = append(prog.Children, p.parsePatternDefinition())
		case KW_PREDICATE:
			prog.Children = append(prog.Children, p.parsePredicateDefinition())
		case KW_FUNCTION:
			prog.Children = append(prog.Children, p.parseFunctionOrForeignDefinition())
		default:
			// Whatever remains is the entry pattern expression; there is
			// at most one per file and it always comes last.
			prog.setField("entry", p.parsePattern())
			if !p.at(EOF) {
				p.errorf("unexpected trailing token %s after entry pattern", p.tok.Kind)
			}
			return prog
		}
	}
	return prog
}

func (p *Parser) parseParameterList() *Node {
	list := &Node{Kind: ParameterList}
	p.expect(LPAREN)
	for !p.at(RPAREN) && !p.at(EOF) {
		name := p.expect(VARIABLE)
		list.Children = append(list.Children, &Node{Kind: Variable, Name: name.Lit, StartByte: name.Offset})
		if p.at(COMMA) {
			p.advance()
		}
	}
	p.expect(RPAREN)
	return list
}

func (p *Parser) parsePatternDefinition() *Node {
	start := p.tok.Offset
	p.advance() // 'pattern'
	name := p.expect(IDENT)
	n := &Node{Kind: PatternDefinition, Name: name.Lit, StartByte: start}
	n.setField("params", p.parseParameterList())
	p.expect(LBRACE)
	n.setField("body", p.parsePattern())
	p.expect(RBRACE)
	return n
}

func (p *Parser) parsePredicateDefinition() *Node {
	start := p.tok.Offset
	p.advance() // 'predicate'
	name := p.expect(IDENT)
	n := &Node{Kind: PredicateDefinition, Name: name.Lit, StartByte: start}
	n.setField("params", p.parseParameterList())
	p.expect(LBRACE)
	n.setField("body", p.parsePredicateBlock())
	p.expect(RBRACE)
	return n
}

// parsePredicateBlock parses the sequence of predicate statements making
// up a predicate/function body; a single statement is returned as-is,
// several are wrapped in an And so the block succeeds only if every
// statement does (matching the language's short-circuiting semantics).
func (p *Parser) parsePredicateBlock() *Node {
	first := p.parsePredicate()
	if !p.at(COMMA) && !p.at(KW_RETURN) {
		return first
	}
	stmts := []*Node{first}
	for p.at(COMMA) {
		p.advance()
		stmts = append(stmts, p.parsePredicate())
	}
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &Node{Kind: And, StartByte: first.StartByte, Children: stmts}
}

func (p *Parser) parseFunctionOrForeignDefinition() *Node {
	start := p.tok.Offset
	p.advance() // 'function'
	name := p.expect(IDENT)
	params := p.parseParameterList()
	if p.at(KW_JAVASCRIPT) {
		p.advance()
		p.expect(LBRACE)
		body := p.captureRawBlock()
		n := &Node{Kind: ForeignFunctionDefinition, Name: name.Lit, StartByte: start, Str: body}
		n.setField("params", params)
		return n
	}
	n := &Node{Kind: FunctionDefinition, Name: name.Lit, StartByte: start}
	n.setField("params", params)
	p.expect(LBRACE)
	n.setField("body", p.parsePredicateBlock())
	p.expect(RBRACE)
	return n
}

// captureRawBlock consumes tokens until it finds the RBRACE that closes
// the current block, tracking nesting depth, and returns the raw source
// text in between. Foreign function bodies are opaque command text, not
// pattern-language syntax, so they are not otherwise parsed.
func (p *Parser) captureRawBlock() string {
	startOffset := p.tok.Offset
	depth := 1
	for depth > 0 && !p.at(EOF) {
		switch p.tok.Kind {
		case LBRACE:
			depth++
		case RBRACE:
			depth--
			if depth == 0 {
				endOffset := p.tok.Offset
				p.advance()
				return string(p.lex.src[startOffset:endOffset])
			}
		}
		p.advance()
	}
	p.errorf("unterminated foreign function body")
	return ""
}

// parsePattern parses a full pattern expression, including its
// lowest-precedence postfix forms (`where`, `=>` rewrite).
func (p *Parser) parsePattern() *Node {
	left := p.parsePatternPrimary()
	for {
		switch p.tok.Kind {
		case KW_WHERE:
			start := left.StartByte
			p.advance()
			pred := p.parsePredicateBlock()
			n := &Node{Kind: Where, StartByte: start}
			n.setField("pattern", left)
			n.setField("predicate", pred)
			left = n
		case ARROW:
			start := left.StartByte
			p.advance()
			rhs := p.parsePatternPrimary()
			n := &Node{Kind: Rewrite, StartByte: start}
			n.setField("lhs", left)
			n.setField("rhs", rhs)
			left = n
		case KW_LIMIT:
			start := left.StartByte
			p.advance()
			count := p.expect(INT)
			n := &Node{Kind: Limit, StartByte: start, Name: count.Lit}
			n.setField("pattern", left)
			left = n
		default:
			return left
		}
	}
}

func (p *Parser) parsePatternList(closer Kind) []*Node {
	var items []*Node
	for !p.at(closer) && !p.at(EOF) {
		items = append(items, p.parsePattern())
		if p.at(COMMA) {
			p.advance()
		}
	}
	return items
}

func (p *Parser) parsePatternPrimary() *Node {
	tok := p.tok
	switch tok.Kind {
	case KW_AND:
		p.advance()
		p.expect(LBRACE)
		n := &Node{Kind: And, StartByte: tok.Offset, Children: p.parsePatternList(RBRACE)}
		p.expect(RBRACE)
		return n
	case KW_OR:
		p.advance()
		p.expect(LBRACE)
		n := &Node{Kind: Or, StartByte: tok.Offset, Children: p.parsePatternList(RBRACE)}
		p.expect(RBRACE)
		return n
	case KW_ANY:
		p.advance()
		p.expect(LBRACE)
		n := &Node{Kind: Any, StartByte: tok.Offset, Children: p.parsePatternList(RBRACE)}
		p.expect(RBRACE)
		return n
	case KW_NOT:
		p.advance()
		inner := p.parsePatternPrimary()
		n := &Node{Kind: Not, StartByte: tok.Offset}
		n.setField("pattern", inner)
		return n
	case KW_MAYBE:
		p.advance()
		inner := p.parsePatternPrimary()
		n := &Node{Kind: Maybe, StartByte: tok.Offset}
		n.setField("pattern", inner)
		return n
	case KW_SOME:
		p.advance()
		inner := p.parsePatternPrimary()
		n := &Node{Kind: Some, StartByte: tok.Offset}
		n.setField("pattern", inner)
		return n
	case KW_EVERY:
		p.advance()
		inner := p.parsePatternPrimary()
		n := &Node{Kind: Every, StartByte: tok.Offset}
		n.setField("pattern", inner)
		return n
	case KW_WITHIN:
		p.advance()
		inner := p.parsePatternPrimary()
		n := &Node{Kind: Within, StartByte: tok.Offset}
		n.setField("pattern", inner)
		return n
	case KW_CONTAINS:
		p.advance()
		inner := p.parsePatternPrimary()
		n := &Node{Kind: Contains, StartByte: tok.Offset}
		n.setField("pattern", inner)
		if p.at(KW_UNTIL) {
			p.advance()
			n.setField("until", p.parsePatternPrimary())
		}
		return n
	case KW_SEQUENTIAL:
		p.advance()
		p.expect(LBRACE)
		n := &Node{Kind: Sequential, StartByte: tok.Offset, Children: p.parsePatternList(RBRACE)}
		p.expect(RBRACE)
		return n
	case KW_FILES:
		p.advance()
		p.expect(LBRACE)
		inner := p.parsePattern()
		p.expect(RBRACE)
		n := &Node{Kind: Files, StartByte: tok.Offset}
		n.setField("pattern", inner)
		return n
	case KW_BUBBLE:
		p.advance()
		var args []*Node
		if p.at(LPAREN) {
			p.advance()
			for !p.at(RPAREN) && !p.at(EOF) {
				args = append(args, p.parsePattern())
				if p.at(COMMA) {
					p.advance()
				}
			}
			p.expect(RPAREN)
		}
		p.expect(LBRACE)
		inner := p.parsePattern()
		p.expect(RBRACE)
		n := &Node{Kind: Bubble, StartByte: tok.Offset, Children: args}
		n.setField("pattern", inner)
		return n
	case KW_LIKE:
		p.advance()
		p.expect(LPAREN)
		ref := p.parsePattern()
		n := &Node{Kind: Like, StartByte: tok.Offset}
		n.setField("reference", ref)
		if p.at(COMMA) {
			p.advance()
			thresh := p.parsePatternPrimary()
			n.setField("threshold", thresh)
		}
		p.expect(RPAREN)
		return n
	case KW_IF:
		p.advance()
		p.expect(LPAREN)
		cond := p.parsePredicate()
		p.expect(RPAREN)
		p.expect(LBRACE)
		then := p.parsePattern()
		p.expect(RBRACE)
		n := &Node{Kind: If, StartByte: tok.Offset}
		n.setField("if", cond)
		n.setField("then", then)
		if p.at(KW_ELSE) {
			p.advance()
			p.expect(LBRACE)
			els := p.parsePattern()
			p.expect(RBRACE)
			n.setField("else", els)
		}
		return n
	case KW_UNDEFINED:
		p.advance()
		return &Node{Kind: Undefined, StartByte: tok.Offset}
	case DOTDOTDOT:
		p.advance()
		return &Node{Kind: Dots, StartByte: tok.Offset}
	case UNDERSCORE:
		p.advance()
		return &Node{Kind: Underscore, StartByte: tok.Offset}
	case KW_TRUE:
		p.advance()
		return &Node{Kind: BooleanLiteral, Bool: true, StartByte: tok.Offset}
	case KW_FALSE:
		p.advance()
		return &Node{Kind: BooleanLiteral, Bool: false, StartByte: tok.Offset}
	case STRING:
		p.advance()
		return &Node{Kind: StringLiteral, Str: tok.Lit, StartByte: tok.Offset}
	case INT:
		p.advance()
		return &Node{Kind: IntLiteral, Str: tok.Lit, StartByte: tok.Offset}
	case FLOAT:
		p.advance()
		return &Node{Kind: FloatLiteral, Str: tok.Lit, StartByte: tok.Offset}
	case BACKTICK:
		p.advance()
		return p.parsePostfix(&Node{Kind: BacktickSnippet, Str: tok.Lit, StartByte: tok.Offset})
	case RAW_BACKTICK:
		p.advance()
		return &Node{Kind: RawBacktickSnippet, Str: tok.Lit, StartByte: tok.Offset}
	case LANG_BACKTICK:
		p.advance()
		lang, body := splitLangSnippet(tok.Lit)
		return p.parsePostfix(&Node{Kind: LanguageSpecificSnippet, Name: lang, Str: body, StartByte: tok.Offset})
	case VARIABLE:
		p.advance()
		return p.parsePostfix(&Node{Kind: Variable, Name: tok.Lit, StartByte: tok.Offset})
	case LBRACKET:
		return p.parsePostfix(p.parseList())
	case LBRACE:
		return p.parsePostfix(p.parseMap())
	case LPAREN:
		p.advance()
		inner := p.parsePattern()
		p.expect(RPAREN)
		return p.parsePostfix(inner)
	case IDENT:
		return p.parsePostfix(p.parseNodeLike())
	default:
		p.errorf("unexpected token %s %q in pattern", tok.Kind, tok.Lit)
		p.advance()
		return &Node{Kind: Underscore, StartByte: tok.Offset}
	}
}

func splitLangSnippet(lit string) (lang, body string) {
	for i, r := range lit {
		if r == 0 {
			return lit[:i], lit[i+1:]
		}
	}
	return "", lit
}

func (p *Parser) parseNodeLike() *Node {
	name := p.expect(IDENT)
	n := &Node{Kind: NodeLike, Name: name.Lit, StartByte: name.Offset}
	if p.at(LPAREN) {
		p.advance()
		for !p.at(RPAREN) && !p.at(EOF) {
			n.Children = append(n.Children, p.parsePattern())
			if p.at(COMMA) {
				p.advance()
			}
		}
		p.expect(RPAREN)
	}
	return n
}

func (p *Parser) parsePostfix(n *Node) *Node {
	for {
		switch p.tok.Kind {
		case DOT:
			p.advance()
			field := p.expect(IDENT)
			acc := &Node{Kind: Accessor, Name: field.Lit, StartByte: n.StartByte}
			acc.setField("target", n)
			n = acc
		case LBRACKET:
			p.advance()
			idx := p.parsePattern()
			p.expect(RBRACKET)
			li := &Node{Kind: ListIndex, StartByte: n.StartByte}
			li.setField("target", n)
			li.setField("index", idx)
			n = li
		default:
			return n
		}
	}
}

func (p *Parser) parseList() *Node {
	start := p.tok.Offset
	p.expect(LBRACKET)
	n := &Node{Kind: List, StartByte: start, Children: p.parsePatternList(RBRACKET)}
	p.expect(RBRACKET)
	return n
}

func (p *Parser) parseMap() *Node {
	start := p.tok.Offset
	p.expect(LBRACE)
	n := &Node{Kind: Map, StartByte: start}
	for !p.at(RBRACE) && !p.at(EOF) {
		var key string
		if p.at(STRING) {
			key = p.tok.Lit
			p.advance()
		} else {
			key = p.expect(IDENT).Lit
		}
		p.expect(COLON)
		value := p.parsePattern()
		entry := &Node{Kind: MapEntry, Name: key}
		entry.setField("value", value)
		n.Children = append(n.Children, entry)
		if p.at(COMMA) {
			p.advance()
		}
	}
	p.expect(RBRACE)
	return n
}

// parsePredicate parses a predicate expression, the language used
// inside `where { ... }` bodies, predicate/function definitions, and
// `if (...)` conditions.
func (p *Parser) parsePredicate() *Node {
	left := p.parsePredicatePrimary()
	for {
		switch p.tok.Kind {
		case KW_AND:
			start := left.StartByte
			p.advance()
			right := p.parsePredicatePrimary()
			n := &Node{Kind: And, StartByte: start, Children: []*Node{left, right}}
			left = n
		case KW_OR:
			start := left.StartByte
			p.advance()
			right := p.parsePredicatePrimary()
			n := &Node{Kind: Or, StartByte: start, Children: []*Node{left, right}}
			left = n
		default:
			return left
		}
	}
}

func (p *Parser) parsePredicatePrimary() *Node {
	tok := p.tok
	switch tok.Kind {
	case KW_NOT:
		p.advance()
		inner := p.parsePredicatePrimary()
		n := &Node{Kind: Not, StartByte: tok.Offset}
		n.setField("predicate", inner)
		return n
	case KW_IF:
		p.advance()
		p.expect(LPAREN)
		cond := p.parsePredicate()
		p.expect(RPAREN)
		p.expect(LBRACE)
		then := p.parsePredicateBlock()
		p.expect(RBRACE)
		n := &Node{Kind: If, StartByte: tok.Offset}
		n.setField("if", cond)
		n.setField("then", then)
		if p.at(KW_ELSE) {
			p.advance()
			p.expect(LBRACE)
			els := p.parsePredicateBlock()
			p.expect(RBRACE)
			n.setField("else", els)
		}
		return n
	case KW_RETURN:
		p.advance()
		value := p.parsePattern()
		n := &Node{Kind: Return, StartByte: tok.Offset}
		n.setField("value", value)
		return n
	case KW_LOG:
		p.advance()
		p.expect(LPAREN)
		msg := p.parsePattern()
		n := &Node{Kind: Log, StartByte: tok.Offset}
		n.setField("message", msg)
		p.expect(RPAREN)
		return n
	case KW_TRUE:
		p.advance()
		return &Node{Kind: BooleanLiteral, Bool: true, StartByte: tok.Offset}
	case KW_FALSE:
		p.advance()
		return &Node{Kind: BooleanLiteral, Bool: false, StartByte: tok.Offset}
	case LPAREN:
		p.advance()
		inner := p.parsePredicate()
		p.expect(RPAREN)
		return inner
	}

	// Otherwise: a pattern expression, possibly followed by `:=`, `=`,
	// `==`, or `!=` to form an assignment/match/equality predicate.
	left := p.parsePattern()
	switch p.tok.Kind {
	case WALRUS:
		p.advance()
		value := p.parsePattern()
		n := &Node{Kind: Assignment, StartByte: left.StartByte, Name: ":="}
		n.setField("target", left)
		n.setField("value", value)
		return n
	case ASSIGN:
		p.advance()
		value := p.parsePattern()
		n := &Node{Kind: Assignment, StartByte: left.StartByte, Name: "="}
		n.setField("target", left)
		n.setField("value", value)
		return n
	case EQ, NOT_EQ:
		op := p.tok.Kind
		p.advance()
		right := p.parsePattern()
		n := &Node{Kind: NodeLike, Name: eqOpName(op), StartByte: left.StartByte, Children: []*Node{left, right}}
		return n
	default:
		return left
	}
}

func eqOpName(k Kind) string {
	if k == EQ {
		return "=="
	}
	return "!="
}
