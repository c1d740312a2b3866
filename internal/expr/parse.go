package expr

import (
	"strconv"
	"strings"
)

const (
	// maxExprLen bounds lexer input so hostile messages cannot grow the
	// token stream without limit.
	maxExprLen = 512
	// maxDepth bounds parser recursion against nested-parenthesis input.
	maxDepth = 64
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokDoubleStar
	tokDoubleSlash
	tokPercent
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	value float64
	pos   int
}

func lex(input string) ([]token, error) {
	toks := make([]token, 0, 16)
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			i = scanNumber(input, i)
			v, err := strconv.ParseFloat(input[start:i], 64)
			if err != nil {
				return nil, &ParseError{Pos: start, Msg: "invalid numeric literal"}
			}
			toks = append(toks, token{kind: tokNumber, value: v, pos: start})
		case c == '+':
			toks = append(toks, token{kind: tokPlus, pos: i})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, pos: i})
			i++
		case c == '*':
			if i+1 < len(input) && input[i+1] == '*' {
				toks = append(toks, token{kind: tokDoubleStar, pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokStar, pos: i})
				i++
			}
		case c == '/':
			if i+1 < len(input) && input[i+1] == '/' {
				toks = append(toks, token{kind: tokDoubleSlash, pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokSlash, pos: i})
				i++
			}
		case c == '%':
			toks = append(toks, token{kind: tokPercent, pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		default:
			// Letters, quotes, brackets, comparison operators and any
			// other byte mean the input is not pure arithmetic.
			return nil, &ParseError{Pos: i, Msg: "disallowed character in expression"}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(input)})
	return toks, nil
}

// scanNumber consumes digits, one decimal point and an optional exponent.
func scanNumber(input string, i int) int {
	for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
		i++
	}
	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		j := i + 1
		if j < len(input) && (input[j] == '+' || input[j] == '-') {
			j++
		}
		if j < len(input) && input[j] >= '0' && input[j] <= '9' {
			i = j
			for i < len(input) && input[i] >= '0' && input[i] <= '9' {
				i++
			}
		}
	}
	return i
}

type parser struct {
	toks  []token
	pos   int
	depth int
}

// Parse lexes and parses text into an expression tree.
func Parse(text string) (Node, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	if len(trimmed) > maxExprLen {
		return nil, &ParseError{Pos: maxExprLen, Msg: "expression too long"}
	}
	toks, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &ParseError{Pos: tok.pos, Msg: "unexpected trailing input"}
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) enter(pos int) error {
	p.depth++
	if p.depth > maxDepth {
		return &ParseError{Pos: pos, Msg: "expression nested too deeply"}
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// parseSum handles + and - at the lowest precedence, left-associative.
func (p *parser) parseSum() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: OpAdd, Left: left, Right: right}
		case tokMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: OpSub, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

// parseTerm handles *, /, // and %, left-associative.
func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.peek().kind {
		case tokStar:
			op = OpMul
		case tokSlash:
			op = OpDiv
		case tokDoubleSlash:
			op = OpFloorDiv
		case tokPercent:
			op = OpMod
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

// parseUnary binds looser than ** on the left, so -2**2 parses as -(2**2).
func (p *parser) parseUnary() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokPlus, tokMinus:
		if err := p.enter(tok.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		op := OpPos
		if tok.kind == tokMinus {
			op = OpNeg
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil
	default:
		return p.parsePower()
	}
}

// parsePower handles **, right-associative with a possibly signed exponent.
func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokDoubleStar {
		return base, nil
	}
	tok := p.next()
	if err := p.enter(tok.pos); err != nil {
		return nil, err
	}
	defer p.leave()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: OpPow, Left: base, Right: exp}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNumber:
		p.next()
		return &NumberLiteral{Value: tok.value}, nil
	case tokLParen:
		if err := p.enter(tok.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		p.next()
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.kind != tokRParen {
			return nil, &ParseError{Pos: closing.pos, Msg: "missing closing parenthesis"}
		}
		p.next()
		return inner, nil
	case tokEOF:
		return nil, &ParseError{Pos: tok.pos, Msg: "unexpected end of expression"}
	default:
		return nil, &ParseError{Pos: tok.pos, Msg: "unexpected token"}
	}
}
