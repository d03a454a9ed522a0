package tools

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrBadExpression covers every way an arithmetic expression can be rejected,
// including division by zero. Callers match it with errors.Is.
var ErrBadExpression = errors.New("invalid expression")

// Evaluate computes a basic arithmetic expression: + - * /, unary minus,
// parentheses, integer and decimal literals. Anything else is rejected so the
// calculator can never run arbitrary code on behalf of the model.
func Evaluate(expression string) (float64, error) {
	p := &exprParser{input: expression}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("%w: unexpected %q at position %d", ErrBadExpression, p.input[p.pos], p.pos)
	}
	return v, nil
}

type exprParser struct {
	input string
	pos   int
}

// expr := term (('+'|'-') term)*
func (p *exprParser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.peek() == '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += rhs
		case p.peek() == '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

// term := unary (('*'|'/') unary)*
func (p *exprParser) parseTerm() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.peek() == '*':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case p.peek() == '/':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrBadExpression)
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

// unary := '-' unary | primary
func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpaces()
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePrimary()
}

// primary := number | '(' expr ')'
func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("%w: unexpected end of input", ErrBadExpression)
	}

	if p.peek() == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrBadExpression)
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.input) && (unicode.IsDigit(rune(p.input[p.pos])) || p.input[p.pos] == '.') {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("%w: unexpected %q at position %d", ErrBadExpression, p.input[p.pos], p.pos)
	}

	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed number %q", ErrBadExpression, p.input[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && strings.ContainsRune(" \t", rune(p.input[p.pos])) {
		p.pos++
	}
}

// FormatResult renders a calculator result the way the answer prompt expects,
// trimming the float noise from whole numbers.
func FormatResult(expression string, value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	return fmt.Sprintf("The result of %s is %s", strings.TrimSpace(expression), s)
}
