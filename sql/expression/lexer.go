package expression

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosqlmapper/sqlmapper/errs"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

// lexer tokenizes the §4.1 expression grammar: dotted identifiers,
// int/float/string literals, true/false/null, and the listed operators.
type lexer struct {
	src  string
	pos  int
	toks []token
}

func tokenize(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, token{kind: tokEOF})
			return l.toks, nil
		}
		c := l.src[l.pos]
		switch {
		case c == '(':
			l.toks = append(l.toks, token{kind: tokLParen, text: "("})
			l.pos++
		case c == ')':
			l.toks = append(l.toks, token{kind: tokRParen, text: ")"})
			l.pos++
		case c == '\'' || c == '"':
			s, err := l.readString(c)
			if err != nil {
				return nil, err
			}
			l.toks = append(l.toks, token{kind: tokString, text: s})
		case isDigit(c):
			tok, err := l.readNumber()
			if err != nil {
				return nil, err
			}
			l.toks = append(l.toks, tok)
		case isIdentStart(c):
			l.toks = append(l.toks, token{kind: tokIdent, text: l.readIdent()})
		default:
			op, err := l.readOperator()
			if err != nil {
				return nil, err
			}
			l.toks = append(l.toks, token{kind: tokOp, text: op})
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
		l.pos++
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.'
}

func (l *lexer) readIdent() string {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

func (l *lexer) readNumber() (token, error) {
	start := l.pos
	isFloat := false
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	text := l.src[start:l.pos]
	if isFloat {
		return token{kind: tokFloat, text: text}, nil
	}
	return token{kind: tokInt, text: text}, nil
}

func (l *lexer) readString(quote byte) (string, error) {
	l.pos++ // skip opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			return sb.String(), nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			sb.WriteByte(l.src[l.pos])
			l.pos++
			continue
		}
		sb.WriteByte(c)
		l.pos++
	}
	return "", errs.ExpressionError.New(fmt.Sprintf("unterminated string literal in %q", l.src))
}

var multiCharOps = []string{"===", "!==", "==", "!=", "<=", ">=", "&&", "||"}

func (l *lexer) readOperator() (string, error) {
	rest := l.src[l.pos:]
	for _, op := range multiCharOps {
		if strings.HasPrefix(rest, op) {
			l.pos += len(op)
			return op, nil
		}
	}
	c := l.src[l.pos]
	switch c {
	case '!', '-', '+', '*', '/', '%', '<', '>':
		l.pos++
		return string(c), nil
	}
	return "", errs.ExpressionError.New(fmt.Sprintf("unexpected character %q in expression %q", c, l.src))
}

// parseNumber converts a numeric token's text into int64 or float64.
func parseNumber(tok token) (any, error) {
	if tok.kind == tokFloat {
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, errs.ExpressionError.New(fmt.Sprintf("invalid float literal %q", tok.text))
		}
		return f, nil
	}
	n, err := strconv.ParseInt(tok.text, 10, 64)
	if err != nil {
		return nil, errs.ExpressionError.New(fmt.Sprintf("invalid integer literal %q", tok.text))
	}
	return n, nil
}
