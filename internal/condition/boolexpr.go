package condition

import (
	"strings"
)

// evalBooleanExpression reduces an expression containing only the tokens
// True, False, and, or, not and parentheses to a single boolean. Any other
// token is rejected before parsing: the expression originates from a remotely
// downloaded document and must never reach anything more general than this
// fixed five-symbol vocabulary.
//
// Precedence is not > and > or, with explicit parenthesization.
func evalBooleanExpression(expr string) (bool, error) {
	for _, token := range strings.Fields(strings.NewReplacer("(", "", ")", "").Replace(expr)) {
		switch token {
		case "True", "False", "and", "or", "not":
		default:
			return false, invalidCondition("condition contains invalid token: %s", token)
		}
	}
	p := &boolParser{tokens: tokenizeBooleanExpression(expr)}
	result, err := p.parseOr()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.tokens) {
		return false, invalidCondition("unexpected token: %s", p.tokens[p.pos])
	}
	return result, nil
}

func tokenizeBooleanExpression(expr string) []string {
	expr = strings.ReplaceAll(expr, "(", " ( ")
	expr = strings.ReplaceAll(expr, ")", " ) ")
	return strings.Fields(expr)
}

type boolParser struct {
	tokens []string
	pos    int
}

func (p *boolParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *boolParser) next() string {
	token := p.peek()
	p.pos++
	return token
}

func (p *boolParser) parseOr() (bool, error) {
	result, err := p.parseAnd()
	if err != nil {
		return false, err
	}
	for p.peek() == "or" {
		p.next()
		rhs, err := p.parseAnd()
		if err != nil {
			return false, err
		}
		result = result || rhs
	}
	return result, nil
}

func (p *boolParser) parseAnd() (bool, error) {
	result, err := p.parseNot()
	if err != nil {
		return false, err
	}
	for p.peek() == "and" {
		p.next()
		rhs, err := p.parseNot()
		if err != nil {
			return false, err
		}
		result = result && rhs
	}
	return result, nil
}

func (p *boolParser) parseNot() (bool, error) {
	if p.peek() == "not" {
		p.next()
		result, err := p.parseNot()
		if err != nil {
			return false, err
		}
		return !result, nil
	}
	return p.parseAtom()
}

func (p *boolParser) parseAtom() (bool, error) {
	switch token := p.next(); token {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "(":
		result, err := p.parseOr()
		if err != nil {
			return false, err
		}
		if p.next() != ")" {
			return false, invalidCondition("unbalanced parentheses")
		}
		return result, nil
	case "":
		return false, invalidCondition("unexpected end of expression")
	default:
		return false, invalidCondition("unexpected token: %s", token)
	}
}
