package parser

import (
	"strconv"
	"strings"

	"github.com/ratanachh/eql/ast"
	"github.com/ratanachh/eql/lexer"
)

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(lexer.TokenOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Position: left.Pos(), Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.accept(lexer.TokenAnd) {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Position: left.Pos(), Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Expr, error) {
	if p.at(lexer.TokenNot) {
		tok := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Position: tok.Pos, Op: ast.UnaryNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[lexer.TokenKind]ast.BinaryOp{
	lexer.TokenEq: ast.OpEq,
	lexer.TokenNe: ast.OpNe,
	lexer.TokenLt: ast.OpLt,
	lexer.TokenLe: ast.OpLe,
	lexer.TokenGt: ast.OpGt,
	lexer.TokenGe: ast.OpGe,
}

// parseComparison reads an additive expression optionally followed by one
// comparison. Comparisons do not chain; "a = b = c" fails on the second "=".
func (p *parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	negated := false
	if p.at(lexer.TokenNot) {
		p.advance()
		negated = true
		if !p.atAny(lexer.TokenLike, lexer.TokenIn, lexer.TokenBetween) {
			return nil, p.expected("LIKE", "IN", "BETWEEN")
		}
	}

	var expr ast.Expr
	switch {
	case !negated && comparisonOps[p.cur().Kind] != 0:
		op := comparisonOps[p.advance().Kind]
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Position: left.Pos(), Op: op, Left: left, Right: right}

	case p.accept(lexer.TokenLike):
		pattern, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Position: left.Pos(), Op: ast.OpLike, Left: left, Right: pattern}

	case p.accept(lexer.TokenBetween):
		low, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenAnd); err != nil {
			return nil, err
		}
		high, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{
			Position: left.Pos(),
			Op:       ast.OpBetween,
			Left:     left,
			Right:    &ast.BinaryExpr{Position: low.Pos(), Op: ast.OpAnd, Left: low, Right: high},
		}

	case p.accept(lexer.TokenIn):
		list, err := p.parseInList()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Position: left.Pos(), Op: ast.OpIn, Left: left, Right: list}

	case p.accept(lexer.TokenIs):
		isNot := p.accept(lexer.TokenNot)
		if _, err := p.expect(lexer.TokenNull); err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Position: left.Pos(), Op: ast.OpIs, Left: left, Right: &ast.LiteralExpr{Position: left.Pos()}}
		if isNot {
			expr = &ast.UnaryExpr{Position: left.Pos(), Op: ast.UnaryNot, Operand: expr}
		}

	default:
		return left, nil
	}

	if negated {
		expr = &ast.UnaryExpr{Position: left.Pos(), Op: ast.UnaryNot, Operand: expr}
	}
	return expr, nil
}

func (p *parser) parseInList() (*ast.ListExpr, error) {
	open, err := p.expect(lexer.TokenLParen)
	if err != nil {
		return nil, err
	}
	if p.at(lexer.TokenSelect) {
		tok := p.cur()
		return nil, &ParseError{
			Position: tok.Pos,
			Expected: []string{"expression"},
			Found:    "SELECT",
			Hint:     "subqueries are not supported",
		}
	}
	list := &ast.ListExpr{Position: open.Pos}
	for {
		item, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atAny(lexer.TokenPlus, lexer.TokenMinus) {
		op := ast.OpAdd
		if p.advance().Kind == lexer.TokenMinus {
			op = ast.OpSub
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Position: left.Pos(), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atAny(lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent) {
		var op ast.BinaryOp
		switch p.advance().Kind {
		case lexer.TokenStar:
			op = ast.OpMul
		case lexer.TokenSlash:
			op = ast.OpDiv
		default:
			op = ast.OpMod
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Position: left.Pos(), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.atAny(lexer.TokenMinus, lexer.TokenPlus) {
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		op := ast.UnaryMinus
		if tok.Kind == lexer.TokenPlus {
			op = ast.UnaryPlus
		}
		return &ast.UnaryExpr{Position: tok.Pos, Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.TokenInt:
		p.advance()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, &ParseError{
				Position: tok.Pos,
				Expected: []string{"integer literal"},
				Found:    "number " + tok.Text,
				Hint:     "value does not fit in 64 bits",
			}
		}
		return &ast.LiteralExpr{Position: tok.Pos, Value: v}, nil

	case lexer.TokenDecimal:
		p.advance()
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, &ParseError{
				Position: tok.Pos,
				Expected: []string{"decimal literal"},
				Found:    "number " + tok.Text,
			}
		}
		return &ast.LiteralExpr{Position: tok.Pos, Value: v}, nil

	case lexer.TokenString:
		p.advance()
		return &ast.LiteralExpr{Position: tok.Pos, Value: tok.Text}, nil

	case lexer.TokenTrue:
		p.advance()
		return &ast.LiteralExpr{Position: tok.Pos, Value: true}, nil

	case lexer.TokenFalse:
		p.advance()
		return &ast.LiteralExpr{Position: tok.Pos, Value: false}, nil

	case lexer.TokenNull:
		p.advance()
		return &ast.LiteralExpr{Position: tok.Pos}, nil

	case lexer.TokenParam:
		p.advance()
		return &ast.ParamExpr{Position: tok.Pos, Name: tok.Text}, nil

	case lexer.TokenCount, lexer.TokenSum, lexer.TokenAvg, lexer.TokenMin, lexer.TokenMax:
		return p.parseAggregate()

	case lexer.TokenFunction:
		return p.parseBuiltin()

	case lexer.TokenIdent:
		p.advance()
		if p.at(lexer.TokenLParen) {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return &ast.FunctionExpr{Position: tok.Pos, Name: tok.Text, Args: args}, nil
		}
		if p.accept(lexer.TokenDot) {
			if p.at(lexer.TokenStar) {
				p.advance()
				return &ast.WildcardExpr{Position: tok.Pos, Qualifier: tok.Text}, nil
			}
			name, err := p.expectName("property name")
			if err != nil {
				return nil, err
			}
			if p.at(lexer.TokenDot) {
				return nil, &ParseError{
					Position: p.cur().Pos,
					Expected: []string{"operator", "end of expression"},
					Found:    ".",
					Hint:     "multi-segment paths are not supported, add an explicit JOIN",
				}
			}
			return &ast.PropertyExpr{Position: tok.Pos, Qualifier: tok.Text, Name: name.Text}, nil
		}
		return &ast.PropertyExpr{Position: tok.Pos, Name: tok.Text}, nil

	case lexer.TokenLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.expected("expression")
}

var aggregateOps = map[lexer.TokenKind]ast.AggregateOp{
	lexer.TokenCount: ast.AggCount,
	lexer.TokenSum:   ast.AggSum,
	lexer.TokenAvg:   ast.AggAvg,
	lexer.TokenMin:   ast.AggMin,
	lexer.TokenMax:   ast.AggMax,
}

func (p *parser) parseAggregate() (ast.Expr, error) {
	tok := p.advance()
	agg := &ast.AggregateExpr{Position: tok.Pos, Op: aggregateOps[tok.Kind]}
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	agg.Distinct = p.accept(lexer.TokenDistinct)
	if p.at(lexer.TokenStar) {
		star := p.cur()
		if agg.Op != ast.AggCount || agg.Distinct {
			return nil, p.expected("expression")
		}
		p.advance()
		agg.Arg = &ast.WildcardExpr{Position: star.Pos}
	} else {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		agg.Arg = arg
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return agg, nil
}

// parseBuiltin reads a well-known scalar function. The CURRENT_* family may
// be written without parentheses.
func (p *parser) parseBuiltin() (ast.Expr, error) {
	tok := p.advance()
	if !p.at(lexer.TokenLParen) {
		if isNiladic(tok.Text) {
			return &ast.FunctionExpr{Position: tok.Pos, Name: tok.Text}, nil
		}
		return nil, p.expected("(")
	}
	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionExpr{Position: tok.Pos, Name: tok.Text, Args: args}, nil
}

func (p *parser) parseCallArgs() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	if p.accept(lexer.TokenRParen) {
		return nil, nil
	}
	var args []ast.Expr
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return args, nil
}

func isNiladic(name string) bool {
	switch strings.ToUpper(name) {
	case "CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP":
		return true
	}
	return false
}
