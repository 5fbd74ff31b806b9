// Package parser turns entity query text into the syntax tree defined by
// package ast.
//
// The implementation is a hand-written recursive descent parser, one function
// per grammar production, with exactly one token of lookahead. Expression
// parsing climbs the precedence ladder OR < AND < NOT < comparison <
// additive < multiplicative < unary, so "a OR b AND NOT c = 1 + 2 * 3"
// groups the way SQL readers expect without any precedence tables.
package parser

import (
	"github.com/ratanachh/eql/ast"
	"github.com/ratanachh/eql/lexer"
)

// Parse tokenizes and parses a complete query. Errors are either a
// *lexer.LexError or a *ParseError.
func Parse(query string) (ast.Statement, error) {
	tokens, err := lexer.Tokenize(query)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses a token stream produced by lexer.Tokenize. The stream
// must describe exactly one statement; trailing tokens are an error.
func ParseTokens(tokens []lexer.Token) (ast.Statement, error) {
	p := &parser{tokens: tokens}

	var stmt ast.Statement
	var err error
	switch p.cur().Kind {
	case lexer.TokenSelect:
		stmt, err = p.parseSelect()
	case lexer.TokenUpdate:
		stmt, err = p.parseUpdate()
	case lexer.TokenDelete:
		stmt, err = p.parseDelete()
	default:
		return nil, p.expected("SELECT", "UPDATE", "DELETE")
	}
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.TokenEOF {
		return nil, p.expected("end of query")
	}
	return stmt, nil
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) cur() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	end := 0
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		end = last.Pos + len(last.Text)
	}
	return lexer.Token{Kind: lexer.TokenEOF, Pos: end}
}

func (p *parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) at(kind lexer.TokenKind) bool { return p.cur().Kind == kind }

func (p *parser) atAny(kinds ...lexer.TokenKind) bool {
	for _, kind := range kinds {
		if p.cur().Kind == kind {
			return true
		}
	}
	return false
}

// accept consumes the current token when it has the given kind.
func (p *parser) accept(kind lexer.TokenKind) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	if p.at(kind) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.expected(kind.String())
}

// expectName consumes a name where the grammar demands one. Keyword
// spellings are accepted here, so "FROM Order" and "o.Count" parse even
// though ORDER and COUNT are reserved elsewhere.
func (p *parser) expectName(what string) (lexer.Token, error) {
	if p.cur().Kind.Wordlike() {
		return p.advance(), nil
	}
	return lexer.Token{}, p.expected(what)
}

func (p *parser) expected(expected ...string) error {
	tok := p.cur()
	return &ParseError{Position: tok.Pos, Expected: expected, Found: describeToken(tok)}
}

func (p *parser) parseSelect() (*ast.SelectStatement, error) {
	stmt := &ast.SelectStatement{Position: p.advance().Pos}
	stmt.Distinct = p.accept(lexer.TokenDistinct)

	items, err := p.parseSelectItems()
	if err != nil {
		return nil, err
	}
	stmt.Items = items

	if _, err := p.expect(lexer.TokenFrom); err != nil {
		return nil, err
	}
	if stmt.From, err = p.parseFrom(); err != nil {
		return nil, err
	}
	if stmt.Joins, err = p.parseJoins(); err != nil {
		return nil, err
	}
	if p.accept(lexer.TokenWhere) {
		if stmt.Where, err = p.parseOr(); err != nil {
			return nil, err
		}
	}
	if p.accept(lexer.TokenGroup) {
		if _, err := p.expect(lexer.TokenBy); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, expr)
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
	}
	if p.accept(lexer.TokenHaving) {
		if stmt.Having, err = p.parseOr(); err != nil {
			return nil, err
		}
	}
	if p.accept(lexer.TokenOrder) {
		if _, err := p.expect(lexer.TokenBy); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			item := ast.OrderItem{Expr: expr}
			if p.accept(lexer.TokenDesc) {
				item.Desc = true
			} else {
				p.accept(lexer.TokenAsc)
			}
			stmt.OrderBy = append(stmt.OrderBy, item)
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
	}
	return stmt, nil
}

func (p *parser) parseSelectItems() ([]ast.SelectItem, error) {
	var items []ast.SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.accept(lexer.TokenComma) {
			return items, nil
		}
	}
}

func (p *parser) parseSelectItem() (ast.SelectItem, error) {
	if p.at(lexer.TokenStar) {
		tok := p.advance()
		return ast.SelectItem{Expr: &ast.WildcardExpr{Position: tok.Pos}}, nil
	}
	expr, err := p.parseOr()
	if err != nil {
		return ast.SelectItem{}, err
	}
	item := ast.SelectItem{Expr: expr}
	if p.accept(lexer.TokenAs) {
		tok, err := p.expectName("select item alias")
		if err != nil {
			return ast.SelectItem{}, err
		}
		item.Alias = tok.Text
	} else if p.at(lexer.TokenIdent) {
		item.Alias = p.advance().Text
	}
	return item, nil
}

func (p *parser) parseFrom() (ast.FromClause, error) {
	tok, err := p.expectName("entity name")
	if err != nil {
		return ast.FromClause{}, err
	}
	from := ast.FromClause{Position: tok.Pos, Entity: tok.Text}
	if p.accept(lexer.TokenAs) {
		alias, err := p.expectName("alias")
		if err != nil {
			return ast.FromClause{}, err
		}
		from.Alias = alias.Text
	} else if p.at(lexer.TokenIdent) {
		from.Alias = p.advance().Text
	}
	return from, nil
}

func (p *parser) parseJoins() ([]ast.JoinClause, error) {
	var joins []ast.JoinClause
	for {
		var joinType ast.JoinType
		start := p.cur().Pos
		switch p.cur().Kind {
		case lexer.TokenJoin:
			p.advance()
		case lexer.TokenInner:
			p.advance()
			if _, err := p.expect(lexer.TokenJoin); err != nil {
				return nil, err
			}
		case lexer.TokenLeft:
			p.advance()
			joinType = ast.JoinLeft
			p.accept(lexer.TokenOuter)
			if _, err := p.expect(lexer.TokenJoin); err != nil {
				return nil, err
			}
		case lexer.TokenRight:
			p.advance()
			joinType = ast.JoinRight
			p.accept(lexer.TokenOuter)
			if _, err := p.expect(lexer.TokenJoin); err != nil {
				return nil, err
			}
		case lexer.TokenFull:
			p.advance()
			joinType = ast.JoinFull
			p.accept(lexer.TokenOuter)
			if _, err := p.expect(lexer.TokenJoin); err != nil {
				return nil, err
			}
		default:
			return joins, nil
		}

		join := ast.JoinClause{Position: start, Type: joinType}
		first, err := p.expectName("relationship path")
		if err != nil {
			return nil, err
		}
		if p.accept(lexer.TokenDot) {
			prop, err := p.expectName("relationship property")
			if err != nil {
				return nil, err
			}
			join.Owner = first.Text
			join.Property = prop.Text
		} else {
			join.Property = first.Text
		}
		if p.accept(lexer.TokenAs) {
			alias, err := p.expectName("join alias")
			if err != nil {
				return nil, err
			}
			join.Alias = alias.Text
		} else if p.at(lexer.TokenIdent) {
			join.Alias = p.advance().Text
		}
		if p.accept(lexer.TokenOn) {
			if join.On, err = p.parseOr(); err != nil {
				return nil, err
			}
		}
		joins = append(joins, join)
	}
}

func (p *parser) parseUpdate() (*ast.UpdateStatement, error) {
	stmt := &ast.UpdateStatement{Position: p.advance().Pos}

	entity, err := p.expectName("entity name")
	if err != nil {
		return nil, err
	}
	stmt.Entity = entity.Text
	if p.accept(lexer.TokenAs) {
		alias, err := p.expectName("alias")
		if err != nil {
			return nil, err
		}
		stmt.Alias = alias.Text
	} else if p.at(lexer.TokenIdent) {
		stmt.Alias = p.advance().Text
	}

	if _, err := p.expect(lexer.TokenSet); err != nil {
		return nil, err
	}
	for {
		set, err := p.parseAssignment(stmt)
		if err != nil {
			return nil, err
		}
		stmt.Sets = append(stmt.Sets, set)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if p.accept(lexer.TokenWhere) {
		if stmt.Where, err = p.parseOr(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// parseAssignment reads one "property = value" pair. A qualified property is
// allowed only when the qualifier names the statement's own alias; the
// qualifier is stripped before the assignment is stored.
func (p *parser) parseAssignment(stmt *ast.UpdateStatement) (ast.Assignment, error) {
	first, err := p.expectName("property name")
	if err != nil {
		return ast.Assignment{}, err
	}
	property := first.Text
	if p.accept(lexer.TokenDot) {
		prop, err := p.expectName("property name")
		if err != nil {
			return ast.Assignment{}, err
		}
		declared := stmt.Alias
		if declared == "" {
			declared = stmt.Entity
		}
		if first.Text != declared {
			return ast.Assignment{}, &ParseError{
				Position: first.Pos,
				Expected: []string{"qualifier " + declared},
				Found:    "identifier \"" + first.Text + "\"",
			}
		}
		property = prop.Text
	}
	if _, err := p.expect(lexer.TokenEq); err != nil {
		return ast.Assignment{}, err
	}
	value, err := p.parseOr()
	if err != nil {
		return ast.Assignment{}, err
	}
	return ast.Assignment{Property: property, Value: value}, nil
}

func (p *parser) parseDelete() (*ast.DeleteStatement, error) {
	stmt := &ast.DeleteStatement{Position: p.advance().Pos}
	if _, err := p.expect(lexer.TokenFrom); err != nil {
		return nil, err
	}
	entity, err := p.expectName("entity name")
	if err != nil {
		return nil, err
	}
	stmt.Entity = entity.Text
	if p.accept(lexer.TokenAs) {
		alias, err := p.expectName("alias")
		if err != nil {
			return nil, err
		}
		stmt.Alias = alias.Text
	} else if p.at(lexer.TokenIdent) {
		stmt.Alias = p.advance().Text
	}
	if p.accept(lexer.TokenWhere) {
		if stmt.Where, err = p.parseOr(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}
