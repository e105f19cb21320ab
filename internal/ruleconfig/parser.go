// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ruleconfig

import (
	"fmt"
	"strings"

	"github.com/haukzero/punp/pkg/contract"
)

// ParseError carries the 1-based line/column of the offending token, so
// callers can print a caret pointing at the exact spot in the rule file.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser consumes a token stream from a Lexer and builds up a
// ReplacementMap and an ordered protected-region list. Parsing aborts at
// the first malformed statement rather than attempting recovery, so a
// caller never sees a partially-applied rule file silently.
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token

	rep       contract.ReplacementMap
	protected []contract.ProtectedRegionSpec
}

// NewParser creates a Parser over source text.
func NewParser(source string) *Parser {
	p := &Parser{
		lexer: NewLexer(source),
		rep:   contract.ReplacementMap{},
	}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

// Parse runs the parser to completion, returning the accumulated
// replacement map and protected-region list, or the first ParseError
// encountered.
func Parse(source string) (contract.ReplacementMap, []contract.ProtectedRegionSpec, error) {
	p := NewParser(source)
	for p.current.Type != TokenEOF {
		if err := p.parseStatement(); err != nil {
			return nil, nil, err
		}
	}
	return p.rep, p.protected, nil
}

func (p *Parser) errAt(tok Token, format string, args ...any) error {
	return &ParseError{Line: tok.Line, Column: tok.Column, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) parseStatement() error {
	if p.current.Type != TokenIdent {
		return p.errAt(p.current, "expected statement, got %q", p.current.Value)
	}
	keyword := strings.ToUpper(p.current.Value)

	if p.peek.Type != TokenLParen {
		return p.errAt(p.peek, "expected '(' after %s, got %q", keyword, p.peek.Value)
	}
	p.advance() // consume ident
	p.advance() // consume '('

	switch keyword {
	case "REPLACE":
		return p.parseReplace()
	case "DEL":
		return p.parseDel()
	case "CLEAR":
		return p.parseClear()
	case "PROTECT":
		return p.parseProtect()
	case "PROTECT_CONTENT":
		return p.parseProtectContent()
	default:
		return p.errAt(p.current, "unknown statement %q", keyword)
	}
}

// parseArgs consumes zero or more `KEY "value"` pairs separated by
// commas, up to the closing paren, validating each key against
// allowedKeys.
func (p *Parser) parseArgs(allowedKeys []string) (map[string]string, error) {
	kwargs := map[string]string{}
	first := true

	for p.current.Type != TokenRParen && p.current.Type != TokenEOF {
		if p.current.Type == TokenSemicolon {
			return nil, p.errAt(p.current, "unexpected ';', expected ')'")
		}

		if !first {
			if p.current.Type != TokenComma {
				return nil, p.errAt(p.current, "expected ',' between arguments")
			}
			p.advance()
			if p.current.Type == TokenRParen {
				return nil, p.errAt(p.current, "trailing comma is not allowed")
			}
		}

		if p.current.Type != TokenIdent {
			return nil, p.errAt(p.current, "expected argument key, got %q", p.current.Value)
		}
		key := strings.ToUpper(p.current.Value)
		p.advance()

		if p.current.Type != TokenString {
			return nil, p.errAt(p.current, "expected string value for key %q, got %q", key, p.current.Value)
		}
		value := p.current.Value
		p.advance()

		if !contains(allowedKeys, key) {
			return nil, p.errAt(p.current, "unknown argument key %q", key)
		}
		if _, dup := kwargs[key]; dup {
			return nil, p.errAt(p.current, "duplicate key %q", key)
		}
		kwargs[key] = value
		first = false
	}

	if p.current.Type == TokenEOF {
		return nil, p.errAt(p.current, "unexpected end of file, expected ')'")
	}
	return kwargs, nil
}

func (p *Parser) closeStatement() error {
	if p.current.Type != TokenRParen {
		return p.errAt(p.current, "expected ')'")
	}
	p.advance()
	if p.current.Type != TokenSemicolon {
		return p.errAt(p.current, "expected ';'")
	}
	p.advance()
	return nil
}

func (p *Parser) parseReplace() error {
	kwargs, err := p.parseArgs([]string{"FROM", "TO"})
	if err != nil {
		return err
	}
	from, ok := kwargs["FROM"]
	if !ok {
		return p.errAt(p.current, "missing argument 'FROM' in REPLACE")
	}
	to, ok := kwargs["TO"]
	if !ok {
		return p.errAt(p.current, "missing argument 'TO' in REPLACE")
	}
	if err := p.closeStatement(); err != nil {
		return err
	}
	p.rep[from] = to
	return nil
}

func (p *Parser) parseDel() error {
	kwargs, err := p.parseArgs([]string{"FROM"})
	if err != nil {
		return err
	}
	from, ok := kwargs["FROM"]
	if !ok {
		return p.errAt(p.current, "missing argument 'FROM' in DEL")
	}
	if err := p.closeStatement(); err != nil {
		return err
	}
	p.rep[from] = ""
	return nil
}

func (p *Parser) parseClear() error {
	if _, err := p.parseArgs(nil); err != nil {
		return err
	}
	if err := p.closeStatement(); err != nil {
		return err
	}
	p.rep = contract.ReplacementMap{}
	return nil
}

func (p *Parser) parseProtect() error {
	kwargs, err := p.parseArgs([]string{"START_MARKER", "END_MARKER"})
	if err != nil {
		return err
	}
	start, ok := kwargs["START_MARKER"]
	if !ok {
		return p.errAt(p.current, "missing argument 'START_MARKER' in PROTECT")
	}
	end, ok := kwargs["END_MARKER"]
	if !ok {
		return p.errAt(p.current, "missing argument 'END_MARKER' in PROTECT")
	}
	if err := p.closeStatement(); err != nil {
		return err
	}
	p.protected = append(p.protected, contract.ProtectedRegionSpec{Start: start, End: end})
	return nil
}

func (p *Parser) parseProtectContent() error {
	kwargs, err := p.parseArgs([]string{"CONTENT"})
	if err != nil {
		return err
	}
	content, ok := kwargs["CONTENT"]
	if !ok {
		return p.errAt(p.current, "missing argument 'CONTENT' in PROTECT_CONTENT")
	}
	if err := p.closeStatement(); err != nil {
		return err
	}
	p.protected = append(p.protected, contract.ProtectedRegionSpec{Start: content, End: ""})
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
