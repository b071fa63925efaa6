package engine

import (
	"fmt"

	"github.com/doeshing/jarvish/internal/domain"
)

// isOperator reports whether a token is the given unquoted operator.
func isOperator(t Token, op string) bool {
	return !t.Quoted && t.Text == op
}

func isAnyOperator(t Token) bool {
	if t.Quoted {
		return false
	}
	switch t.Text {
	case "|", ">", ">>", "<", "&&", "||", ";":
		return true
	}
	return false
}

// ParseCommandList splits tokens on `&&`, `||`, `;` and parses each segment
// as a pipeline.
func ParseCommandList(tokens []Token) (domain.CommandList, error) {
	if len(tokens) == 0 {
		return domain.CommandList{}, fmt.Errorf("empty command")
	}

	var segments [][]Token
	var connectors []domain.Connector
	var current []Token

	for _, t := range tokens {
		var conn domain.Connector
		switch {
		case isOperator(t, "&&"):
			conn = domain.ConnectorAnd
		case isOperator(t, "||"):
			conn = domain.ConnectorOr
		case isOperator(t, ";"):
			conn = domain.ConnectorSemi
		default:
			current = append(current, t)
			continue
		}
		if len(current) == 0 {
			return domain.CommandList{}, fmt.Errorf("syntax error: unexpected token %q", t.Text)
		}
		segments = append(segments, current)
		connectors = append(connectors, conn)
		current = nil
	}
	if len(current) == 0 {
		return domain.CommandList{}, fmt.Errorf("syntax error: unexpected end of command after connector")
	}
	segments = append(segments, current)

	first, err := ParsePipeline(segments[0])
	if err != nil {
		return domain.CommandList{}, err
	}
	list := domain.CommandList{First: first}
	for i, conn := range connectors {
		p, err := ParsePipeline(segments[i+1])
		if err != nil {
			return domain.CommandList{}, err
		}
		list.Rest = append(list.Rest, domain.Chained{Connector: conn, Pipeline: p})
	}
	return list, nil
}

// ParsePipeline splits tokens on the bare `|` operator and extracts
// redirections within each segment.
func ParsePipeline(tokens []Token) (domain.Pipeline, error) {
	if len(tokens) == 0 {
		return domain.Pipeline{}, fmt.Errorf("empty command")
	}

	var segments [][]Token
	start := 0
	for i, t := range tokens {
		if isOperator(t, "|") {
			if i == start {
				return domain.Pipeline{}, fmt.Errorf("syntax error: unexpected token '|'")
			}
			segments = append(segments, tokens[start:i])
			start = i + 1
		}
	}
	if start >= len(tokens) {
		return domain.Pipeline{}, fmt.Errorf("syntax error: unexpected end of command after '|'")
	}
	segments = append(segments, tokens[start:])

	var pipeline domain.Pipeline
	for _, seg := range segments {
		cmd, err := parseSimpleCommand(seg)
		if err != nil {
			return domain.Pipeline{}, err
		}
		pipeline.Commands = append(pipeline.Commands, cmd)
	}
	return pipeline, nil
}

// parseSimpleCommand pulls `>`, `>>`, `<` (each consuming the next token as
// its target) out of a segment; the rest becomes name and arguments.
func parseSimpleCommand(tokens []Token) (domain.SimpleCommand, error) {
	var words []string
	var redirects []domain.Redirect

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		var kind domain.RedirectKind
		switch {
		case isOperator(t, ">>"):
			kind = domain.RedirectStdoutAppend
		case isOperator(t, ">"):
			kind = domain.RedirectStdoutOverwrite
		case isOperator(t, "<"):
			kind = domain.RedirectStdinFrom
		default:
			words = append(words, t.Text)
			continue
		}
		if i+1 >= len(tokens) || isAnyOperator(tokens[i+1]) {
			return domain.SimpleCommand{}, fmt.Errorf("syntax error: expected filename after %q", t.Text)
		}
		i++
		redirects = append(redirects, domain.Redirect{Kind: kind, Target: tokens[i].Text})
	}

	if len(words) == 0 {
		return domain.SimpleCommand{}, fmt.Errorf("syntax error: missing command")
	}
	return domain.SimpleCommand{
		Name:      words[0],
		Args:      words[1:],
		Redirects: redirects,
	}, nil
}
