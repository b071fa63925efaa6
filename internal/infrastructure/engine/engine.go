package engine

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/doeshing/jarvish/internal/domain"
)

// Engine turns one input line into a completed CommandResult: tokenize,
// expand, parse, dispatch builtins, run external pipelines.
type Engine struct {
	builtins   *Builtins
	classifier *Classifier
	log        *zap.Logger
}

// New wires the engine.
func New(builtins *Builtins, classifier *Classifier, log *zap.Logger) *Engine {
	return &Engine{builtins: builtins, classifier: classifier, log: log}
}

// Builtins exposes the builtin set (the REPL consults the alias table).
func (e *Engine) Builtins() *Builtins { return e.builtins }

// Classifier exposes the input classifier.
func (e *Engine) Classifier() *Classifier { return e.classifier }

// TryBuiltin runs the line as a builtin when its leading word is a builtin
// name. The gate checks the name before any tokenization so a parse error
// on prose can never shadow the AI route: non-builtin leading words return
// ok=false untouched.
//
// Lines containing pipe, redirect, or connector operators are also
// declined here and handled by Execute, which knows how to feed builtin
// output into a pipeline.
// A non-nil error is a parse error on a builtin line: reported to the
// user, handled (ok is true), but never recorded.
func (e *Engine) TryBuiltin(line string) (domain.CommandResult, bool, error) {
	if line == "" {
		return domain.Success(""), true, nil
	}
	if !e.builtins.IsBuiltin(firstWord(line)) {
		return domain.CommandResult{}, false, nil
	}

	tokens, err := Tokenize(line)
	if err != nil {
		err = fmt.Errorf("parse error: %v", err)
		fmt.Fprintf(os.Stderr, "jarvish: %v\n", err)
		return domain.CommandResult{ExitCode: 2}, true, err
	}
	if len(tokens) == 0 {
		return domain.Success(""), true, nil
	}
	for _, t := range tokens {
		if isAnyOperator(t) {
			return domain.CommandResult{}, false, nil
		}
	}

	args := make([]string, 0, len(tokens)-1)
	for _, t := range tokens[1:] {
		args = append(args, t.Text)
	}
	res, ok := e.builtins.Dispatch(tokens[0].Text, args)
	if !ok {
		return domain.CommandResult{}, false, nil
	}
	return e.emit(res), true, nil
}

// Execute parses the line and runs it as a command list. A non-nil error
// is a parse error: it has been reported to the user and the line must not
// be recorded.
func (e *Engine) Execute(ctx context.Context, line string) (domain.CommandResult, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		err = fmt.Errorf("parse error: %v", err)
		fmt.Fprintf(os.Stderr, "jarvish: %v\n", err)
		return domain.CommandResult{}, err
	}
	if len(tokens) == 0 {
		return domain.Success(""), nil
	}

	list, err := ParseCommandList(tokens)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jarvish: %v\n", err)
		return domain.CommandResult{}, err
	}

	e.log.Debug("parsed command list",
		zap.String("first", list.First.Commands[0].Name),
		zap.Int("pipelines", len(list.Rest)+1))

	return e.runList(ctx, list), nil
}

// runList executes pipelines joined by `&&`, `||`, `;` with short-circuit
// semantics. The list's exit code is the last executed pipeline's.
func (e *Engine) runList(ctx context.Context, list domain.CommandList) domain.CommandResult {
	res := e.runOnePipeline(ctx, list.First)
	if res.Action == domain.ActionExit {
		return res
	}

	for _, chained := range list.Rest {
		run := false
		switch chained.Connector {
		case domain.ConnectorAnd:
			run = res.ExitCode == 0
		case domain.ConnectorOr:
			run = res.ExitCode != 0
		case domain.ConnectorSemi:
			run = true
		}
		if !run {
			continue
		}

		next := e.runOnePipeline(ctx, chained.Pipeline)
		res.Stdout += next.Stdout
		res.Stderr += next.Stderr
		res.ExitCode = next.ExitCode
		if next.Action == domain.ActionExit {
			res.Action = domain.ActionExit
			return res
		}
	}
	return res
}

// runOnePipeline applies the builtin optimization paths before handing the
// pipeline to the external executor: a lone builtin runs in-process, and a
// builtin at the head of a pipeline is replaced by `printf` of its output
// so the rest of the pipeline consumes it normally.
func (e *Engine) runOnePipeline(ctx context.Context, p domain.Pipeline) domain.CommandResult {
	if len(p.Commands) == 1 && len(p.Commands[0].Redirects) == 0 {
		sc := p.Commands[0]
		if res, ok := e.builtins.Dispatch(sc.Name, sc.Args); ok {
			return e.emit(res)
		}
	}

	if len(p.Commands) > 1 {
		head := p.Commands[0]
		if res, ok := e.builtins.Dispatch(head.Name, head.Args); ok {
			if res.ExitCode != 0 {
				return e.emit(res)
			}
			rewritten := domain.Pipeline{Commands: append([]domain.SimpleCommand{{
				Name: "printf",
				Args: []string{"%s", res.Stdout},
			}}, p.Commands[1:]...)}
			return e.runPipelineExec(ctx, rewritten)
		}
	}

	return e.runPipelineExec(ctx, p)
}

// emit prints a builtin's (or synthetic error's) buffered output to the
// terminal so results reach the user through one path regardless of how
// the command ran. External commands were already streamed live by the tee
// readers and do not pass through here.
func (e *Engine) emit(res domain.CommandResult) domain.CommandResult {
	if res.Stdout != "" {
		fmt.Fprint(os.Stdout, res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprint(os.Stderr, res.Stderr)
	}
	return res
}
