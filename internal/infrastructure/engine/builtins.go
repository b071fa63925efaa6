package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/doeshing/jarvish/internal/domain"
	"github.com/doeshing/jarvish/internal/ports"
)

var builtinNames = map[string]struct{}{
	"cd": {}, "cwd": {}, "exit": {}, "export": {}, "unset": {},
	"alias": {}, "unalias": {}, "history": {}, "help": {}, "which": {},
	"type": {}, "true": {}, "false": {}, "source": {},
}

// Builtins executes the fixed builtin set in the shell's own address space.
// It owns the alias table and holds the references builtins need to mutate
// shell state: the config loader for `source` and the history index for
// `history`.
//
// Builtins never write to the terminal themselves; their text goes into the
// result and flows through the same capture path as external commands.
type Builtins struct {
	aliases map[string]string
	loader  ports.ConfigProvider
	history ports.HistoryRepository
	log     *zap.Logger

	// onReload is invoked by `source` with the freshly loaded config.
	onReload func(domain.Config)
}

// NewBuiltins wires the builtin set. history may be nil when the black box
// failed to open; `history` then reports itself unavailable.
func NewBuiltins(loader ports.ConfigProvider, history ports.HistoryRepository, log *zap.Logger) *Builtins {
	return &Builtins{
		aliases: map[string]string{},
		loader:  loader,
		history: history,
		log:     log,
	}
}

// SetReloadHook registers the callback `source` fires after a reload.
func (b *Builtins) SetReloadHook(fn func(domain.Config)) { b.onReload = fn }

// SetAliases replaces the alias table (startup and `source`).
func (b *Builtins) SetAliases(aliases map[string]string) {
	b.aliases = map[string]string{}
	for k, v := range aliases {
		b.aliases[k] = v
	}
}

// Aliases exposes the live alias table for alias expansion.
func (b *Builtins) Aliases() map[string]string { return b.aliases }

// IsBuiltin is the cheap name check used by the fast-path gate.
func (b *Builtins) IsBuiltin(name string) bool {
	_, ok := builtinNames[name]
	return ok
}

// Dispatch runs a builtin by name. The second return is false for
// non-builtins, letting the caller fall through to external execution.
func (b *Builtins) Dispatch(name string, args []string) (domain.CommandResult, bool) {
	switch name {
	case "cd":
		return b.cd(args), true
	case "cwd":
		return b.cwd(), true
	case "exit":
		return b.exit(args), true
	case "export":
		return b.export(args), true
	case "unset":
		return b.unset(args), true
	case "alias":
		return b.alias(args), true
	case "unalias":
		return b.unalias(args), true
	case "history":
		return b.historyCmd(args), true
	case "help":
		return b.help(), true
	case "which":
		return b.which(args), true
	case "type":
		return b.typeCmd(args), true
	case "true":
		return domain.Success(""), true
	case "false":
		return domain.Failure("", 1), true
	case "source":
		return b.source(), true
	}
	return domain.CommandResult{}, false
}

func (b *Builtins) cd(args []string) domain.CommandResult {
	var target string
	if len(args) > 0 {
		target = args[0]
	} else {
		target = os.Getenv("HOME")
		if target == "" {
			return domain.Failure("jarvish: cd: HOME not set\n", 1)
		}
	}

	if err := os.Chdir(target); err != nil {
		return domain.Failure(fmt.Sprintf("jarvish: cd: %s: %v\n", target, err), 1)
	}
	if abs, err := os.Getwd(); err == nil {
		os.Setenv("PWD", abs)
	}
	return domain.Success("")
}

func (b *Builtins) cwd() domain.CommandResult {
	dir, err := os.Getwd()
	if err != nil {
		return domain.Failure(fmt.Sprintf("jarvish: cwd: %v\n", err), 1)
	}
	return domain.Success(dir + "\n")
}

func (b *Builtins) exit(args []string) domain.CommandResult {
	if len(args) == 0 {
		return domain.Exit(0)
	}
	code, err := strconv.Atoi(args[0])
	if err != nil {
		res := domain.Exit(2)
		res.Stderr = fmt.Sprintf("jarvish: exit: %s: numeric argument required\n", args[0])
		return res
	}
	if code < 0 {
		code = 0
	}
	if code > 255 {
		code = 255
	}
	return domain.Exit(code)
}

func (b *Builtins) export(args []string) domain.CommandResult {
	if len(args) == 0 {
		env := os.Environ()
		sort.Strings(env)
		return domain.Success(strings.Join(env, "\n") + "\n")
	}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return domain.Failure(fmt.Sprintf("jarvish: export: %s: not a valid assignment\n", arg), 1)
		}
		os.Setenv(key, ExpandValue(value))
	}
	return domain.Success("")
}

func (b *Builtins) unset(args []string) domain.CommandResult {
	if len(args) == 0 {
		return domain.Failure("jarvish: unset: variable name required\n", 1)
	}
	for _, name := range args {
		os.Unsetenv(name)
	}
	return domain.Success("")
}

func (b *Builtins) alias(args []string) domain.CommandResult {
	if len(args) == 0 {
		names := make([]string, 0, len(b.aliases))
		for name := range b.aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		var out strings.Builder
		for _, name := range names {
			fmt.Fprintf(&out, "alias %s='%s'\n", name, b.aliases[name])
		}
		return domain.Success(out.String())
	}

	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			expansion, found := b.aliases[arg]
			if !found {
				return domain.Failure(fmt.Sprintf("jarvish: alias: %s: not found\n", arg), 1)
			}
			return domain.Success(fmt.Sprintf("alias %s='%s'\n", arg, expansion))
		}
		if name == "" {
			return domain.Failure(fmt.Sprintf("jarvish: alias: %s: invalid alias name\n", arg), 1)
		}
		b.aliases[name] = value
	}
	return domain.Success("")
}

func (b *Builtins) unalias(args []string) domain.CommandResult {
	if len(args) == 0 {
		return domain.Failure("jarvish: unalias: usage: unalias name [name ...]\n", 1)
	}
	for _, name := range args {
		if _, ok := b.aliases[name]; !ok {
			return domain.Failure(fmt.Sprintf("jarvish: unalias: %s: not found\n", name), 1)
		}
		delete(b.aliases, name)
	}
	return domain.Success("")
}

func (b *Builtins) historyCmd(args []string) domain.CommandResult {
	if b.history == nil {
		return domain.Failure("jarvish: history: black box unavailable\n", 1)
	}

	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return domain.Failure(fmt.Sprintf("jarvish: history: %s: numeric argument required\n", args[0]), 1)
		}
		limit = n
	}

	records, err := b.history.Recent(limit)
	if err != nil {
		return domain.Failure(fmt.Sprintf("jarvish: history: %v\n", err), 1)
	}

	// Recent returns newest first; display oldest first like a shell.
	var out strings.Builder
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		marker := " "
		if rec.ExitCode != 0 {
			marker = "!"
		}
		fmt.Fprintf(&out, "%5d %s %s\n", rec.ID, marker, rec.Command)
	}
	return domain.Success(out.String())
}

func (b *Builtins) help() domain.CommandResult {
	names := make([]string, 0, len(builtinNames))
	for name := range builtinNames {
		names = append(names, name)
	}
	sort.Strings(names)

	var out strings.Builder
	out.WriteString("jarvish — a shell with Jarvis inside.\n\n")
	out.WriteString("Type a command to run it, or plain English to ask Jarvis.\n")
	out.WriteString("Builtins: " + strings.Join(names, ", ") + "\n")
	return domain.Success(out.String())
}

func (b *Builtins) which(args []string) domain.CommandResult {
	if len(args) == 0 {
		return domain.Failure("jarvish: which: usage: which name [name ...]\n", 1)
	}
	var out strings.Builder
	exitCode := 0
	for _, name := range args {
		switch {
		case b.IsBuiltin(name):
			fmt.Fprintf(&out, "%s: shell builtin\n", name)
		default:
			path, err := exec.LookPath(name)
			if err != nil {
				exitCode = 1
				continue
			}
			fmt.Fprintln(&out, path)
		}
	}
	return domain.CommandResult{Stdout: out.String(), ExitCode: exitCode}
}

func (b *Builtins) typeCmd(args []string) domain.CommandResult {
	if len(args) == 0 {
		return domain.Failure("jarvish: type: usage: type name [name ...]\n", 1)
	}
	var out strings.Builder
	var errOut strings.Builder
	exitCode := 0
	for _, name := range args {
		switch {
		case b.aliases[name] != "":
			fmt.Fprintf(&out, "%s is aliased to `%s'\n", name, b.aliases[name])
		case b.IsBuiltin(name):
			fmt.Fprintf(&out, "%s is a shell builtin\n", name)
		default:
			path, err := exec.LookPath(name)
			if err != nil {
				fmt.Fprintf(&errOut, "jarvish: type: %s: not found\n", name)
				exitCode = 1
				continue
			}
			fmt.Fprintf(&out, "%s is %s\n", name, path)
		}
	}
	return domain.CommandResult{Stdout: out.String(), Stderr: errOut.String(), ExitCode: exitCode}
}

func (b *Builtins) source() domain.CommandResult {
	cfg, err := b.loader.Load()
	if err != nil {
		return domain.Failure(fmt.Sprintf("jarvish: source: %v\n", err), 1)
	}
	b.SetAliases(cfg.Alias)
	for key, value := range cfg.Export {
		os.Setenv(key, ExpandValue(value))
	}
	if b.onReload != nil {
		b.onReload(cfg)
	}
	b.log.Info("configuration reloaded", zap.String("path", b.loader.Path()))
	return domain.Success(fmt.Sprintf("configuration reloaded from %s\n", filepath.Clean(b.loader.Path())))
}
