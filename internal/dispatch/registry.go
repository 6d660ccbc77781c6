// Package dispatch provides the extensible command table of the interpreter.
//
// The Registry maps command names to handlers. Hosts populate it once at
// startup and then feed it script or prompt lines; Dispatch strips comments,
// peels leading modifier keywords, resolves the command word and hands the
// argument tail to the handler. The registry itself knows nothing about
// terms or the global context, so new commands can be registered without
// touching the core.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
)

// Handler executes one command invocation.
type Handler func(ctx context.Context, inv Invocation) error

// Command describes a registered command.
type Command struct {
	Name    string
	Usage   string
	Summary string
	Run     Handler
}

// Invocation is the parsed form of one input line, minus the command word.
// Args holds the tail split at top-level whitespace; Tail is the raw tail
// for commands with their own argument syntax.
type Invocation struct {
	Modifiers Modifiers
	Args      []string
	Tail      string
}

// Registry holds the registered commands for a single host instance.
type Registry struct {
	commands map[string]*Command
	order    []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
	}
}

// Register adds a command. Registration happens at startup; a duplicate name
// is a programming error and panics.
func (r *Registry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; exists {
		panic(fmt.Sprintf("command with name '%s' already registered", cmd.Name))
	}
	slog.Debug("Registering command.", "name", cmd.Name)
	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns all commands in registration order.
func (r *Registry) Commands() []*Command {
	cmds := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name])
	}

	return cmds
}

// Dispatch parses one input line and runs the command it names. Blank lines
// and pure comment lines are no-ops.
func (r *Registry) Dispatch(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rest := stripComment(line)

	word, tail := splitWord(rest)
	if word == "" {
		return nil
	}

	var mods Modifiers
	for word == modPolymorphic || word == modOpaque {
		if word == modPolymorphic {
			mods.Polymorphic = true
		} else {
			mods.Opaque = true
		}

		if tail == "" {
			return fmt.Errorf("modifier %q needs a command to modify", word)
		}

		word, tail = splitWord(tail)
	}

	cmd, ok := r.Lookup(word)
	if !ok {
		return fmt.Errorf("unknown command %q", word)
	}

	return cmd.Run(ctx, Invocation{
		Modifiers: mods,
		Args:      SplitArgs(tail),
		Tail:      tail,
	})
}
