// Package repl drives the agent from an interactive prompt.
package repl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

// Prompt is the readline prompt.
const Prompt = "smartmcp> "

// DefaultHistoryLimit is the number of records `history` shows.
const DefaultHistoryLimit = 20

// errExit signals the loop to stop.
var errExit = errors.New("exit")

type commandHandler struct {
	minArgs int
	usage   string
	summary string
	handler func(ctx context.Context, parts []string) error
}

// REPL reads commands and dispatches them to the agent.
type REPL struct {
	agent       *agent.Agent
	out         io.Writer
	historyFile string
	handlers    map[string]commandHandler

	// last holds the most recent discover results so `add` can refer to
	// them by number.
	last []registry.Server
}

// New returns a REPL that writes results to out. historyFile may be empty.
func New(a *agent.Agent, out io.Writer, historyFile string) *REPL {
	r := &REPL{
		agent:       a,
		out:         out,
		historyFile: historyFile,
	}
	r.handlers = r.buildHandlers()
	return r
}

// Run reads lines until exit, EOF or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            Prompt,
		HistoryFile:       r.historyFile,
		AutoComplete:      r.completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            r.out,
	})
	if err != nil {
		return errors.Wrap(err, "creating readline instance")
	}
	defer func() { _ = rl.Close() }()

	fmt.Fprintf(r.out, "%s ready. Type 'help' for commands.\n", agent.Name)

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading input")
		}

		if err := r.Execute(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			logger.Debug("command failed", "line", line, "error", err)
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
	}
}

// Execute runs one input line. It returns an error for unknown commands,
// usage mistakes and failed operations.
func (r *REPL) Execute(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	h, ok := r.handlers[command]
	if !ok {
		return errors.Newf("unknown command: %s. Type 'help' for available commands", command)
	}
	if len(parts) < h.minArgs {
		return errors.New(h.usage)
	}
	return h.handler(ctx, parts)
}

// IsExit reports whether err asks the loop to stop.
func IsExit(err error) bool {
	return errors.Is(err, errExit)
}

func (r *REPL) buildHandlers() map[string]commandHandler {
	exit := commandHandler{minArgs: 1, summary: "Leave the REPL", handler: func(context.Context, []string) error {
		return errExit
	}}
	help := commandHandler{minArgs: 1, summary: "Show this help", handler: func(context.Context, []string) error {
		r.showHelp()
		return nil
	}}

	return map[string]commandHandler{
		"discover": {
			minArgs: 2,
			usage:   "usage: discover <query...>",
			summary: "Search the registry",
			handler: r.handleDiscover,
		},
		"add": {
			minArgs: 3,
			usage:   "usage: add <serverId|#> <name...>",
			summary: "Add a server by id or by discover result number",
			handler: r.handleAdd,
		},
		"list": {
			minArgs: 1,
			summary: "List configured servers",
			handler: r.handleList,
		},
		"history": {
			minArgs: 1,
			usage:   "usage: history [limit]",
			summary: "Show calls recorded in this session",
			handler: r.handleHistory,
		},
		"help": help,
		"?":    help,
		"exit": exit,
		"quit": exit,
	}
}

func (r *REPL) completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("discover"),
		readline.PcItem("add"),
		readline.PcItem("list"),
		readline.PcItem("history"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func (r *REPL) showHelp() {
	fmt.Fprintln(r.out, "Available commands:")
	for _, name := range []string{"discover", "add", "list", "history", "help", "exit"} {
		h := r.handlers[name]
		usage := strings.TrimPrefix(h.usage, "usage: ")
		if usage == "" {
			usage = name
		}
		fmt.Fprintf(r.out, "  %-30s %s\n", usage, h.summary)
	}
}

func (r *REPL) handleDiscover(ctx context.Context, parts []string) error {
	query := strings.Join(parts[1:], " ")

	out, err := r.agent.Discover(ctx, agent.DiscoverInput{Query: query})
	if err != nil {
		return err
	}
	if out.Unavailable != nil {
		fmt.Fprintf(r.out, "Registry unavailable: %s\n", out.Unavailable.Reason)
		return nil
	}

	r.last = out.Servers
	cli.RenderServers(r.out, out.Servers)
	return nil
}

func (r *REPL) handleAdd(ctx context.Context, parts []string) error {
	serverID := parts[1]
	if n, err := strconv.Atoi(strings.TrimPrefix(serverID, "#")); err == nil {
		if n < 1 || n > len(r.last) {
			return errors.Newf("no discover result #%d", n)
		}
		serverID = r.last[n-1].QualifiedName
	}

	out, err := r.agent.Add(ctx, agent.AddInput{
		Name:     strings.Join(parts[2:], " "),
		ServerID: serverID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, out.Message)
	return nil
}

func (r *REPL) handleList(ctx context.Context, _ []string) error {
	out, err := r.agent.List(ctx)
	if err != nil {
		return err
	}
	cli.RenderListed(r.out, out.Servers, r.agent.Store().Path())
	return nil
}

func (r *REPL) handleHistory(_ context.Context, parts []string) error {
	mem := r.agent.Memory()
	if mem == nil {
		fmt.Fprintln(r.out, "History is disabled.")
		return nil
	}

	limit := DefaultHistoryLimit
	if len(parts) > 1 {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			return errors.New(r.handlers["history"].usage)
		}
		limit = n
	}

	records, err := mem.List(r.agent.Thread(), limit)
	if err != nil {
		return err
	}
	cli.RenderHistory(r.out, records)
	return nil
}
