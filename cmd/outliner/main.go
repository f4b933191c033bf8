package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alucardeht/outliner/internal/app"
	"github.com/alucardeht/outliner/internal/config"
	"github.com/alucardeht/outliner/internal/logger"
)

const usage = `Usage: outliner <command> [flags] [args]

Commands:
  generate   generate an outline from a project description
  edit       apply a structural edit to an outline file
  parse      show the structure of an outline file
  lint       report structural problems in an outline file
  render     re-serialize an outline, or render it as HTML
  templates  list | show <id> | recommend <description> | validate
  history    list | show <id> | delete <id> | search <query>
  files      list [dir] | search <query> | delete <file>
  presets    list | show <name> | save <name> | delete <name>
  watch      re-check outline files whenever they change

Run "outliner <command> -h" for the flags of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	name string
	run  func(c *cli, args []string) error
}

var commands = []command{
	{"generate", (*cli).generate},
	{"edit", (*cli).edit},
	{"parse", (*cli).parse},
	{"lint", (*cli).lint},
	{"render", (*cli).render},
	{"templates", (*cli).templates},
	{"history", (*cli).history},
	{"files", (*cli).files},
	{"presets", (*cli).presets},
	{"watch", (*cli).watch},
}

type cli struct {
	ctx    context.Context
	cfg    *config.Config
	app    *app.App
	stdout io.Writer
	stderr io.Writer
}

// run executes one command and returns the process exit code: 0 on
// success, including queries that matched nothing, and 1 otherwise.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stderr, usage)
		if len(args) == 0 {
			return 1
		}
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "outliner: unknown command %q\n\n%s", args[0], usage)
		return 1
	}

	cfg := config.Load()
	logger.Init(cfg.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli{ctx: ctx, cfg: cfg, stdout: stdout, stderr: stderr}
	defer c.close()

	if err := cmd.run(c, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "outliner %s: %v\n", cmd.name, err)
		return 1
	}
	return 0
}

// open builds the application on first use, so that commands which only
// read a file never touch the history directory.
func (c *cli) open() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	if err := c.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	a, err := app.New(c.cfg)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

// call runs a registered tool and decodes its JSON result into out.
func (c *cli) call(tool string, input map[string]interface{}, out interface{}) (json.RawMessage, error) {
	a, err := c.open()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	result, err := a.Registry.ExecuteWithTimeout(c.ctx, tool, raw, c.cfg.ToolTimeout)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (c *cli) printJSON(data json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newFlagSet(c *cli, name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: outliner %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
