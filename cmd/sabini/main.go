package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/1broseidon/sabini/internal/config"
	"github.com/1broseidon/sabini/internal/daemon"
	"github.com/1broseidon/sabini/internal/ipc"
	"github.com/1broseidon/sabini/internal/logging"
	"github.com/1broseidon/sabini/internal/runtimepath"
	"github.com/1broseidon/sabini/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "cmd":
		os.Exit(runCmd(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "placements":
		os.Exit(runPlacements(os.Args[2:]))
	case "workspaces":
		os.Exit(runWorkspaces(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "preview":
		os.Exit(runPreview(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sabini <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Run the window manager (foreground)")
	fmt.Fprintln(w, "  cmd <name> [arg]    Send a command to the daemon")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  placements          Show window rectangles of the visible workspace")
	fmt.Fprintln(w, "  workspaces          List workspaces and their windows")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  preview             Try layouts interactively in the terminal")
	fmt.Fprintln(w, "  menu                Pick a workspace or layout action with rofi/dmenu")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'sabini <command> --help' for command-specific options.")
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name, usage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: sabini "+usage)
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags returns -1 to continue, otherwise the exit code.
func parseFlags(fs *pflag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	return -1
}

func loadConfig(path string) (*config.LoadResult, string, error) {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return res, path, nil
}

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "daemon [--config PATH] [--display DISPLAY] [--log-level LEVEL]")
	path := fs.StringP("config", "c", "", "Config file path (default: ~/.config/sabini/config.yaml)")
	display := fs.StringP("display", "d", "", "X display to manage (default: $DISPLAY or config display)")
	level := fs.String("log-level", "", "Override log.level from the config")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, configPath, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	if *level != "" {
		cfg.Log.Level = *level
	}

	logger, logLevel, closer, err := logging.Setup(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closer.Close()

	// Runtime paths are keyed by $DISPLAY, so export the one we manage.
	if *display == "" {
		*display = cfg.Display
	}
	if *display != "" {
		os.Setenv("DISPLAY", *display)
	}
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		logger.Error("failed to resolve socket path", "error", err)
		return 1
	}
	lockPath, err := runtimepath.LockPath()
	if err != nil {
		logger.Error("failed to resolve lock path", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := make(chan struct{}, 1)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				select {
				case reload <- struct{}{}:
				default:
				}
			}
		}
	}()

	// An explicit --log-level outlasts config reloads.
	if *level != "" {
		logLevel = nil
	}

	err = daemon.Run(ctx, daemon.Options{
		Config:            cfg,
		ConfigPath:        configPath,
		Display:           *display,
		SocketPath:        socketPath,
		LockPath:          lockPath,
		Logger:            logger,
		LogLevel:          logLevel,
		Reload:            reload,
		ReconcileInterval: 5 * time.Second,
	})
	if err != nil {
		logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func runCmd(args []string) int {
	fs := newFlagSet("cmd", "cmd [--json] <name> [arg]")
	asJSON := fs.Bool("json", false, "Print the resulting placements as JSON")
	// Stop at the command name so negative deltas are not read as flags.
	fs.SetInterspersed(false)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "cmd requires a command name")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().ApplyCommand(fs.Arg(0), fs.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printPlacements(data, *asJSON)
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "status")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("workspace:      %s (%d)\n", status.Workspace, status.WorkspaceIdx)
	fmt.Printf("layout:         %s\n", status.Layout)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	if status.Focused != 0 {
		fmt.Printf("focused:        0x%x\n", status.Focused)
	}
	fmt.Printf("screen:         %dx%d+%d+%d\n", status.Screen.Width, status.Screen.Height, status.Screen.X, status.Screen.Y)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runPlacements(args []string) int {
	fs := newFlagSet("placements", "placements [--json]")
	asJSON := fs.Bool("json", false, "Print as JSON")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().GetPlacements()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printPlacements(data, *asJSON)
}

func printPlacements(data *ipc.PlacementsData, asJSON bool) int {
	if asJSON {
		return printJSON(data)
	}
	fmt.Printf("workspace: %s\n", data.Workspace)
	for _, p := range data.Placements {
		fmt.Printf("  0x%08x  %dx%d+%d+%d\n", p.Window, p.Rect.Width, p.Rect.Height, p.Rect.X, p.Rect.Y)
	}
	if len(data.Hidden) > 0 {
		hidden := make([]string, len(data.Hidden))
		for i, id := range data.Hidden {
			hidden[i] = fmt.Sprintf("0x%x", id)
		}
		fmt.Printf("hidden: %s\n", strings.Join(hidden, " "))
	}
	return 0
}

func runWorkspaces(args []string) int {
	fs := newFlagSet("workspaces", "workspaces [--json]")
	asJSON := fs.Bool("json", false, "Print as JSON")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().GetWorkspaces()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	for _, ws := range data.Workspaces {
		marker := " "
		if ws.Current {
			marker = "*"
		}
		fmt.Printf("%s %d %-10s %-5s windows=%d", marker, ws.Index, ws.Name, ws.Layout.Kind, len(ws.Windows))
		if id, ok := ws.Focused(); ok {
			fmt.Printf(" focus=0x%x", id)
		}
		fmt.Println()
	}
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "reload")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runPreview(args []string) int {
	fs := newFlagSet("preview", "preview [--config PATH]")
	path := fs.StringP("config", "c", "", "Config file path (default: ~/.config/sabini/config.yaml)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	res, configPath, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := tui.Run(res.Config, configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
