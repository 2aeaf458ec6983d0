// Command hotspotctl runs one hotspot command against a router and exits.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/micro-ha/hotspot-monitor/internal/hotspot"
	"github.com/micro-ha/hotspot-monitor/internal/logging"
	"github.com/micro-ha/hotspot-monitor/internal/model"
	"github.com/micro-ha/hotspot-monitor/internal/normalize"
	"github.com/micro-ha/hotspot-monitor/internal/routeros"
)

const usage = `usage: hotspotctl [flags] <command> [args]

commands:
  system                          show router health
  active                          list connected hotspot clients
  users                           list hotspot accounts
  profiles                        list user profiles
  kick <session-id>               disconnect a client
  add <name> <password> [profile] create an account
  remove <id>                     delete an account

flags:
`

// env is the process environment the command reads from.
type env struct {
	stdout    io.Writer
	stderr    io.Writer
	getenv    func(string) string
	dialer    routeros.Dialer
	readPass  func() (string, error)
	logWriter io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := env{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		getenv:    os.Getenv,
		readPass:  readTerminalPassword,
		logWriter: os.Stderr,
	}
	os.Exit(run(ctx, os.Args[1:], e))
}

func run(ctx context.Context, args []string, e env) int {
	fs := flag.NewFlagSet("hotspotctl", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprint(e.stderr, usage)
		fs.PrintDefaults()
	}
	host := fs.String("host", "192.168.88.1", "router address")
	port := fs.Int("port", 0, "router port (default depends on transport and TLS)")
	user := fs.String("user", "admin", "router username")
	transport := fs.String("transport", "api", "api or rest")
	useTLS := fs.Bool("tls", false, "use TLS (api-ssl or https)")
	insecure := fs.Bool("insecure", false, "skip TLS certificate verification")
	timeout := fs.Duration("timeout", 10*time.Second, "per-command timeout")
	verbose := fs.Bool("v", false, "debug logging to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	if err := checkArgs(fs.Args()); err != nil {
		fmt.Fprintf(e.stderr, "%s: %v\n", fs.Arg(0), err)
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logWriter := e.logWriter
	if logWriter == nil {
		logWriter = io.Discard
	}
	logger := logging.NewWithWriter(logWriter, level)

	password := e.getenv("HOTSPOT_PASSWORD")
	if password == "" {
		var err error
		password, err = e.readPass()
		if err != nil {
			fmt.Fprintf(e.stderr, "read password: %v\n", err)
			return 1
		}
	}

	dialer := e.dialer
	if dialer == nil {
		dialer = routeros.NewDialer(&http.Client{Timeout: *timeout}, logger)
	}
	manager := routeros.NewManager(dialer, logger, *timeout)
	cfg := model.RouterConfig{
		Host:      *host,
		Port:      *port,
		Username:  *user,
		Password:  password,
		Transport: model.ParseTransport(*transport),
		SSL:       *useTLS,
		VerifyTLS: !*insecure,
	}
	if _, err := manager.Connect(ctx, cfg); err != nil {
		fmt.Fprintf(e.stderr, "connect: %v\n", err)
		return 1
	}
	defer manager.Disconnect(context.Background())

	facade := hotspot.New(manager, logger)
	if err := execute(ctx, facade, fs.Args(), e.stdout); err != nil {
		fmt.Fprintf(e.stderr, "%s: %v\n", fs.Arg(0), err)
		var usageErr usageError
		if errors.As(err, &usageErr) {
			return 2
		}
		return 1
	}
	return 0
}

type usageError string

func (u usageError) Error() string { return string(u) }

// arity is the accepted argument count after the command name.
type arity struct {
	min, max int
	usage    string
}

var commands = map[string]arity{
	"system":   {0, 0, "system"},
	"active":   {0, 0, "active"},
	"users":    {0, 0, "users"},
	"profiles": {0, 0, "profiles"},
	"kick":     {1, 1, "kick <session-id>"},
	"add":      {2, 3, "add <name> <password> [profile]"},
	"remove":   {1, 1, "remove <id>"},
}

// checkArgs rejects unknown commands and wrong argument counts before any
// password prompt or network access.
func checkArgs(args []string) error {
	want, ok := commands[args[0]]
	if !ok {
		return usageError(fmt.Sprintf("unknown command %q", args[0]))
	}
	if n := len(args) - 1; n < want.min || n > want.max {
		return usageError("usage: " + want.usage)
	}
	return nil
}

func execute(ctx context.Context, svc *hotspot.Service, args []string, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	switch args[0] {
	case "system":
		info, err := svc.GetSystemInfo(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "identity\t%s\n", info.Identity)
		fmt.Fprintf(tw, "board\t%s (%s)\n", info.BoardName, info.Architecture)
		fmt.Fprintf(tw, "version\t%s\n", info.Version)
		fmt.Fprintf(tw, "uptime\t%s\n", normalize.FormatUptime(info.Uptime))
		fmt.Fprintf(tw, "cpu\t%d x %s MHz, %d%% load\n", info.CPUCount, info.CPUFrequency, info.CPULoad)
		fmt.Fprintf(tw, "memory\t%s of %s used (%s)\n",
			normalize.FormatBytes(info.TotalMemory-info.FreeMemory), normalize.FormatBytes(info.TotalMemory), normalize.MemoryUsage(info))
		fmt.Fprintf(tw, "storage\t%s free of %s\n", normalize.FormatBytes(info.FreeHDDSpace), normalize.FormatBytes(info.TotalHDDSpace))
	case "active":
		users, err := svc.ListActiveUsers(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tUSER\tADDRESS\tMAC\tUPTIME\tIN\tOUT")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", u.SessionID, u.Name, u.Address, u.MACAddress,
				normalize.FormatUptime(u.Uptime), normalize.FormatBytes(u.BytesIn), normalize.FormatBytes(u.BytesOut))
		}
	case "users":
		users, err := svc.ListAllUsers(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME\tPROFILE")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Name, u.DefaultProfile)
		}
	case "profiles":
		profiles, err := svc.ListProfiles(ctx)
		if err != nil {
			return err
		}
		for _, name := range profiles {
			fmt.Fprintln(tw, name)
		}
	case "kick":
		if err := svc.LogoutUser(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(tw, "disconnected %s\n", args[1])
	case "add":
		in := model.CreateUserInput{Username: args[1], Password: args[2]}
		if len(args) == 4 {
			in.Profile = args[3]
		}
		id, err := svc.CreateUser(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "created %s %s\n", in.Username, id)
	case "remove":
		if err := svc.DeleteUser(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(tw, "removed %s\n", args[1])
	default:
		return usageError(fmt.Sprintf("unknown command %q", args[0]))
	}
	return nil
}

// readTerminalPassword prompts on stderr without echo, or reads one line
// when stdin is not a terminal.
func readTerminalPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
