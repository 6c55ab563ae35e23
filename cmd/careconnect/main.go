// Command careconnect is a small CLI over the careconnect client library:
// session management (login, register, logout, whoami) and raw authenticated
// API requests with optional JMESPath projection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/spf13/pflag"

	"github.com/careconnect/careconnect-go/internal/bootstrap"
	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/session"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	App    *bootstrap.App
}

const commandTimeout = 2 * time.Minute

func main() {
	logger := bootstrap.InitLogger(slog.LevelInfo)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2)
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	logger = bootstrap.InitLogger(cfg.SlogLevel())

	app, err := bootstrap.BuildApp(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmdCtx := &commandContext{Ctx: ctx, Logger: logger, App: app}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.Error("command failed", "command", cmdName, "error", runErr)
		os.Exit(1)
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate and persist the session",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored session",
			run:         runLogout,
		},
		"register": {
			name:        "register",
			description: "Create an account and persist the session",
			run:         runRegister,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current session",
			run:         runWhoami,
		},
		"request": {
			name:        "request",
			description: "Perform an authenticated API request",
			run:         runRequest,
		},
	}
}

func printUsage() {
	fmt.Fprintf(os.Stdout, "Usage: careconnect <command> [flags]\n\n")
	fmt.Fprintf(os.Stdout, "Available commands:\n")
	for _, name := range []string{"login", "logout", "register", "whoami", "request"} {
		c := commands()[name]
		fmt.Fprintf(os.Stdout, "  %-12s %s\n", c.name, c.description)
	}
}

func runLogin(cmdCtx *commandContext, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("--email and --password are required")
	}

	if _, err := cmdCtx.App.Session.Init(cmdCtx.Ctx); err != nil {
		return fmt.Errorf("init session: %w", err)
	}

	user, err := cmdCtx.App.Session.Login(cmdCtx.Ctx, *email, *password)
	if err != nil {
		return err
	}

	snap := cmdCtx.App.Session.Current()
	if snap.Demo {
		cmdCtx.Logger.Info("demo session started", "email", user.Email)
	}
	return printJSON(user)
}

func runLogout(cmdCtx *commandContext, args []string) error {
	fs := pflag.NewFlagSet("logout", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := cmdCtx.App.Session.Logout(cmdCtx.Ctx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "logged out")
	return nil
}

func runRegister(cmdCtx *commandContext, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	role := fs.String("role", string(domainauth.RoleCitizen), "account role")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" || *password == "" {
		return fmt.Errorf("--name, --email, and --password are required")
	}
	parsedRole, err := domainauth.ParseRole(*role)
	if err != nil {
		return err
	}

	user, err := cmdCtx.App.Session.Register(cmdCtx.Ctx, *name, *email, *password, parsedRole)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func runWhoami(cmdCtx *commandContext, args []string) error {
	fs := pflag.NewFlagSet("whoami", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := cmdCtx.App.Session.Init(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}
	if snap.State != session.StateAuthenticated {
		fmt.Fprintln(os.Stdout, "not logged in")
		return nil
	}
	return printJSON(struct {
		User *domainauth.UserRecord `json:"user"`
		Demo bool                   `json:"demo"`
	}{snap.User, snap.Demo})
}

func runRequest(cmdCtx *commandContext, args []string) error {
	fs := pflag.NewFlagSet("request", pflag.ContinueOnError)
	method := fs.StringP("method", "X", "GET", "HTTP method")
	data := fs.StringP("data", "d", "", "JSON request body")
	query := fs.StringP("query", "q", "", "JMESPath expression applied to the response data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: careconnect request [flags] <path>")
	}
	path := fs.Arg(0)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body any
	if *data != "" {
		var parsed json.RawMessage
		if err := json.Unmarshal([]byte(*data), &parsed); err != nil {
			return fmt.Errorf("parse --data: %w", err)
		}
		body = parsed
	}

	if *query != "" {
		if _, err := jmespath.Compile(*query); err != nil {
			return fmt.Errorf("compile --query: %w", err)
		}
	}

	if _, err := cmdCtx.App.Session.Init(cmdCtx.Ctx); err != nil {
		return fmt.Errorf("init session: %w", err)
	}

	env, err := cmdCtx.App.Client.Request(cmdCtx.Ctx, strings.ToUpper(*method), path, body)
	if err != nil {
		if env != nil && env.Message != "" {
			return fmt.Errorf("%s (%w)", env.Message, err)
		}
		return err
	}

	if *query != "" {
		var payload any
		if env.HasData() {
			if decodeErr := json.Unmarshal(env.Data, &payload); decodeErr != nil {
				return fmt.Errorf("decode response data: %w", decodeErr)
			}
		}
		result, searchErr := jmespath.Search(*query, payload)
		if searchErr != nil {
			return fmt.Errorf("apply --query: %w", searchErr)
		}
		return printJSON(result)
	}

	return printJSON(env)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
