package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-admin-client/adminapi"
	"github.com/jrsteele09/go-admin-client/apiclient"
	"github.com/jrsteele09/go-admin-client/credstore"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const usage = `Usage: adminctl [flags] <command> [args]

Commands:
  login                          log in and store the credential pair
  logout                         revoke the session and clear stored credentials
  status                         show the stored session
  request <METHOD> <PATH> [JSON] send an authenticated request
  restaurants [offset] [limit]   list restaurants
  restaurant get <id>
  restaurant create <name> [email] [city]
  restaurant update <id> <JSON>  replace a restaurant's fields
  restaurant activate|deactivate <id>
  restaurant delete <id>
  restaurant share <id> <email>  share owner credentials
  coupons                        list coupons
  coupon create <code> <percent> <valid-for> [restaurant-id]
  bugs [status]                  list bug reports
  bug status <id> <status>       open, in_progress, resolved or rejected
  locations [query]              look up locations
  banners                        list banners
  banner upload <file> [name]    upload a banner image
  banner delete <id>

Flags:
`

func main() {
	configFile := pflag.StringP("config", "c", "", "YAML config file (overrides CONFIG_FILE)")
	id := pflag.StringP("id", "u", "", "account id for login (default: ADMIN_ID)")
	password := pflag.StringP("password", "P", "", "password for login (default: ADMIN_PASSWORD)")
	quiet := pflag.BoolP("quiet", "q", false, "do not print the banner")
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	c, err := loadConfig(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	configureLogging(c)
	if !*quiet {
		displayAppname(c.GetAppName())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c, pflag.Args(), *id, *password); err != nil {
		var authErr *apiclient.AuthError
		if errors.As(err, &authErr) {
			log.Error().Err(err).Msg("Authentication required, run adminctl login")
		} else {
			log.Error().Err(err).Msg("Command failed")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, c config.Config, args []string, id, password string) error {
	store := credstore.NewFileStore(c.GetCredentialsFile())
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	client, err := apiclient.NewFromConfig(ctx, c, store,
		apiclient.WithLogger(log.Logger),
		apiclient.WithSessionEndHandler(func(reason error) {
			if reason != nil {
				log.Warn().Err(reason).Msg("Session ended")
			}
		}),
	)
	if err != nil {
		return err
	}
	admin := adminapi.New(client)

	command, rest := args[0], args[1:]
	switch command {
	case "login":
		if id == "" {
			id = c.GetAdminID()
		}
		if password == "" {
			password = c.GetAdminPassword()
		}
		tok, err := client.Login(ctx, id, password)
		if err != nil {
			return err
		}
		log.Info().Time("expiry", tok.Expiry).Str("file", store.Path()).Msg("Logged in")
		return nil

	case "logout":
		if err := client.SignOut(ctx); err != nil {
			log.Warn().Err(err).Msg("Server logout failed, local credentials cleared")
		}
		return nil

	case "status":
		tok, err := client.Token()
		if err != nil {
			return printJSON(map[string]any{"authenticated": false})
		}
		return printJSON(map[string]any{
			"authenticated":     true,
			"token_type":        tok.Type(),
			"expiry":            tok.Expiry,
			"expired":           !tok.Expiry.IsZero() && tok.Expiry.Before(time.Now()),
			"has_refresh_token": tok.RefreshToken != "",
		})

	case "request":
		if len(rest) < 2 {
			return errors.New("request needs a method and a path")
		}
		var body any
		if len(rest) > 2 {
			body = json.RawMessage(rest[2])
		}
		resp, err := client.Request(ctx, strings.ToUpper(rest[0]), rest[1], body)
		if err != nil {
			return err
		}
		fmt.Println(string(resp.Body))
		return nil

	case "restaurants":
		offset, limit := intArg(rest, 0), intArg(rest, 1)
		return printResult[[]models.Restaurant](admin.Restaurants.List(ctx, offset, limit))

	case "restaurant":
		return restaurantCommand(ctx, admin, rest)

	case "coupons":
		return printResult[[]models.Coupon](admin.Coupons.List(ctx))

	case "coupon":
		return couponCommand(ctx, admin, rest)

	case "bug":
		if len(rest) != 3 || rest[0] != "status" {
			return errors.New("usage: bug status <id> <status>")
		}
		return printResult[models.BugReport](admin.BugReports.UpdateStatus(ctx, rest[1], models.BugStatus(rest[2])))

	case "bugs":
		var status models.BugStatus
		if len(rest) > 0 {
			status = models.BugStatus(rest[0])
		}
		return printResult[[]models.BugReport](admin.BugReports.List(ctx, status))

	case "locations":
		return printResult[[]models.Location](admin.Locations.Lookup(ctx, strings.Join(rest, " ")))

	case "banners":
		return printResult[[]models.Banner](admin.Banners.List(ctx))

	case "banner":
		return bannerCommand(ctx, admin, rest)
	}
	return fmt.Errorf("unknown command %q", command)
}

func intArg(args []string, i int) int {
	if i >= len(args) {
		return 0
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0
	}
	return v
}

func printResult[T any](v T, err error) error {
	if err != nil {
		return err
	}
	return printJSON(v)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.New(), nil
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return c, nil
}

func configureLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// displayAppname writes the banner to stderr so command output stays parseable
func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(os.Stderr, myFigure.String())
}
