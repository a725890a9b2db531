package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/avlev/pgtop/internal/config"
	"github.com/avlev/pgtop/internal/db"
	"github.com/avlev/pgtop/internal/model"
	"github.com/avlev/pgtop/internal/output"
	"github.com/avlev/pgtop/internal/query"
	"github.com/avlev/pgtop/internal/stat"
	"github.com/avlev/pgtop/internal/ui"
)

const version = "0.1.0"

// Connection defaults match libpq: local socket directory, standard port.
const (
	defaultHost = "/tmp"
	defaultPort = "5432"
)

const connectTimeout = 5 * time.Second

var (
	flagHost       string
	flagPort       string
	flagUser       string
	flagDBName     string
	flagNoPassword bool
	flagPassword   bool
	jsonOutput     bool
)

func init() {
	f := rootCmd.Flags()

	// -h belongs to --host, so the help flag moves to -? as in psql.
	f.BoolP("help", "?", false, "show this help, then exit")
	f.BoolP("version", "V", false, "output version information, then exit")

	f.StringVarP(&flagHost, "host", "h", "", "database server host or socket directory")
	f.StringVarP(&flagPort, "port", "p", "", "database server port")
	f.StringVarP(&flagUser, "user", "U", "", "database user name")
	f.StringVarP(&flagDBName, "dbname", "d", "", "database name")
	f.BoolVarP(&flagNoPassword, "no-password", "w", false, "never prompt for password")
	f.BoolVarP(&flagPassword, "password", "W", false, "force password prompt")
	f.BoolVar(&jsonOutput, "json", false, "collect every view once and print JSON (for scripting/agent consumption)")
}

var rootCmd = &cobra.Command{
	Use:     "pgtop [OPTION]... [DBNAME [USERNAME]]",
	Short:   "Top-like administrative console for PostgreSQL",
	Version: version,
	Long: `pgtop is a top-like console for observing a running PostgreSQL server.

It shows per-second deltas of the cumulative statistics views together
with host load, CPU usage and backend activity counters. Up to eight
connections can be kept open at once and switched with keys 1-8.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		consoles := buildConsoles(cmd, args)

		if flagPassword && !flagNoPassword {
			for _, c := range consoles {
				if c.ConnUsed && c.Cfg.Password == "" {
					c.Cfg.Password = promptPassword("Password: ")
					break
				}
			}
		}

		openConnections(consoles)

		// JSON mode: explicit flag or non-TTY stdout
		if jsonOutput || !term.IsTerminal(int(os.Stdout.Fd())) {
			runJSONMode(consoles)
			return
		}

		sampler, err := stat.NewSampler()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		config.InitTheme()

		m := ui.NewModel(consoles, 0, sampler)
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for _, c := range consoles {
			if closer, ok := c.DB.(*db.DB); ok && closer != nil {
				closer.Close()
			}
		}
	},
}

// buildConsoles assembles the console list from CLI options and the
// per-user connection file. CLI input claims console 0 and the file fills
// the remainder; with no CLI input the file starts at console 0, falling
// back to built-in defaults when it is absent or ignored.
func buildConsoles(cmd *cobra.Command, args []string) []*ui.Console {
	consoles := make([]*ui.Console, ui.MaxConsoles)
	for i := range consoles {
		consoles[i] = ui.NewConsole(i)
	}

	cliUsed := len(args) > 0
	for _, name := range []string{"host", "port", "user", "dbname", "password", "no-password"} {
		if cmd.Flags().Changed(name) {
			cliUsed = true
		}
	}

	next := 0
	if cliUsed {
		consoles[0].Cfg = cliConfig(args)
		consoles[0].ConnUsed = true
		next = 1
	}

	path, err := config.DefaultRCPath()
	if err == nil {
		rc, err := config.ReadRC(path)
		switch {
		case errors.Is(err, config.ErrBadPermissions):
			fmt.Fprintf(os.Stderr, "WARNING: %s has wrong permissions.\n", path)
		case err == nil:
			for _, cfg := range rc {
				if next >= ui.MaxConsoles {
					break
				}
				consoles[next].Cfg = cfg
				consoles[next].ConnUsed = true
				next++
			}
		}
	}

	if next == 0 {
		consoles[0].Cfg = cliConfig(nil)
		consoles[0].ConnUsed = true
	}
	return consoles
}

// cliConfig builds console 0's parameters from flags, positionals and
// defaults, the way psql resolves them.
func cliConfig(args []string) db.Config {
	cfg := db.Config{
		Host:   flagHost,
		Port:   flagPort,
		User:   flagUser,
		DBName: flagDBName,
	}

	for _, arg := range args {
		switch {
		case cfg.DBName == "":
			cfg.DBName = arg
		case cfg.User == "":
			cfg.User = arg
		default:
			fmt.Fprintf(os.Stderr, "pgtop: warning: extra command-line argument %q ignored\n", arg)
		}
	}

	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.User == "" {
		if u, err := user.Current(); err == nil {
			cfg.User = u.Username
		}
	}
	if cfg.DBName == "" {
		cfg.DBName = cfg.User
	}
	return cfg
}

// openConnections connects every configured console. A server demanding a
// password gets one re-prompt and retry; a console that still fails stays
// usable and reports the failure every tick. Only the sole configured
// console failing is fatal.
func openConnections(consoles []*ui.Console) {
	configured, connected := 0, 0
	var lastFailed db.Config

	for _, c := range consoles {
		if !c.ConnUsed {
			continue
		}
		configured++

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		conn, err := db.Connect(ctx, c.Cfg)
		cancel()

		if err != nil && needsPassword(err) && !flagNoPassword {
			fmt.Printf("%s require ", c.Cfg.Summary())
			c.Cfg.Password = promptPassword("password: ")

			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			conn, err = db.Connect(ctx, c.Cfg)
			cancel()
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to %s\n", c.Cfg.Summary())
			lastFailed = c.Cfg
			continue
		}
		c.DB = conn
		connected++
	}

	if configured > 0 && connected == 0 && configured == 1 {
		fmt.Fprintf(os.Stderr, "pgtop: no connection to %s, exiting.\n", lastFailed.Summary())
		os.Exit(0)
	}
}

// needsPassword reports whether the connect error means the server wants
// password authentication we did not provide.
func needsPassword(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 28000 invalid_authorization_specification, 28P01 invalid_password
		return pgErr.Code == "28000" || pgErr.Code == "28P01"
	}
	return strings.Contains(err.Error(), "password authentication failed") ||
		strings.Contains(err.Error(), "no password supplied")
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(pw)
}

// runJSONMode collects every catalog view once on the first connected
// console and prints the lot as JSON.
func runJSONMode(consoles []*ui.Console) {
	var active *ui.Console
	for _, c := range consoles {
		if c.ConnUsed && c.DB != nil {
			active = c
			break
		}
	}
	if active == nil {
		fmt.Fprintln(os.Stderr, "Error: no usable connection")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	views := make(map[string]*model.Table, len(query.Registry))
	for id, v := range query.Registry {
		sql := query.Build(id, active.MinAge, v.SortMin)
		t, err := active.DB.Query(ctx, sql)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error collecting %s: %v\n", id, err)
			os.Exit(1)
		}
		views[id.Slug()] = t
	}

	activity, err := active.DB.Activity(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error collecting activity: %v\n", err)
		os.Exit(1)
	}

	if err := output.RenderJSON(os.Stdout, views, activity); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering JSON: %v\n", err)
		os.Exit(1)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
