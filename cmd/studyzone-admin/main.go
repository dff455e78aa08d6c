// Command studyzone-admin is an operational CLI for deployment and
// development tasks: migrations, bootstrap admin provisioning, demo data
// seeding, and chat history maintenance.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/studyzone/studyzone-api/config"
	"github.com/studyzone/studyzone-api/internal/bootstrap"
	"github.com/studyzone/studyzone-api/internal/data"
	"github.com/studyzone/studyzone-api/internal/devseed"
	"github.com/studyzone/studyzone-api/internal/service"
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
	Config config.AppConfig
}

const defaultCommandTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command failure to the shell
	}
}

func commands() map[string]command {
	cmds := []command{
		{name: "migrate", description: "apply database migrations", run: runMigrate},
		{name: "seed-admin", description: "provision the bootstrap admin account", run: runSeedAdmin},
		{name: "seed-dev", description: "seed demo accounts and sample content", run: runSeedDev},
		{name: "prune-chat", description: "delete chat history past the retention window", run: runPruneChat},
		{name: "list-students", description: "print the student roster", run: runListStudents},
	}

	out := make(map[string]command, len(cmds))
	for _, c := range cmds {
		out[c.name] = c
	}
	return out
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: studyzone-admin <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, cmds[name].description)
	}
	w.Flush()
}

func withDB(cc *commandContext, fn func(ctx context.Context, db *sql.DB) error) error {
	ctx, cancel := context.WithTimeout(cc.Ctx, defaultCommandTimeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig:    cc.Config.Postgres,
		RedisConfig: cc.Config.Redis,
		Logger:      cc.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cc.Logger.Error("close database failed", "error", cerr)
		}
	}()

	return fn(ctx, db)
}

func runMigrate(cc *commandContext, _ []string) error {
	return withDB(cc, func(ctx context.Context, db *sql.DB) error {
		return bootstrap.RunMigrations(ctx, db, cc.Logger)
	})
}

func runSeedAdmin(cc *commandContext, _ []string) error {
	return withDB(cc, func(ctx context.Context, db *sql.DB) error {
		redisClient, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
			RedisConfig: cc.Config.Redis,
			Logger:      cc.Logger,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()

		auth, err := bootstrap.BuildAuthService(bootstrap.AuthDeps{
			Auth:        cc.Config.Auth,
			HTTP:        cc.Config.HTTP,
			Users:       data.NewUserRepo(db),
			Profiles:    data.NewProfileRepo(db),
			RedisClient: redisClient,
			Logger:      cc.Logger,
		})
		if err != nil {
			return fmt.Errorf("build auth service: %w", err)
		}

		if err := auth.EnsureBootstrapAdmin(ctx); err != nil {
			return err
		}
		cc.Logger.InfoContext(ctx, "bootstrap admin provisioned",
			"email", cc.Config.Auth.BootstrapAdmin.Email)
		return nil
	})
}

func runSeedDev(cc *commandContext, _ []string) error {
	if !cc.Config.IsDev {
		return fmt.Errorf("seed-dev refuses to run outside dev mode (set DEV=true)")
	}
	return withDB(cc, func(ctx context.Context, db *sql.DB) error {
		seeder, err := devseed.New(db, cc.Logger)
		if err != nil {
			return err
		}
		return seeder.Run(ctx)
	})
}

func runPruneChat(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("prune-chat", flag.ContinueOnError)
	retention := fs.Duration("retention", cc.Config.AI.Retention, "delete messages older than this")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDB(cc, func(ctx context.Context, db *sql.DB) error {
		pruner, err := service.NewChatPruner(service.ChatPrunerOptions{
			Messages:  data.NewChatRepo(db),
			Retention: *retention,
			Logger:    cc.Logger,
		})
		if err != nil {
			return err
		}
		return pruner.PruneOnce(ctx)
	})
}

func runListStudents(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-students", flag.ContinueOnError)
	limit := fs.Int("limit", 100, "maximum rows to print")
	offset := fs.Int("offset", 0, "rows to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDB(cc, func(ctx context.Context, db *sql.DB) error {
		profiles, err := data.NewProfileRepo(db).ListStudents(ctx, *limit, *offset)
		if err != nil {
			return fmt.Errorf("list students: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tROLE\tCREATED")
		for _, p := range profiles {
			name := ""
			if p.FullName != nil {
				name = *p.FullName
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, name, p.Role, p.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	})
}
