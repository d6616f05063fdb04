package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/hawaiibiz/intel/internal/infrastructure/config"
	"github.com/hawaiibiz/intel/internal/infrastructure/logger"
	"github.com/hawaiibiz/intel/internal/infrastructure/migration"
	"github.com/hawaiibiz/intel/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// command is one migrate subcommand. args excludes the command name.
type command struct {
	usage   string
	needsDB bool
	run     func(env *environment, args []string) error
}

type environment struct {
	log      *zap.Logger
	dir      string
	migrator *migration.Migrator
}

var commands = map[string]command{
	"up":      {usage: "up", needsDB: true, run: runUp},
	"down":    {usage: "down", needsDB: true, run: runDown},
	"step":    {usage: "step <n>", needsDB: true, run: runStep},
	"goto":    {usage: "goto <version>", needsDB: true, run: runGoto},
	"version": {usage: "version", needsDB: true, run: runVersion},
	"force":   {usage: "force <version>", needsDB: true, run: runForce},
	"create":  {usage: "create <name> [description]", run: runCreate},
	"list":    {usage: "list", run: runList},
}

func main() {
	dir := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (default: built from HBI_DATABASE_*)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log = log.Named("migrate")

	env := &environment{log: log, dir: *dir}
	if cmd.needsDB {
		m, err := openMigrator(*dsn, *dir, log)
		if err != nil {
			log.Fatal("Failed to prepare migrator", zap.Error(err))
		}
		defer func() { _ = m.Close() }()
		env.migrator = m
	}

	log.Debug("Running command", zap.String("command", args[0]), zap.String("path", *dir))
	if err := cmd.run(env, args[1:]); err != nil {
		log.Fatal("Command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func openMigrator(dsn, dir string, log *zap.Logger) (*migration.Migrator, error) {
	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		dsn = cfg.Database.DSN()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	m, err := migration.New(db, migration.Source{Dir: dir}, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func runUp(env *environment, _ []string) error   { return env.migrator.Up() }
func runDown(env *environment, _ []string) error { return env.migrator.Down() }

func runStep(env *environment, args []string) error {
	n, err := intArg(args, "step count")
	if err != nil {
		return err
	}
	return env.migrator.Steps(n)
}

func runGoto(env *environment, args []string) error {
	v, err := intArg(args, "version")
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.New("version must not be negative")
	}
	return env.migrator.GoTo(uint(v))
}

func runForce(env *environment, args []string) error {
	v, err := intArg(args, "version")
	if err != nil {
		return err
	}
	return env.migrator.Force(v)
}

func runVersion(env *environment, _ []string) error {
	version, dirty, err := env.migrator.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		env.log.Info("No migrations applied")
		return nil
	}
	env.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	if dirty {
		env.log.Warn("Schema is dirty; fix the failed migration and run force <version>")
	}
	return nil
}

func runCreate(env *environment, args []string) error {
	if len(args) == 0 {
		return errors.New("migration name required")
	}
	dir := env.dir
	if dir == "" {
		dir = "migrations"
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	env.log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(env *environment, _ []string) error {
	var fsys fs.FS = migrations.FS
	if env.dir != "" {
		fsys = os.DirFS(env.dir)
	}
	names, err := migration.ListMigrations(fsys)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		env.log.Info("No migrations found")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Schema migrations for the Hawaii business intelligence store

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                           Apply every pending migration
  down                         Roll back every migration
  step <n>                     Apply n migrations, negative n rolls back
  goto <version>               Migrate up or down to version
  version                      Print the applied version
  force <version>              Record version as applied and clear the dirty flag
  create <name> [description]  Write a new up/down pair into -path (default ./migrations)
  list                         List migrations

Flags:`)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, `
The database comes from -dsn or HBI_DATABASE_HOST, HBI_DATABASE_PORT,
HBI_DATABASE_USER, HBI_DATABASE_PASSWORD, HBI_DATABASE_NAME and
HBI_DATABASE_SSLMODE.`)
}
