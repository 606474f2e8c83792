package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	appidentity "github.com/sgi/backend/internal/application/identity"
	apporg "github.com/sgi/backend/internal/application/org"
	"github.com/sgi/backend/internal/infrastructure/config"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"github.com/sgi/backend/internal/infrastructure/migration"
	"github.com/sgi/backend/internal/infrastructure/persistence"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Migrations directory (default: migrations compiled into the binary)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if migrationsPath == "" {
		migrationsPath = cfg.Database.MigrationsPath
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Database.Driver),
		zap.String("migrations_path", migrationsPath),
	)

	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		dir := migrationsPath
		if dir == "" {
			dir = "internal/infrastructure/migration/sql"
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(dir, args[1], description, time.Now())
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		var names []string
		if migrationsPath == "" {
			names, err = migration.EmbeddedVersions()
		} else {
			names, err = migration.ListMigrations(migrationsPath)
		}
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Available migrations", zap.Int("count", len(names)))
		for _, n := range names {
			fmt.Println("  -", n)
		}
		return

	case "seed-admin":
		if err := seedAdmin(cfg, args[1:], log); err != nil {
			log.Fatal("Failed to seed administrator", zap.Error(err))
		}
		return
	}

	if cfg.Database.Driver == "sqlite" {
		if command != "up" {
			log.Fatal("Only 'up' is supported for sqlite", zap.String("command", command))
		}
		if err := autoMigrate(cfg); err != nil {
			log.Fatal("Schema sync failed", zap.Error(err))
		}
		log.Info("sqlite schema synchronized", zap.String("path", cfg.Database.SQLitePath))
		return
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "goto":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate goto <version>")
		}
		version, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.GoTo(uint(version)); err != nil {
			log.Fatal("Migration goto failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	case "drop":
		if len(args) < 2 || (args[1] != "-confirm" && args[1] != "--confirm") {
			log.Fatal("Drop cancelled. Use 'migrate drop -confirm' to confirm.")
		}
		if err := m.Drop(); err != nil {
			log.Fatal("Drop failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func autoMigrate(cfg *config.Config) error {
	database, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()
	return database.DB.AutoMigrate(models.AllModels()...)
}

// seedAdmin registers the first superuser so the board can log in and
// create everyone else.
func seedAdmin(cfg *config.Config, args []string, log *zap.Logger) error {
	fs := flag.NewFlagSet("seed-admin", flag.ContinueOnError)
	username := fs.String("username", "admin", "Login name")
	firstName := fs.String("first-name", "Administrador", "First name")
	lastName := fs.String("last-name", "SGI", "Last name")
	email := fs.String("email", "", "Email address")
	rut := fs.String("rut", "", "RUT, e.g. 12.345.678-5")
	if err := fs.Parse(args); err != nil {
		return err
	}
	password := os.Getenv("SGI_ADMIN_PASSWORD")
	if password == "" {
		return fmt.Errorf("SGI_ADMIN_PASSWORD must be set")
	}

	database, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	actors := persistence.NewGormActorRepository(database.DB)
	orgs := persistence.NewGormOrgRepository(database.DB)
	svc := appidentity.NewActorService(actors, orgs, apporg.NewService(orgs, actors, nil), nil)
	ctx := logger.WithContext(context.Background(), log)
	admin, err := svc.CreateInitial(ctx, appidentity.CreateActorInput{
		Username:  *username,
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		RUT:       *rut,
		Password:  password,
	})
	if err != nil {
		return err
	}
	log.Info("Administrator created", zap.String("username", admin.Username), zap.String("id", admin.ID.String()))
	return nil
}

func printUsage() {
	fmt.Println(`SGI Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations (sqlite: sync the schema)
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations
  seed-admin [flags]    Create the first administrator (password from SGI_ADMIN_PASSWORD)

Flags:
  -path string          Migrations directory (default: compiled into the binary)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  SGI_DATABASE_HOST, SGI_DATABASE_PORT, SGI_DATABASE_USER, SGI_DATABASE_PASSWORD, SGI_DATABASE_DBNAME

Examples:
  migrate up
  migrate step -1
  migrate create add_issue_pdf "Store the issue PDF key"
  SGI_ADMIN_PASSWORD=... migrate seed-admin -username admin -rut 12.345.678-5`)
}
