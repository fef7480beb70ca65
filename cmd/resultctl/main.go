package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/noah-isme/resultboard-api/internal/config"
	"github.com/noah-isme/resultboard-api/internal/database"
	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/repository"
	"github.com/noah-isme/resultboard-api/internal/result"
	"github.com/noah-isme/resultboard-api/internal/service"
	"github.com/noah-isme/resultboard-api/pkg/filestore"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "resultctl",
		Short:        "Offline tooling for result files and metadata",
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.String("db-driver", "", "Database driver (postgres, sqlite); defaults to RESULTBOARD_DATABASE_DRIVER, then postgres")
	f.String("db", "", "Database DSN; defaults to RESULTBOARD_DATABASE_URL")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(rankCmd(), studentCmd(), migrateCmd(), seedCmd())
	return root
}

func rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a local result file and print it as JSON",
		RunE:  runRank,
	}
	cmd.Flags().String("file", "", "Path to the result CSV")
	cmd.Flags().String("college", "", "Only keep rows of this college id")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func studentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Print every semester result of a student",
		RunE:  runStudent,
	}
	cmd.Flags().String("dir", "", "Directory holding result files named by their file id")
	cmd.Flags().String("roll", "", "11 digit roll number")
	cmd.Flags().Int("concurrency", 4, "Semesters fetched in parallel")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("roll")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the metadata tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert universities, batches, degrees and subjects from a JSON bundle",
		RunE:  runSeed,
	}
	cmd.Flags().String("file", "", "Path to the metadata bundle")
	cmd.Flags().String("redis", "", "Redis URL whose metadata cache is cleared after seeding; defaults to RESULTBOARD_REDIS_URL")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runRank(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	collegeID, _ := cmd.Flags().GetString("college")

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	dataset, err := result.ParseRecords(file)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return writeJSON(cmd.OutOrStdout(), result.Rank(dataset.FilterByCollege(collegeID)))
}

func runStudent(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	roll, _ := cmd.Flags().GetString("roll")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	files, err := filestore.NewDirStore(dir)
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close(db)

	logger := cliLogger(cmd)
	resolver := service.NewSubjectResolver(repository.NewSubjectRepository(db))
	svc := service.NewResultService(repository.NewDegreeRepository(db), resolver, files, dto.NewValidator(), concurrency, logger)

	history, err := svc.FetchStudentHistory(cmd.Context(), roll)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), history)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var bundle dto.MetadataBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	cache, err := openMetadataCache(cmd)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	logger := cliLogger(cmd)
	metadata := service.NewMetadataService(
		repository.NewUniversityRepository(db),
		repository.NewBatchRepository(db),
		repository.NewDegreeRepository(db),
		cache,
		0,
		logger,
	)
	svc := service.NewSeedService(db, metadata, logger)

	summary, err := svc.SeedMetadata(cmd.Context(), bundle)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), summary)
}

// openDatabase prefers the --db-driver and --db flags and falls back to the
// RESULTBOARD_DATABASE_* settings, whose driver defaults to postgres like the API.
func openDatabase(cmd *cobra.Command) (*gorm.DB, error) {
	driver, _ := cmd.Flags().GetString("db-driver")
	dsn, _ := cmd.Flags().GetString("db")

	cfg, err := config.LoadDatabase()
	if err != nil && driver == "" {
		return nil, err
	}
	if driver == "" {
		driver = cfg.Driver
	}
	if dsn == "" {
		dsn = cfg.URL
	}
	if dsn == "" {
		return nil, fmt.Errorf("database url must be provided with --db or RESULTBOARD_DATABASE_URL")
	}

	return database.Connect(driver, dsn)
}

// openMetadataCache connects to the redis instance the API caches metadata in.
// It returns nil when no url is configured.
func openMetadataCache(cmd *cobra.Command) (*redis.Client, error) {
	url, _ := cmd.Flags().GetString("redis")
	if url == "" {
		if cfg, err := config.LoadDatabase(); err == nil {
			url = cfg.RedisURL
		}
	}
	if url == "" {
		return nil, nil
	}
	return database.ConnectRedis(url)
}

func cliLogger(cmd *cobra.Command) zerolog.Logger {
	logger := zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger()
	levelName, _ := cmd.Flags().GetString("log-level")
	if level, err := zerolog.ParseLevel(levelName); err == nil {
		logger = logger.Level(level)
	}
	return logger
}

func writeJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
