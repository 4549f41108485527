package integration

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/edustack/trainer-portal/internal/database"
	"github.com/edustack/trainer-portal/internal/models"
	pkgauth "github.com/edustack/trainer-portal/pkg/auth"
)

// TestDB manages the PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("employeedb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         &database.DB{Pool: pool},
	}, nil
}

// runMigrations executes all goose migrations against the test database
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir, err := filepath.Abs("../../migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	// Suppress goose logs
	goose.SetLogger(log.New(io.Discard, "", 0))

	// Goose needs a database/sql connection; use the pgx stdlib adapter
	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"trainer",
		"course",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// SeedCourse inserts a course and returns its id
func SeedCourse(ctx context.Context, pool *pgxpool.Pool, name string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO course (course_name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert course: %w", err)
	}
	return id, nil
}

// SeedTrainerOptions controls the credential state of a seeded trainer.
type SeedTrainerOptions struct {
	Password     string // hashed with bcrypt before insert; empty means no hash stored
	TempPassword string // stored as plaintext when set
	IsActive     bool
	PortalAccess bool
	CourseID     *int64
}

// SeedTrainer inserts a trainer row and returns the stored model
func SeedTrainer(ctx context.Context, pool *pgxpool.Pool, name, email string, opts SeedTrainerOptions) (*models.Trainer, error) {
	var passwordHash *string
	if opts.Password != "" {
		hash, err := pkgauth.HashPassword(opts.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = &hash
	}

	var tempPassword *string
	if opts.TempPassword != "" {
		tempPassword = &opts.TempPassword
	}

	query := `
		INSERT INTO trainer (name, email, mobile, password_hash, temp_password,
		                     is_temp_password, is_active, portal_access, course_id)
		VALUES ($1, $2, '', $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	trainer := &models.Trainer{
		Name:           name,
		Email:          email,
		IsTempPassword: tempPassword != nil,
		IsActive:       opts.IsActive,
		PortalAccess:   opts.PortalAccess,
		CourseID:       opts.CourseID,
	}
	if passwordHash != nil {
		trainer.PasswordHash = *passwordHash
	}
	if tempPassword != nil {
		trainer.TempPassword = *tempPassword
	}

	err := pool.QueryRow(ctx, query,
		name, email, passwordHash, tempPassword,
		trainer.IsTempPassword, opts.IsActive, opts.PortalAccess, opts.CourseID,
	).Scan(&trainer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert trainer: %w", err)
	}

	return trainer, nil
}
