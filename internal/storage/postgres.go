package storage

import (
	"context"
	"errors"
	"fmt"

	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConnectionError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to database at %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type DB struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, &ConnectionError{
			Host: cfg.Host,
			Port: cfg.Port,
			Err:  err,
		}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{
			Host: cfg.Host,
			Port: cfg.Port,
			Err:  err,
		}
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// PostgresStore keeps the state document in the bot_state table, one row per
// state key. The schema is managed by cmd/migrator.
type PostgresStore struct {
	db  *DB
	key string
}

func NewPostgresStore(db *DB, key string) *PostgresStore {
	if key == "" {
		key = "default"
	}
	return &PostgresStore{db: db, key: key}
}

func (s *PostgresStore) Load(ctx context.Context) (*models.BotState, error) {
	var document []byte
	err := s.db.Pool.QueryRow(ctx,
		"SELECT document FROM bot_state WHERE key = $1",
		s.key,
	).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info("No state row found, starting fresh", logger.String("key", s.key))
			return models.NewBotState(), nil
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	return decodeState(document, "postgres:"+s.key), nil
}

func (s *PostgresStore) Save(ctx context.Context, state *models.BotState) error {
	document, err := encodeState(state)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bot_state (key, document, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.Pool.Exec(ctx, query, s.key, document); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
