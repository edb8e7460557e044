package pgStore

import (
	"context"
	"fmt"

	"file-storage-service/internal/repository"
	"file-storage-service/internal/repository/fileRepo"
	"file-storage-service/internal/repository/revisionRepo"
	"file-storage-service/pkg/database/postgres"

	"github.com/jackc/pgx/v5"
)

// Pool is satisfied by *pgxpool.Pool.
type Pool interface {
	postgres.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the Postgres-backed repository.Store.
type Store struct {
	pool Pool
}

var _ repository.Store = (*Store)(nil)

func New(pool Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Files() repository.Files {
	return fileRepo.New(s.pool)
}

func (s *Store) Revisions() repository.Revisions {
	return revisionRepo.New(s.pool)
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Files, repository.Revisions) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(fileRepo.New(tx), revisionRepo.New(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
