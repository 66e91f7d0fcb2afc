package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbsmedya/relgraph/internal/config"
	"github.com/dbsmedya/relgraph/internal/logger"
	"github.com/dbsmedya/relgraph/internal/sqlutil"
	"github.com/dbsmedya/relgraph/internal/types"
)

// DefaultBatchRows caps the rows of a single multi-row INSERT.
const DefaultBatchRows = 500

const edgeColumns = "entity_one_kind, entity_one_id, role, entity_two_kind, entity_two_id, release_id, year"

// MySQLStore is a Store backed by two MySQL tables: one row per entity and
// one row per (entityOne, role, entityTwo, release) relation.
type MySQLStore struct {
	db        *sql.DB
	entities  string
	relations string
	batchRows int
	logger    *logger.Logger
}

// NewMySQLStore wraps an open connection pool. Table names come from cfg and
// are validated before use.
func NewMySQLStore(db *sql.DB, cfg *config.StoreConfig, log *logger.Logger) (*MySQLStore, error) {
	entities, err := sqlutil.QuoteIdentifierSafe(cfg.EntitiesTable)
	if err != nil {
		return nil, fmt.Errorf("entities table: %w", err)
	}
	relations, err := sqlutil.QuoteIdentifierSafe(cfg.RelationsTable)
	if err != nil {
		return nil, fmt.Errorf("relations table: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &MySQLStore{
		db:        db,
		entities:  entities,
		relations: relations,
		batchRows: DefaultBatchRows,
		logger:    log,
	}, nil
}

// DB returns the underlying connection pool.
func (s *MySQLStore) DB() *sql.DB {
	return s.db
}

func (s *MySQLStore) schemaStatements() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  kind TINYINT NOT NULL,
  id BIGINT NOT NULL,
  name VARCHAR(1024) NOT NULL DEFAULT '',
  PRIMARY KEY (kind, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, s.entities),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id BIGINT NOT NULL AUTO_INCREMENT,
  entity_one_kind TINYINT NOT NULL,
  entity_one_id BIGINT NOT NULL,
  role VARCHAR(255) NOT NULL,
  entity_two_kind TINYINT NOT NULL,
  entity_two_id BIGINT NOT NULL,
  release_id BIGINT NOT NULL DEFAULT 0,
  year SMALLINT NOT NULL DEFAULT 0,
  PRIMARY KEY (id),
  UNIQUE KEY uk_relation (entity_one_kind, entity_one_id, role, entity_two_kind, entity_two_id, release_id),
  KEY idx_entity_two (entity_two_kind, entity_two_id, role)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, s.relations),
	}
}

// InitSchema creates the entity and relation tables if they do not exist.
func (s *MySQLStore) InitSchema(ctx context.Context) error {
	for _, stmt := range s.schemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return unavailable("init schema", err)
		}
	}
	s.logger.Infow("Store schema ready", "entities", s.entities, "relations", s.relations)
	return nil
}

// GetEntity implements Reader.
func (s *MySQLStore) GetEntity(ctx context.Context, ref types.EntityRef) (*types.Entity, error) {
	query := fmt.Sprintf("SELECT name FROM %s WHERE kind = ? AND id = ?", s.entities)

	var name string
	err := s.db.QueryRowContext(ctx, query, int(ref.Kind), ref.ID).Scan(&name)
	if err == nil {
		return &types.Entity{Ref: ref, Name: name}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, unavailable("get entity", err)
	}

	// Entities loaded only through releases have no metadata row.
	query = fmt.Sprintf(
		"SELECT 1 FROM %s WHERE (entity_one_kind = ? AND entity_one_id = ?) OR (entity_two_kind = ? AND entity_two_id = ?) LIMIT 1",
		s.relations)
	var one int
	err = s.db.QueryRowContext(ctx, query, int(ref.Kind), ref.ID, int(ref.Kind), ref.ID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, unavailable("get entity", err)
	}
	return &types.Entity{Ref: ref}, nil
}

// EdgesTouching implements Reader.
func (s *MySQLStore) EdgesTouching(ctx context.Context, ref types.EntityRef, roles []string) ([]types.RelationEdge, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE ((entity_one_kind = ? AND entity_one_id = ?) OR (entity_two_kind = ? AND entity_two_id = ?))",
		edgeColumns, s.relations)
	args := []interface{}{int(ref.Kind), ref.ID, int(ref.Kind), ref.ID}
	if len(roles) > 0 {
		query += fmt.Sprintf(" AND role IN (%s)", sqlutil.Placeholders(len(roles)))
		for _, r := range roles {
			args = append(args, r)
		}
	}
	query += " ORDER BY entity_one_kind, entity_one_id, role, entity_two_kind, entity_two_id, release_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("edges touching", err)
	}
	defer rows.Close()

	var out []types.RelationEdge
	for rows.Next() {
		var (
			e          types.RelationEdge
			kOne, kTwo int
		)
		if err := rows.Scan(&kOne, &e.EntityOne.ID, &e.Role, &kTwo, &e.EntityTwo.ID, &e.ReleaseID, &e.Year); err != nil {
			return nil, unavailable("scan edge", err)
		}
		e.EntityOne.Kind = types.EntityKind(kOne)
		e.EntityTwo.Kind = types.EntityKind(kTwo)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("edges touching", err)
	}
	return out, nil
}

// PutEntities implements Writer. Existing entities keep a non-empty name.
func (s *MySQLStore) PutEntities(ctx context.Context, entities []types.Entity) error {
	return s.inBatches(ctx, "put entities", len(entities), func(tx *sql.Tx, lo, hi int) error {
		query := fmt.Sprintf("INSERT INTO %s (kind, id, name) VALUES %s ON DUPLICATE KEY UPDATE name = IF(name = '', VALUES(name), name)",
			s.entities, sqlutil.ValueRows(hi-lo, 3))
		args := make([]interface{}, 0, (hi-lo)*3)
		for _, e := range entities[lo:hi] {
			args = append(args, int(e.Ref.Kind), e.Ref.ID, e.Name)
		}
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

// PutEdges implements Writer. INSERT IGNORE on the natural key makes
// repeated loads of the same release a no-op.
func (s *MySQLStore) PutEdges(ctx context.Context, edges []types.RelationEdge) error {
	return s.inBatches(ctx, "put edges", len(edges), func(tx *sql.Tx, lo, hi int) error {
		query := fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES %s",
			s.relations, edgeColumns, sqlutil.ValueRows(hi-lo, 7))
		args := make([]interface{}, 0, (hi-lo)*7)
		for _, e := range edges[lo:hi] {
			args = append(args,
				int(e.EntityOne.Kind), e.EntityOne.ID, e.Role,
				int(e.EntityTwo.Kind), e.EntityTwo.ID, e.ReleaseID, e.Year)
		}
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

// inBatches runs fn over [0, n) in chunks of batchRows inside one transaction.
func (s *MySQLStore) inBatches(ctx context.Context, op string, n int, fn func(tx *sql.Tx, lo, hi int) error) (err error) {
	if n == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable(op, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warnw("Rollback failed", "op", op, "error", rbErr)
			}
		}
	}()

	for lo := 0; lo < n; lo += s.batchRows {
		hi := min(lo+s.batchRows, n)
		if err = fn(tx, lo, hi); err != nil {
			return unavailable(op, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return unavailable(op, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
