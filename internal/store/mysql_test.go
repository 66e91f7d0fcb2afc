package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/relgraph/internal/config"
	"github.com/dbsmedya/relgraph/internal/types"
)

const edgesTouchingPrefix = "SELECT entity_one_kind, entity_one_id, role, entity_two_kind, entity_two_id, release_id, year FROM `relations` " +
	"WHERE ((entity_one_kind = ? AND entity_one_id = ?) OR (entity_two_kind = ? AND entity_two_id = ?))"

const edgesOrderBy = " ORDER BY entity_one_kind, entity_one_id, role, entity_two_kind, entity_two_id, release_id"

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.DefaultConfig()
	s, err := NewMySQLStore(db, &cfg.Store, nil)
	require.NoError(t, err)
	return s, mock
}

func TestNewMySQLStore_InvalidTable(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewMySQLStore(db, &config.StoreConfig{EntitiesTable: "entities; DROP", RelationsTable: "relations"}, nil)
	assert.ErrorContains(t, err, "entities table")

	_, err = NewMySQLStore(db, &config.StoreConfig{EntitiesTable: "entities", RelationsTable: ""}, nil)
	assert.ErrorContains(t, err, "relations table")
}

func TestMySQLStore_InitSchema(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `entities`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `relations`")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_InitSchemaError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("access denied"))

	err := s.InitSchema(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorContains(t, err, "access denied")
}

func TestMySQLStore_GetEntity(t *testing.T) {
	ctx := context.Background()
	entityQuery := regexp.QuoteMeta("SELECT name FROM `entities` WHERE kind = ? AND id = ?")
	existsQuery := regexp.QuoteMeta("SELECT 1 FROM `relations` WHERE (entity_one_kind = ? AND entity_one_id = ?) OR (entity_two_kind = ? AND entity_two_id = ?) LIMIT 1")

	t.Run("metadata row", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(entityQuery).WithArgs(1, 152882).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Morris Day"))

		e, err := s.GetEntity(ctx, types.Artist(152882))
		require.NoError(t, err)
		assert.Equal(t, types.Entity{Ref: types.Artist(152882), Name: "Morris Day"}, *e)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("known only through edges", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(entityQuery).WithArgs(2, 10).
			WillReturnRows(sqlmock.NewRows([]string{"name"}))
		mock.ExpectQuery(existsQuery).WithArgs(2, 10, 2, 10).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		e, err := s.GetEntity(ctx, types.Label(10))
		require.NoError(t, err)
		assert.Equal(t, types.Entity{Ref: types.Label(10)}, *e)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(entityQuery).WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(existsQuery).WillReturnRows(sqlmock.NewRows([]string{"1"}))

		_, err := s.GetEntity(ctx, types.Artist(1))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("driver error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(entityQuery).WillReturnError(errors.New("connection refused"))

		_, err := s.GetEntity(ctx, types.Artist(1))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestMySQLStore_EdgesTouching(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"entity_one_kind", "entity_one_id", "role", "entity_two_kind", "entity_two_id", "release_id", "year"}).
		AddRow(1, 152882, "Member Of", 1, 32550, 0, 0).
		AddRow(1, 152882, "Released On", 2, 10, 77, 1984)

	mock.ExpectQuery(regexp.QuoteMeta(edgesTouchingPrefix+" AND role IN (?, ?)"+edgesOrderBy)).
		WithArgs(1, 152882, 1, 152882, "Member Of", "Released On").
		WillReturnRows(rows)

	edges, err := s.EdgesTouching(context.Background(), types.Artist(152882), []string{"Member Of", "Released On"})
	require.NoError(t, err)
	assert.Equal(t, []types.RelationEdge{
		{EntityOne: types.Artist(152882), Role: "Member Of", EntityTwo: types.Artist(32550)},
		{EntityOne: types.Artist(152882), Role: "Released On", EntityTwo: types.Label(10), ReleaseID: 77, Year: 1984},
	}, edges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_EdgesTouchingAllRoles(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(edgesTouchingPrefix + edgesOrderBy)).
		WithArgs(2, 5, 2, 5).
		WillReturnRows(sqlmock.NewRows([]string{"entity_one_kind", "entity_one_id", "role", "entity_two_kind", "entity_two_id", "release_id", "year"}))

	edges, err := s.EdgesTouching(context.Background(), types.Label(5), nil)
	require.NoError(t, err)
	assert.Empty(t, edges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_EdgesTouchingError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT").WillReturnError(context.DeadlineExceeded)

	_, err := s.EdgesTouching(context.Background(), types.Artist(1), []string{"Alias"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMySQLStore_PutEdgesBatches(t *testing.T) {
	s, mock := newMockStore(t)
	s.batchRows = 2

	edges := []types.RelationEdge{
		{EntityOne: types.Artist(1), Role: "Producer", EntityTwo: types.Artist(2), ReleaseID: 10, Year: 1990},
		{EntityOne: types.Artist(3), Role: "Member Of", EntityTwo: types.Artist(4)},
		{EntityOne: types.Artist(5), Role: "Released On", EntityTwo: types.Label(6), ReleaseID: 11},
	}
	insert := "INSERT IGNORE INTO `relations` (entity_one_kind, entity_one_id, role, entity_two_kind, entity_two_id, release_id, year) VALUES "

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insert+"(?, ?, ?, ?, ?, ?, ?), (?, ?, ?, ?, ?, ?, ?)")).
		WithArgs(1, 1, "Producer", 1, 2, 10, 1990, 1, 3, "Member Of", 1, 4, 0, 0).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(insert+"(?, ?, ?, ?, ?, ?, ?)")).
		WithArgs(1, 5, "Released On", 2, 6, 11, 0).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, s.PutEdges(context.Background(), edges))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_PutEdgesRollback(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := s.PutEdges(context.Background(), []types.RelationEdge{
		{EntityOne: types.Artist(1), Role: "Alias", EntityTwo: types.Artist(2)},
	})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorContains(t, err, "put edges")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_PutEdgesEmpty(t *testing.T) {
	s, mock := newMockStore(t)
	require.NoError(t, s.PutEdges(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_PutEntities(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `entities` (kind, id, name) VALUES (?, ?, ?), (?, ?, ?) ON DUPLICATE KEY UPDATE name = IF(name = '', VALUES(name), name)")).
		WithArgs(1, 152882, "Morris Day", 2, 10, "Warner Bros. Records").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := s.PutEntities(context.Background(), []types.Entity{
		{Ref: types.Artist(152882), Name: "Morris Day"},
		{Ref: types.Label(10), Name: "Warner Bros. Records"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
