package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectStateQuery = `SELECT value FROM app_state WHERE key = $1`
	upsertStateQuery = `INSERT INTO app_state (key, value, updated_at)`
	deleteStateQuery = `DELETE FROM app_state WHERE key = $1`
)

func newMockStore(t *testing.T) (KVStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresKVStore(db), mock
}

func TestPostgresKVStoreGet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectStateQuery)).
		WithArgs("foosball-tournament").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"id":"t"}`)))

	value, err := store.Get(context.Background(), "foosball-tournament")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t"}`, string(value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKVStoreGetMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectStateQuery)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrStateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKVStoreGetWithoutTable(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectStateQuery)).
		WithArgs("k").
		WillReturnError(&pq.Error{Code: "42P01", Message: `relation "app_state" does not exist`})

	_, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrStateTableMissing)
}

func TestPostgresKVStorePutIsTransactional(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertStateQuery)).
		WithArgs("a", `{"v":1}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteStateQuery)).
		WithArgs("b").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Put(context.Background(), Entry{Key: "a", Value: []byte(`{"v":1}`)}, Entry{Key: "b"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKVStorePutRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertStateQuery)).
		WithArgs("a", `1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(upsertStateQuery)).
		WithArgs("b", `2`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := store.Put(context.Background(),
		Entry{Key: "a", Value: []byte(`1`)},
		Entry{Key: "b", Value: []byte(`2`)},
	)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKVStoreDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM app_state WHERE key = ANY($1)`)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, store.Delete(context.Background(), "a", "b"))
	assert.NoError(t, mock.ExpectationsWereMet())

	require.NoError(t, store.Delete(context.Background()))
}

func TestEnsurePostgresSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS app_state`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsurePostgresSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
