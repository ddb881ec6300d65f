package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/filehub/internal/common"
)

func newStoreWithMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSQLStore(db), mock, db
}

func TestSQLStore_Get_Found(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+data\s+FROM\s+users\s+WHERE\s+key\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"data"}).AddRow([]byte("blob"))
	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(rows)

	data, err := s.Get(context.Background(), TableUsers, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(data) != "blob" {
		t.Fatalf("unexpected data: %q", data)
	}
}

func TestSQLStore_Get_NotFound(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+data\s+FROM\s+users\s+WHERE\s+key\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), TableUsers, "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSQLStore_Get_DBError(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+data\s+FROM\s+core\s+WHERE\s+key\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("usergroups").WillReturnError(errors.New("db down"))

	_, err := s.Get(context.Background(), TableCore, "usergroups")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSQLStore_Put_Upsert(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(key,\s*data\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(key\)\s*DO\s+UPDATE\s+SET\s+data\s*=\s*EXCLUDED\.data\s*$`
	mock.ExpectExec(q).WithArgs("alice", []byte("blob")).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Put(context.Background(), TableUsers, "alice", []byte("blob")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
}

func TestSQLStore_Exists(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+key\s*=\s*\$1\)\s*$`

	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(rows)

	ok, err := s.Exists(context.Background(), TableUsers, "alice")
	if err != nil {
		t.Fatalf("Exists error: %v", err)
	}
	if !ok {
		t.Fatalf("expected exists=true")
	}
}

func TestSQLStore_Scan(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+key,\s*data\s+FROM\s+users\s+ORDER\s+BY\s+key\s*$`

	rows := sqlmock.NewRows([]string{"key", "data"}).
		AddRow("alice", []byte("1")).
		AddRow("bob", []byte("2"))
	mock.ExpectQuery(q).WillReturnRows(rows)

	records, err := s.Scan(context.Background(), TableUsers)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(records) != 2 || records[0].Key != "alice" || records[1].Key != "bob" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestSQLStore_UnknownTable(t *testing.T) {
	s, _, db := newStoreWithMock(t)
	defer db.Close()

	_, err := s.Get(context.Background(), "bogus", "k")
	if !errors.Is(err, common.ErrorUnknownTable) {
		t.Fatalf("want common.ErrorUnknownTable, got %v", err)
	}
}
