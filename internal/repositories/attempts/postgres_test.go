package attempts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/agrisuite/farmauth/internal/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestRecord_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+login_attempts`).
		WithArgs("test_farmer", "10.0.0.1", false, "invalid password").
		WillReturnResult(sqlmock.NewResult(1, 1))

	a := &models.LoginAttempt{
		Username:   "test_farmer",
		RemoteAddr: "10.0.0.1",
		Success:    false,
		Reason:     "invalid password",
	}
	if err := repo.Record(context.Background(), a); err != nil {
		t.Fatalf("Record error: %v", err)
	}
}

func TestRecord_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+login_attempts`).
		WillReturnError(errors.New("db down"))

	err := repo.Record(context.Background(), &models.LoginAttempt{Username: "x"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCountFailuresSince(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	since := time.Now().Add(-15 * time.Minute)
	rows := sqlmock.NewRows([]string{"count"}).AddRow(5)
	mock.ExpectQuery(`SELECT\s+count\(\*\)\s+FROM\s+login_attempts\s+WHERE\s+username\s*=\s*\$1`).
		WithArgs("test_farmer", since).
		WillReturnRows(rows)

	n, err := repo.CountFailuresSince(context.Background(), "test_farmer", since)
	if err != nil {
		t.Fatalf("CountFailuresSince error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 failures, got %d", n)
	}
}

func TestCountFailuresByAddrSince(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	since := time.Now().Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"count"}).AddRow(2)
	mock.ExpectQuery(`SELECT\s+count\(\*\)\s+FROM\s+login_attempts\s+WHERE\s+remote_addr\s*=\s*\$1`).
		WithArgs("10.0.0.1", since).
		WillReturnRows(rows)

	n, err := repo.CountFailuresByAddrSince(context.Background(), "10.0.0.1", since)
	if err != nil {
		t.Fatalf("CountFailuresByAddrSince error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 failures, got %d", n)
	}
}
