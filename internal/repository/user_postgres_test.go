package repository

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bpmonitor/capstone/internal/models"
)

var userRowColumns = []string{"id", "username", "password", "first_name", "last_name", "emails", "phones", "pcp"}

func setupUserMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresUserRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (id, username, password`)).
		WithArgs(sqlmock.AnyArg(), "a", "b", "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("id-1", "a", "b", "", "", "{}", "{}", "{}"))

	u, err := repo.CreateUser(context.Background(), models.User{Username: "a", Password: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "id-1" || u.Username != "a" || u.Password != "b" {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (id, username, password`)).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "users_username_key"`))

	_, err := repo.CreateUser(context.Background(), models.User{Username: "a", Password: "b"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsStorageError(err) {
		t.Errorf("expected *StorageError, got %T", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindUserByID(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		want    *models.User
		wantErr bool
	}{
		{
			name: "found",
			rows: sqlmock.NewRows(userRowColumns).
				AddRow("u1", "alice", "pw", "Alice", "Smith", "{a@x.io,b@x.io}", "{555}", "{}"),
			want: &models.User{ID: "u1", Username: "alice", Password: "pw", FirstName: "Alice", LastName: "Smith",
				Emails: []string{"a@x.io", "b@x.io"}, Phones: []string{"555"}, PCP: []string{}},
		},
		{
			name: "not found is not an error",
			rows: sqlmock.NewRows(userRowColumns),
			want: nil,
		},
		{
			name:    "query failure",
			err:     errors.New("connection reset"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserMock(t)
			defer cleanup()

			exp := mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).WithArgs("u1")
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			got, err := repo.FindUserByID(context.Background(), "u1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindUserByID error = %v; wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindUserByID = %+v; want %+v", got, tt.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestFindUserByCredentials(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1 AND password = $2 LIMIT 1`)).
		WithArgs("a", "b").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow("u1", "a", "b", "", "", "{}", "{}", "{}"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1 AND password = $2 LIMIT 1`)).
		WithArgs("a", "B").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	u, err := repo.FindUserByCredentials(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil || u.ID != "u1" {
		t.Errorf("expected user u1, got %+v", u)
	}

	u, err = repo.FindUserByCredentials(context.Background(), "a", "B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Errorf("expected no user for wrong password, got %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindUserByUsername_NotFound(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1 LIMIT 1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	u, err := repo.FindUserByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil, got %+v", u)
	}
}

func TestFindAllUsers(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users ORDER BY seq`)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "a", "1", "", "", "{}", "{}", "{}").
			AddRow("u2", "b", "2", "", "", "{}", "{}", "{}"))

	users, err := repo.FindAllUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].ID != "u1" || users[1].ID != "u2" {
		t.Errorf("unexpected users: %+v", users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindAllUsers_Empty(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users ORDER BY seq`)).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	users, err := repo.FindAllUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", users)
	}
}

func TestUpdateUser_PartialPatch(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	first := "Ann"
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (id) DO UPDATE SET`)).
		WithArgs("u1", nil, nil, "Ann", nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow("u1", "a", "b", "Ann", "", "{}", "{}", "{}"))

	u, err := repo.UpdateUser(context.Background(), "u1", models.UserPatch{FirstName: &first})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.FirstName != "Ann" || u.Username != "a" {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateUser_Error(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (id) DO UPDATE SET`)).
		WillReturnError(errors.New("update failed"))

	_, err := repo.UpdateUser(context.Background(), "u1", models.UserPatch{})
	if !IsStorageError(err) {
		t.Errorf("expected *StorageError, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	// a missing row affects nothing and is still a success
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteUser(context.Background(), "missing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
