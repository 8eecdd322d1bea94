package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newFAQRepoWithMock(t *testing.T) (*FAQRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewFAQRepository(db), mock, func() { _ = db.Close() }
}

func TestMatchReturnsFirstFAQByInsertionOrder(t *testing.T) {
	repo, mock, done := newFAQRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, question, answer").
		WithArgs("admission").
		WillReturnRows(sqlmock.NewRows([]string{"id", "question", "answer"}).
			AddRow(1, "What are the admission requirements?", "See the admissions office page."))

	faq, err := repo.Match(context.Background(), "admission")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if faq == nil || faq.ID != 1 {
		t.Fatalf("expected FAQ id=1, got %+v", faq)
	}
}

func TestMatchMissReturnsNilWithoutError(t *testing.T) {
	repo, mock, done := newFAQRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, question, answer").
		WithArgs("quantum chromodynamics").
		WillReturnError(sql.ErrNoRows)

	faq, err := repo.Match(context.Background(), "quantum chromodynamics")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if faq != nil {
		t.Fatalf("expected nil on miss, got %+v", faq)
	}
}

func TestSeedSkipsWhenRowsExist(t *testing.T) {
	repo, mock, done := newFAQRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	err := repo.Seed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
