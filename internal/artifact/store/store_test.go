package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
	"github.com/MrJamesThe3rd/accountill/internal/artifact/store"
)

var columns = []string{"key", "content", "content_type", "page_format", "filename", "created_at"}

var created = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

func newStore(t *testing.T, ttl time.Duration) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return store.New(db, ttl), mock
}

func TestStore_Migrate(t *testing.T) {
	s, mock := newStore(t, 0)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS invoice_artifacts").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
}

func TestStore_Save(t *testing.T) {
	type testCase struct {
		name      string
		ttl       time.Duration
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   string
	}

	a := &artifact.Artifact{
		Key:         "k1",
		Content:     []byte("%PDF-1.3"),
		ContentType: artifact.ContentTypePDF,
		PageFormat:  "A4",
		Filename:    artifact.DefaultFilename,
		CreatedAt:   created,
	}

	insert := regexp.QuoteMeta("INSERT INTO invoice_artifacts")
	purge := regexp.QuoteMeta("DELETE FROM invoice_artifacts WHERE expires_at IS NOT NULL")

	tests := []testCase{
		{
			name: "NoExpiry",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insert).
					WithArgs("k1", []byte("%PDF-1.3"), artifact.ContentTypePDF, "A4", "invoice.pdf", created, nil).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(purge).WillReturnResult(sqlmock.NewResult(0, 0))
			},
		},
		{
			name: "WithExpiry",
			ttl:  time.Hour,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insert).
					WithArgs("k1", []byte("%PDF-1.3"), artifact.ContentTypePDF, "A4", "invoice.pdf", created, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(purge).WillReturnResult(sqlmock.NewResult(0, 3))
			},
		},
		{
			name: "InsertFails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insert).WillReturnError(errors.New("connection reset"))
			},
			wantErr: "saving artifact: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newStore(t, tt.ttl)
			tt.setupMock(mock)

			err := s.Save(context.Background(), a)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestStore_Load(t *testing.T) {
	type testCase struct {
		name      string
		key       string
		setupMock func(mock sqlmock.Sqlmock)
		wantKey   string
		wantErr   error
	}

	byKey := `FROM invoice_artifacts\s+WHERE key = \$1`
	latest := `ORDER BY saved_at DESC\s+LIMIT 1`

	tests := []testCase{
		{
			name: "ByKey",
			key:  "k1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(byKey).WithArgs("k1").WillReturnRows(
					sqlmock.NewRows(columns).AddRow("k1", []byte("%PDF-1.3"), artifact.ContentTypePDF, "A4", "invoice.pdf", created))
			},
			wantKey: "k1",
		},
		{
			name: "Latest",
			key:  artifact.Latest,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(latest).WillReturnRows(
					sqlmock.NewRows(columns).AddRow("k2", []byte("%PDF-1.3"), artifact.ContentTypePDF, "Letter", "invoice.pdf", created))
			},
			wantKey: "k2",
		},
		{
			name: "LatestBeforeFirstSave",
			key:  artifact.Latest,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(latest).WillReturnRows(sqlmock.NewRows(columns))
			},
			wantErr: artifact.ErrNotFound,
		},
		{
			name: "UnknownKey",
			key:  "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(byKey).WithArgs("missing").WillReturnRows(sqlmock.NewRows(columns))
			},
			wantErr: artifact.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newStore(t, 0)
			tt.setupMock(mock)

			got, err := s.Load(context.Background(), tt.key)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, got.Key)
			assert.Equal(t, []byte("%PDF-1.3"), got.Content)
			assert.True(t, created.Equal(got.CreatedAt))
		})
	}
}

func TestStore_LoadDriverError(t *testing.T) {
	s, mock := newStore(t, 0)

	mock.ExpectQuery("FROM invoice_artifacts").WillReturnError(errors.New("too many connections"))

	_, err := s.Load(context.Background(), "k1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, artifact.ErrNotFound)
	assert.ErrorContains(t, err, "too many connections")
}
