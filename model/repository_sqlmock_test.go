package model

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockRepository wires a gormRepository over a sqlmock-driven *sql.DB
// so ListCandidates/UpdateConnectStatus/IncrementQuota can be exercised
// against exact SQL expectations without a real database.
func setupMockRepository(t *testing.T) (*gormRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	mock.MatchExpectationsInOrder(false)

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})
	gdb, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })

	return &gormRepository{db: gdb, candidates: newCandidateCache()}, mock
}

func TestListCandidatesQueriesEligibleRowsOrderedByPriority(t *testing.T) {
	repo, mock := setupMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "vendor", "model_name", "priority", "status", "connect_status"}).
		AddRow(1, "openai", "gpt-4", 1, 1, 1).
		AddRow(2, "anthropic", "claude", 2, 1, 1)
	mock.ExpectQuery("SELECT \\* FROM `model_config` WHERE status = 1 AND connect_status = 1").
		WillReturnRows(rows)

	out, err := repo.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "gpt-4", out[0].ModelName)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCandidatesServesFromCacheOnSecondCall(t *testing.T) {
	repo, mock := setupMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "vendor", "model_name", "priority", "status", "connect_status"}).
		AddRow(1, "openai", "gpt-4", 1, 1, 1)
	mock.ExpectQuery("SELECT \\* FROM `model_config`").WillReturnRows(rows)

	_, err := repo.ListCandidates(context.Background())
	require.NoError(t, err)

	// Second call must not issue another SELECT; sqlmock would fail an
	// unexpected query since only one ExpectQuery was registered.
	out, err := repo.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateConnectStatusWritesStatusAndFlushesCache(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `model_config` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo.candidates.Set([]ModelRecord{{Id: 7}})

	err := repo.UpdateConnectStatus(context.Background(), 7, true)
	require.NoError(t, err)

	_, ok := repo.candidates.Get()
	require.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementQuotaCreatesAndUpdatesQuotaStat(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectQuery("SELECT \\* FROM `quota_stat` WHERE model_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "model_id", "used_quota", "total_quota"}))
	// gorm wraps each of the three writes in its own transaction.
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	mock.ExpectExec("INSERT INTO `quota_stat`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `quota_stat` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `model_config` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	stat, err := repo.IncrementQuota(context.Background(), 7, 100, 80)
	require.NoError(t, err)
	require.Equal(t, int64(100), stat.UsedQuota)

	require.NoError(t, mock.ExpectationsWereMet())
}
