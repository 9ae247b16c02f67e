package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/types"
	qtesting "github.com/teranos/qfactor/internal/testing"
)

var parsedAt = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

func sampleFactor(raw, player, factorType string) *types.ParsedFactor {
	pf := types.NewParsedFactor(raw)
	pf.Player = player
	pf.League = "NBA"
	pf.EntityType = types.EntityPlayer
	pf.FactorType = factorType
	pf.Confidence = 0.7225
	pf.ParsingTime = parsedAt
	cond := types.NewCondition()
	cond.Text = "points"
	cond.Type = types.ConditionScoring
	cond.Value = 25
	cond.ComparisonType = types.GreaterThan
	cond.Confidence = 0.9
	pf.Conditions = []types.FactorCondition{cond}
	return pf
}

// steppingClock returns successive seconds so created_at ordering is stable
func steppingClock() func() time.Time {
	t := parsedAt
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newSQLiteStore(t *testing.T) *FactorStore {
	t.Helper()
	s := New(qtesting.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	s.now = steppingClock()
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	pf := sampleFactor("LeBron James scores over 25 points", "LeBron James", types.FactorPlayerScoring)
	id, err := s.Save(ctx, pf)
	require.NoError(t, err)
	require.Len(t, id, 36, "uuid string")

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, pf.RawText, rec.Factor.RawText)
	assert.Equal(t, "LeBron James", rec.Factor.Player)
	assert.Equal(t, types.FactorPlayerScoring, rec.Factor.FactorType)
	require.Len(t, rec.Factor.Conditions, 1)
	assert.Equal(t, types.GreaterThan, rec.Factor.Conditions[0].ComparisonType)
	assert.True(t, parsedAt.Equal(rec.Factor.ParsingTime))
	assert.True(t, parsedAt.Add(time.Second).Equal(rec.CreatedAt))

	var teamIsNull bool
	require.NoError(t, s.db.QueryRow("SELECT team IS NULL FROM parsed_factors WHERE id = ?", id).Scan(&teamIsNull))
	assert.True(t, teamIsNull, "empty team is stored as NULL")
}

func TestGetNotFound(t *testing.T) {
	s := newSQLiteStore(t)
	_, err := s.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestSaveNil(t *testing.T) {
	s := newSQLiteStore(t)
	_, err := s.Save(context.Background(), nil)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestRecentAndCounts(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	var ids []string
	for i, ft := range []string{types.FactorPlayerScoring, types.FactorTeamResult, types.FactorPlayerScoring} {
		id, err := s.Save(ctx, sampleFactor(fmt.Sprintf("factor %d", i), "LeBron James", ft))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, ids[2], recs[0].ID, "newest first")
	assert.Equal(t, ids[1], recs[1].ID)

	recs, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	counts, err := s.CountByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		types.FactorPlayerScoring: 2,
		types.FactorTeamResult:    1,
	}, counts)
}

func TestSaveSqlmock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, zaptest.NewLogger(t).Sugar())
	s.now = func() time.Time { return parsedAt }
	s.newID = func() string { return "factor-1" }

	pf := sampleFactor("LeBron James scores over 25 points", "LeBron James", types.FactorPlayerScoring)
	doc, err := json.Marshal(pf)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO parsed_factors`).
		WithArgs(
			"factor-1", pf.RawText,
			"LeBron James", nil, nil, "NBA",
			"player", types.FactorPlayerScoring, "NONE",
			1, false, 0.7225, string(doc),
			parsedAt, parsedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := s.Save(context.Background(), pf)
	require.NoError(t, err)
	assert.Equal(t, "factor-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSqlmockError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO parsed_factors`).WillReturnError(fmt.Errorf("disk I/O error"))

	_, err = New(db, nil).Save(context.Background(), sampleFactor("x", "", types.FactorGeneral))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save factor")
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestRecentSqlmockClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	doc, err := json.Marshal(sampleFactor("Lakers win", "", types.FactorTeamResult))
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM parsed_factors`)).
		WithArgs(MaxRecentLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document", "created_at"}).
			AddRow("a", string(doc), parsedAt))

	recs, err := New(db, nil).Recent(context.Background(), 10000)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Lakers win", recs[0].Factor.RawText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCorruptDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM parsed_factors WHERE id = ?`)).
		WithArgs("bad").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document", "created_at"}).
			AddRow("bad", "{not json", parsedAt))

	_, err = New(db, nil).Get(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt document")
	assert.False(t, errors.IsNotFoundError(err))
}
