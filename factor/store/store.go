// Package store persists parsed factors to SQLite so callers can review
// what was parsed and how it was classified.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/logger"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 500
)

// Query constants
const (
	insertQuery = `
		INSERT INTO parsed_factors (
			id, raw_text, player, team, opponent, league, entity_type, factor_type,
			condition_operator, condition_count, is_negated, confidence, document,
			parsed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	getQuery = `
		SELECT id, document, created_at FROM parsed_factors WHERE id = ?`

	recentQuery = `
		SELECT id, document, created_at FROM parsed_factors
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`

	countByTypeQuery = `
		SELECT factor_type, COUNT(*) FROM parsed_factors
		GROUP BY factor_type`
)

// Record is one stored parse
type Record struct {
	ID        string              `json:"id"`
	Factor    *types.ParsedFactor `json:"factor"`
	CreatedAt time.Time           `json:"created_at"`
}

// FactorStore reads and writes the parsed_factors table created by the db
// migrations.
type FactorStore struct {
	db    *sql.DB
	log   *zap.SugaredLogger
	now   func() time.Time
	newID func() string
}

// New wraps a migrated database. A nil log uses the "store" component logger.
func New(db *sql.DB, log *zap.SugaredLogger) *FactorStore {
	if log == nil {
		log = logger.ComponentLogger("store")
	}
	return &FactorStore{
		db:    db,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Save stores pf and returns its new ID
func (s *FactorStore) Save(ctx context.Context, pf *types.ParsedFactor) (string, error) {
	if pf == nil {
		return "", errors.NewInvalidRequestError("factor is nil")
	}
	doc, err := json.Marshal(pf)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal factor")
	}

	id := s.newID()
	_, err = s.db.ExecContext(ctx, insertQuery,
		id, pf.RawText,
		nullString(pf.Player), nullString(pf.Team), nullString(pf.Opponent), nullString(pf.League),
		string(pf.EntityType), pf.FactorType, string(pf.ConditionOperator),
		len(pf.Conditions), pf.IsNegated, pf.Confidence, string(doc),
		pf.ParsingTime.UTC(), s.now().UTC(),
	)
	if err != nil {
		return "", errors.Wrap(err, "failed to save factor")
	}

	s.log.Debugw("factor saved",
		logger.FieldFactorID, id,
		logger.FieldFactorType, pf.FactorType,
	)
	return id, nil
}

// Get loads one record. Unknown IDs return an ErrNotFound error.
func (s *FactorStore) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, getQuery, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("factor %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load factor %s", id)
	}
	return rec, nil
}

// Recent returns the newest records first. limit is clamped to
// [1, MaxRecentLimit]; zero or less means DefaultRecentLimit.
func (s *FactorStore) Recent(ctx context.Context, limit int) ([]*Record, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	rows, err := s.db.QueryContext(ctx, recentQuery, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent factors")
	}
	defer rows.Close()

	records := make([]*Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan factor")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate factors")
	}
	return records, nil
}

// CountByType tallies stored factors per factor_type
func (s *FactorStore) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, countByTypeQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count factors")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var ft string
		var n int
		if err := rows.Scan(&ft, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan count")
		}
		counts[ft] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate counts")
	}
	return counts, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec Record
		doc string
	)
	if err := row.Scan(&rec.ID, &doc, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Factor = &types.ParsedFactor{}
	if err := json.Unmarshal([]byte(doc), rec.Factor); err != nil {
		return nil, errors.Wrapf(err, "corrupt document for factor %s", rec.ID)
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
