package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

// MySQLAdapter persists visits and exemption usage. Schema:
//
//	CREATE TABLE visits (
//	    id         VARCHAR(64) PRIMARY KEY,
//	    person_id  VARCHAR(64) NOT NULL,
//	    visited_at DATETIME    NOT NULL,
//	    fractions  JSON        NOT NULL,
//	    KEY idx_person_month (person_id, visited_at)
//	);
//
//	CREATE TABLE exemption_usage (
//	    visitor_id VARCHAR(64)   NOT NULL,
//	    year       INT           NOT NULL,
//	    kilograms  DECIMAL(12,3) NOT NULL,
//	    PRIMARY KEY (visitor_id, year)
//	);
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

type fractionRow struct {
	Type      string `json:"type"`
	Kilograms string `json:"kilograms"`
}

func (m *MySQLAdapter) Save(ctx context.Context, visit *domain.Visit) error {
	rows := make([]fractionRow, 0, len(visit.Fractions()))
	for _, f := range visit.Fractions() {
		rows = append(rows, fractionRow{
			Type:      f.Type().String(),
			Kilograms: f.Weight().Kilograms().String(),
		})
	}
	fractions, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal fractions: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO visits (id, person_id, visited_at, fractions)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE person_id = VALUES(person_id),
			visited_at = VALUES(visited_at), fractions = VALUES(fractions)`,
		visit.ID, visit.PersonID, visit.Date, fractions,
	)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) CountForPersonInMonth(ctx context.Context, personID string, year int, month time.Month) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM visits
		WHERE person_id = ? AND YEAR(visited_at) = ? AND MONTH(visited_at) = ?`,
		personID, year, int(month),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return count, nil
}

func (m *MySQLAdapter) FindForPersonInMonth(ctx context.Context, personID string, year int, month time.Month) ([]*domain.Visit, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, person_id, visited_at, fractions FROM visits
		WHERE person_id = ? AND YEAR(visited_at) = ? AND MONTH(visited_at) = ?
		ORDER BY visited_at`,
		personID, year, int(month),
	)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	var visits []*domain.Visit
	for rows.Next() {
		var (
			id, pid   string
			visitedAt time.Time
			raw       []byte
		)
		if err := rows.Scan(&id, &pid, &visitedAt, &raw); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visit, err := unmarshalVisit(id, pid, visitedAt, raw)
		if err != nil {
			return nil, err
		}
		visits = append(visits, visit)
	}
	return visits, rows.Err()
}

func unmarshalVisit(id, personID string, visitedAt time.Time, raw []byte) (*domain.Visit, error) {
	var frs []fractionRow
	if err := json.Unmarshal(raw, &frs); err != nil {
		return nil, fmt.Errorf("unmarshal fractions: %w", err)
	}

	fractions := make([]domain.DroppedFraction, 0, len(frs))
	for _, fr := range frs {
		fractionType, err := domain.ParseFractionType(fr.Type)
		if err != nil {
			return nil, fmt.Errorf("stored visit %s: %w", id, err)
		}
		kilograms, err := decimal.NewFromString(fr.Kilograms)
		if err != nil {
			return nil, fmt.Errorf("stored visit %s: %w", id, err)
		}
		weight, err := domain.NewWeight(kilograms)
		if err != nil {
			return nil, fmt.Errorf("stored visit %s: %w", id, err)
		}
		fractions = append(fractions, domain.NewDroppedFraction(fractionType, weight))
	}

	return domain.NewVisit(id, personID, visitedAt, fractions)
}

func (m *MySQLAdapter) Reset(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM visits`); err != nil {
		return fmt.Errorf("clear visits: %w", err)
	}
	if _, err := m.db.ExecContext(ctx, `DELETE FROM exemption_usage`); err != nil {
		return fmt.Errorf("clear exemption usage: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UsedInYear(ctx context.Context, visitorID string, year int) (decimal.Decimal, error) {
	var raw string
	err := m.db.QueryRowContext(ctx, `
		SELECT kilograms FROM exemption_usage WHERE visitor_id = ? AND year = ?`,
		visitorID, year,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query exemption usage: %w", err)
	}

	used, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse exemption usage: %w", err)
	}
	return used, nil
}

func (m *MySQLAdapter) Record(ctx context.Context, visitorID string, year int, kilograms decimal.Decimal) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO exemption_usage (visitor_id, year, kilograms)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE kilograms = kilograms + VALUES(kilograms)`,
		visitorID, year, kilograms.String(),
	)
	if err != nil {
		return fmt.Errorf("record exemption usage: %w", err)
	}
	return nil
}
