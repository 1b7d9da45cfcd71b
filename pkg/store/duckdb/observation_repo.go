package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tunogya/rankview/pkg/model"
)

// sqlDateLayout is how dates are bound and cast into DATE columns
const sqlDateLayout = "2006-01-02"

// ObservationRepo handles rank observation persistence
type ObservationRepo struct {
	client *Client
}

// NewObservationRepo creates a new observation repository
func NewObservationRepo(client *Client) *ObservationRepo {
	return &ObservationRepo{client: client}
}

// ReplaceDataset swaps a dataset's observations in one transaction. seq
// records each observation's position so reads return source order.
func (r *ObservationRepo) ReplaceDataset(ctx context.Context, id model.DatasetID, obs []model.RankObservation) error {
	if err := model.CheckObservations(obs); err != nil {
		return fmt.Errorf("dataset %s: %w", id, err)
	}

	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM rank_observations WHERE dataset_id = ?", string(id)); err != nil {
		return fmt.Errorf("failed to clear dataset %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rank_observations (dataset_id, seq, asin, obs_date, sales_rank)
		VALUES (?, ?, ?, CAST(? AS DATE), ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, o := range obs {
		_, err := stmt.ExecContext(ctx,
			string(id), int64(i), o.ASIN, o.Date.Time().Format(sqlDateLayout), o.Rank,
		)
		if err != nil {
			return fmt.Errorf("failed to insert observation %s %s: %w", o.ASIN, o.Date, err)
		}
	}

	return tx.Commit()
}

// GetByDataset retrieves every observation of a dataset in source order
func (r *ObservationRepo) GetByDataset(ctx context.Context, id model.DatasetID) ([]model.RankObservation, error) {
	query := `
		SELECT asin, obs_date, sales_rank
		FROM rank_observations
		WHERE dataset_id = ?
		ORDER BY seq ASC
	`
	return r.query(ctx, query, string(id))
}

// DateBounds returns the earliest and latest observation date of a dataset
func (r *ObservationRepo) DateBounds(ctx context.Context, id model.DatasetID) (model.DateRange, error) {
	var minDate, maxDate sql.NullTime
	row := r.client.QueryRow(ctx,
		"SELECT MIN(obs_date), MAX(obs_date) FROM rank_observations WHERE dataset_id = ?",
		string(id),
	)
	if err := row.Scan(&minDate, &maxDate); err != nil {
		return model.DateRange{}, fmt.Errorf("failed to query date bounds: %w", err)
	}
	if !minDate.Valid || !maxDate.Valid {
		return model.DateRange{}, fmt.Errorf("dataset %s: no observations stored", id)
	}
	return model.NewDateRange(model.DateOf(minDate.Time), model.DateOf(maxDate.Time)), nil
}

// Count returns the number of observations stored for a dataset
func (r *ObservationRepo) Count(ctx context.Context, id model.DatasetID) (int64, error) {
	var count int64
	row := r.client.QueryRow(ctx,
		"SELECT COUNT(*) FROM rank_observations WHERE dataset_id = ?",
		string(id),
	)
	err := row.Scan(&count)
	return count, err
}

func (r *ObservationRepo) query(ctx context.Context, query string, args ...interface{}) ([]model.RankObservation, error) {
	rows, err := r.client.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	obs := make([]model.RankObservation, 0)
	for rows.Next() {
		var o model.RankObservation
		var date time.Time
		if err := rows.Scan(&o.ASIN, &date, &o.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		o.Date = model.DateOf(date)
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}

	return obs, nil
}
