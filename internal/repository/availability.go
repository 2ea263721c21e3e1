package repository

import (
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

func (r *Repository) InsertAvailability(availability *domain.Availability) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先把原先的记录删除再插入
	query := `DELETE FROM availabilities WHERE emp_id = $1 AND schedule_id = $2`
	if _, err := tx.ExecContext(ctx, query, availability.EmpID, availability.ScheduleID); err != nil {
		return err
	}

	query = `
		INSERT INTO availabilities (emp_id, schedule_id)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, availability.EmpID, availability.ScheduleID).Scan(&availability.ID, &availability.CreatedAt, &availability.Version); err != nil {
		return err
	}

	for _, item := range availability.Items {
		query := `
			INSERT INTO availability_items (availability_id, shift_id)
			VALUES ($1, $2)
			RETURNING id
		`
		var itemID int64
		if err := tx.QueryRowContext(ctx, query, availability.ID, item.ShiftID).Scan(&itemID); err != nil {
			return err
		}

		for _, day := range item.Days {
			query := `
				INSERT INTO availability_item_days (availability_item_id, day_of_week)
				VALUES ($1, $2)
			`
			if _, err := tx.ExecContext(ctx, query, itemID, day); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllAvailabilityByScheduleID(scheduleID int64) ([]*domain.Availability, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			a.id,
			a.emp_id,
			ai.id,
			ai.shift_id,
			aid.day_of_week,
			a.created_at,
			a.version
		FROM availabilities a
		LEFT JOIN availability_items ai ON a.id = ai.availability_id
		LEFT JOIN availability_item_days aid ON ai.id = aid.availability_item_id
		WHERE a.schedule_id = $1
		ORDER BY a.id, ai.id, aid.day_of_week
	`

	rows, err := r.dbpool.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	availabilities := make([]*domain.Availability, 0)
	availabilityMap := make(map[int64]*domain.Availability)
	itemIndex := make(map[int64]int) // itemID -> 在 Items 中的下标

	for rows.Next() {
		var row struct {
			availabilityID int64
			empID          int64
			itemID         sql.NullInt64
			shiftID        sql.NullInt64
			day            sql.NullInt32
			createdAt      time.Time
			version        int32
		}

		dst := []any{
			&row.availabilityID,
			&row.empID,
			&row.itemID,
			&row.shiftID,
			&row.day,
			&row.createdAt,
			&row.version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		availability, exists := availabilityMap[row.availabilityID]
		if !exists {
			availability = &domain.Availability{
				ID:         row.availabilityID,
				ScheduleID: scheduleID,
				EmpID:      row.empID,
				Items:      make([]domain.AvailabilityItem, 0),
				CreatedAt:  row.createdAt,
				Version:    row.version,
			}
			availabilityMap[row.availabilityID] = availability
			availabilities = append(availabilities, availability)
		}

		if !row.itemID.Valid {
			continue
		}

		idx, exists := itemIndex[row.itemID.Int64]
		if !exists {
			availability.Items = append(availability.Items, domain.AvailabilityItem{
				ShiftID: row.shiftID.Int64,
				Days:    make([]int32, 0),
			})
			idx = len(availability.Items) - 1
			itemIndex[row.itemID.Int64] = idx
		}

		// 该班次没有任何可用的天数
		if !row.day.Valid {
			continue
		}

		availability.Items[idx].Days = append(availability.Items[idx].Days, row.day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return availabilities, nil
}
