package repository

import (
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

func (r *Repository) GetAllPositions() ([]*domain.Position, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			p.id,
			p.name,
			p.created_at,
			p.version,
			s.id,
			s.name,
			to_char(s.start_time, 'HH24:MI'),
			to_char(s.end_time, 'HH24:MI'),
			s.is_flexible,
			s.ends_next_day,
			sr.day_of_week,
			sr.required
		FROM positions p
		LEFT JOIN shifts s ON p.id = s.position_id
		LEFT JOIN shift_requirements sr ON s.id = sr.shift_id
		ORDER BY p.id, s.start_time, s.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make([]*domain.Position, 0)
	positionsMap := make(map[int64]*domain.Position)
	seenShifts := make(map[int64]bool)

	for rows.Next() {
		var row struct {
			ID        int64
			Name      string
			CreatedAt time.Time
			Version   int32

			ShiftID     sql.NullInt64
			ShiftName   sql.NullString
			StartTime   sql.NullString
			EndTime     sql.NullString
			IsFlexible  sql.NullBool
			EndsNextDay sql.NullBool
			Day         sql.NullInt32
			Required    sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.CreatedAt,
			&row.Version,
			&row.ShiftID,
			&row.ShiftName,
			&row.StartTime,
			&row.EndTime,
			&row.IsFlexible,
			&row.EndsNextDay,
			&row.Day,
			&row.Required,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		position, exists := positionsMap[row.ID]
		if !exists {
			position = &domain.Position{
				ID:           row.ID,
				Name:         row.Name,
				Shifts:       make([]domain.Shift, 0),
				Requirements: domain.Requirements{},
				CreatedAt:    row.CreatedAt,
				Version:      row.Version,
			}
			positionsMap[row.ID] = position
			positions = append(positions, position)
		}

		// 岗位下还没有班次
		if !row.ShiftID.Valid {
			continue
		}

		if !seenShifts[row.ShiftID.Int64] {
			seenShifts[row.ShiftID.Int64] = true
			position.Shifts = append(position.Shifts, domain.Shift{
				ID:          row.ShiftID.Int64,
				PositionID:  row.ID,
				Name:        row.ShiftName.String,
				StartTime:   row.StartTime.String,
				EndTime:     row.EndTime.String,
				IsFlexible:  row.IsFlexible.Bool,
				EndsNextDay: row.EndsNextDay.Bool,
			})
		}

		// 弹性班次没有人数需求
		if !row.Day.Valid {
			continue
		}

		position.Requirements.Set(row.ShiftID.Int64, row.Day.Int32, row.Required.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return positions, nil
}

// CreatePosition 同时插入岗位的班次和每个班次每天的需求人数
func (r *Repository) CreatePosition(position *domain.Position) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO positions (name)
		VALUES ($1)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, position.Name).Scan(&position.ID, &position.CreatedAt, &position.Version); err != nil {
		return err
	}

	// 需求是按照插入前的班次 ID 给出的，插入后需要换成数据库分配的 ID
	requirements := domain.Requirements{}

	for i := range position.Shifts {
		shift := &position.Shifts[i]
		oldID := shift.ID

		query = `
			INSERT INTO shifts (position_id, name, start_time, end_time, is_flexible, ends_next_day)
			VALUES ($1, $2, $3::time, $4::time, $5, $6)
			RETURNING id
		`
		params := []any{position.ID, shift.Name, shift.StartTime, shift.EndTime, shift.IsFlexible, shift.EndsNextDay}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&shift.ID); err != nil {
			return err
		}
		shift.PositionID = position.ID

		for day, required := range position.Requirements[oldID] {
			query = `
				INSERT INTO shift_requirements (shift_id, day_of_week, required)
				VALUES ($1, $2, $3)
			`
			if _, err := tx.ExecContext(ctx, query, shift.ID, day, required); err != nil {
				return err
			}
			requirements.Set(shift.ID, day, required)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	position.Requirements = requirements
	return nil
}

// CreateFlexibleShift 把一次跨班次拖拽的结果保存为新的弹性班次，跨日的班次结束时间落在第二天
func (r *Repository) CreateFlexibleShift(span *domain.SpanDetails, name string) (*domain.Shift, error) {
	query := `
		INSERT INTO shifts (position_id, name, start_time, end_time, is_flexible, ends_next_day)
		VALUES ($1, $2, $3::time, $4::time, TRUE, $5)
		RETURNING id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	if name == "" {
		name = span.SuggestedName
	}

	shift := &domain.Shift{
		PositionID:  span.PositionID,
		Name:        name,
		StartTime:   span.StartTime,
		EndTime:     span.EndTime,
		IsFlexible:  true,
		EndsNextDay: span.IsCrossDay,
	}

	args := []any{shift.PositionID, shift.Name, shift.StartTime, shift.EndTime, shift.EndsNextDay}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.ID); err != nil {
		return nil, err
	}

	return shift, nil
}
