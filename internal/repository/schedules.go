package repository

import (
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

func (r *Repository) CreateSchedule(schedule *domain.Schedule) error {
	query := `
		INSERT INTO schedules (name, description, week_start)
		VALUES ($1, $2, $3::date)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, schedule.Name, schedule.Description, schedule.WeekStart).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.Version)
}

func (r *Repository) GetScheduleByID(id int64) (*domain.Schedule, error) {
	query := `
		SELECT name, description, to_char(week_start, 'YYYY-MM-DD'), created_at, version
		FROM schedules WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	schedule := &domain.Schedule{ID: id}
	dst := []any{&schedule.Name, &schedule.Description, &schedule.WeekStart, &schedule.CreatedAt, &schedule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (r *Repository) GetAllSchedules() ([]*domain.Schedule, error) {
	query := `
		SELECT id, name, description, to_char(week_start, 'YYYY-MM-DD'), created_at, version
		FROM schedules ORDER BY week_start DESC
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]*domain.Schedule, 0)
	for rows.Next() {
		schedule := &domain.Schedule{}
		dst := []any{&schedule.ID, &schedule.Name, &schedule.Description, &schedule.WeekStart, &schedule.CreatedAt, &schedule.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}
