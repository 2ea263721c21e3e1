package repository

import (
	"database/sql"
	"fmt"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

// GetAssignmentsByWeek 返回从 weekStart 开始七天内所有已提交的排班
func (r *Repository) GetAssignmentsByWeek(weekStart string) ([]domain.Assignment, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			id,
			emp_id,
			position_id,
			shift_id,
			to_char(work_date, 'YYYY-MM-DD'),
			to_char(custom_start_time, 'HH24:MI'),
			to_char(custom_end_time, 'HH24:MI'),
			assignment_type,
			created_at
		FROM assignments
		WHERE work_date >= $1::date AND work_date < $1::date + 7
		ORDER BY work_date, position_id, shift_id, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, weekStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]domain.Assignment, 0)
	for rows.Next() {
		var assignment domain.Assignment
		var customStart, customEnd sql.NullString

		dst := []any{
			&assignment.ID,
			&assignment.EmpID,
			&assignment.PositionID,
			&assignment.ShiftID,
			&assignment.WorkDate,
			&customStart,
			&customEnd,
			&assignment.AssignmentType,
			&assignment.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if customStart.Valid {
			assignment.CustomStartTime = &customStart.String
		}
		if customEnd.Valid {
			assignment.CustomEndTime = &customEnd.String
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// CommitAssignmentChanges 在一个事务中写入一个岗位的所有修改，先删除再插入，
// 这样交换两名员工时不会因为唯一约束而失败
func (r *Repository) CommitAssignmentChanges(changes []domain.PendingChange) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, change := range changes {
		if change.Action != domain.ActionRemove {
			continue
		}

		if change.AssignmentID != nil {
			query := `DELETE FROM assignments WHERE id = $1`
			if _, err := tx.ExecContext(ctx, query, *change.AssignmentID); err != nil {
				return err
			}
			continue
		}

		query := `
			DELETE FROM assignments
			WHERE emp_id = $1 AND position_id = $2 AND shift_id = $3 AND work_date = $4::date
		`
		if _, err := tx.ExecContext(ctx, query, change.EmpID, change.PositionID, change.ShiftID, change.Date); err != nil {
			return err
		}
	}

	for _, change := range changes {
		switch change.Action {
		case domain.ActionRemove:
			continue
		case domain.ActionAssign:
		default:
			return fmt.Errorf("不支持的修改类型: %s", change.Action)
		}

		assignmentType := domain.AssignmentTypeRegular
		if change.IsFlexible {
			assignmentType = domain.AssignmentTypeFlexible
		}

		query := `
			INSERT INTO assignments (emp_id, position_id, shift_id, work_date, custom_start_time, custom_end_time, assignment_type)
			VALUES ($1, $2, $3, $4::date, $5::time, $6::time, $7)
		`
		args := []any{change.EmpID, change.PositionID, change.ShiftID, change.Date, change.CustomStartTime, change.CustomEndTime, assignmentType}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
