package repository

import (
	"database/sql"

	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

const employeeColumns = `id, code, first_name, last_name, email, default_position_id, work_site_name, is_active, created_at, version`

func scanEmployee(scanner interface{ Scan(...any) error }) (*domain.Employee, error) {
	employee := &domain.Employee{}
	var defaultPositionID sql.NullInt64

	dst := []any{
		&employee.ID,
		&employee.Code,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&defaultPositionID,
		&employee.WorkSiteName,
		&employee.IsActive,
		&employee.CreatedAt,
		&employee.Version,
	}
	if err := scanner.Scan(dst...); err != nil {
		return nil, err
	}

	if defaultPositionID.Valid {
		employee.DefaultPositionID = &defaultPositionID.Int64
	}
	return employee, nil
}

func (r *Repository) CreateEmployee(employee *domain.Employee) error {
	query := `
		INSERT INTO employees (code, first_name, last_name, email, default_position_id, work_site_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{employee.Code, employee.FirstName, employee.LastName, employee.Email, employee.DefaultPositionID, employee.WorkSiteName}
	dst := []any{&employee.ID, &employee.IsActive, &employee.CreatedAt, &employee.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...)
}

func (r *Repository) GetAllEmployees() ([]*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY id`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// GetEmployeesByIDs 返回 id -> 员工，不存在的 id 不会出现在结果中
func (r *Repository) GetEmployeesByIDs(ids []int64) (map[int64]*domain.Employee, error) {
	employees := make(map[int64]*domain.Employee, len(ids))
	if len(ids) == 0 {
		return employees, nil
	}

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ANY($1)`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees[employee.ID] = employee
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *Repository) CheckEmployeeCodeIfExists(code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM employees WHERE code = $1)`

	ctx, cancel := r.queryContext()
	defer cancel()

	var exists bool
	if err := r.dbpool.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
