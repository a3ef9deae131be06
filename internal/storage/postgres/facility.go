package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/sportsmap-api/internal/models"
	"github.com/pribylovaa/sportsmap-api/internal/storage"
)

// facilityColumns — единый список колонок facilities для SELECT/RETURNING,
// гарантирующий одинаковый порядок сканирования.
const facilityColumns = `id, name, x, y, type, owner_name, property_form, length, width, area,
actual_workload, annual_capacity, notes, height, size, depth, converting_type,
is_accessible_for_disabled, paying_type, who_can_use, link, phone_number, open_hours,
eps, hidden, created_at, updated_at`

// scanFacility сканирует одну строку в модель. Перечисления читаются
// как текст и приводятся к доменным типам.
func scanFacility(row pgx.Row) (*models.Facility, error) {
	var (
		f              models.Facility
		typ            *string
		propertyForm   *string
		convertingType *string
		payingType     string
	)

	if err := row.Scan(
		&f.ID,
		&f.Name,
		&f.X,
		&f.Y,
		&typ,
		&f.OwnerName,
		&propertyForm,
		&f.Length,
		&f.Width,
		&f.Area,
		&f.ActualWorkload,
		&f.AnnualCapacity,
		&f.Notes,
		&f.Height,
		&f.Size,
		&f.Depth,
		&convertingType,
		&f.IsAccessibleForDisabled,
		&payingType,
		&f.WhoCanUse,
		&f.Link,
		&f.PhoneNumber,
		&f.OpenHours,
		&f.EPS,
		&f.Hidden,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}

	f.Type = enumPtr[models.FacilityType](typ)
	f.PropertyForm = enumPtr[models.PropertyForm](propertyForm)
	f.ConvertingType = enumPtr[models.CoveringType](convertingType)
	f.PayingType = models.PayingType(payingType)

	return &f, nil
}

func scanFacilities(rows pgx.Rows) ([]models.Facility, error) {
	defer rows.Close()

	out := make([]models.Facility, 0)
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func enumPtr[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}

func textPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

// fieldArgs — аргументы для колонок name..hidden в порядке facilityColumns.
func fieldArgs(f models.FacilityFields) []any {
	return []any{
		f.Name,
		f.X,
		f.Y,
		textPtr(f.Type),
		f.OwnerName,
		textPtr(f.PropertyForm),
		f.Length,
		f.Width,
		f.Area,
		f.ActualWorkload,
		f.AnnualCapacity,
		f.Notes,
		f.Height,
		f.Size,
		f.Depth,
		textPtr(f.ConvertingType),
		f.IsAccessibleForDisabled,
		string(f.PayingType),
		f.WhoCanUse,
		f.Link,
		f.PhoneNumber,
		f.OpenHours,
		f.EPS,
		f.Hidden,
	}
}

// SaveFacility создаёт объект.
// Ошибки: storage.ErrAlreadyExists при конфликте по id или name.
func (t *Tx) SaveFacility(ctx context.Context, facility *models.Facility) error {
	const op = "storage.postgres.SaveFacility"

	query := `
		INSERT INTO facilities (` + facilityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	args := append([]any{facility.ID}, fieldArgs(facility.FacilityFields)...)
	args = append(args, facility.CreatedAt, facility.UpdatedAt)

	if _, err := t.tx.Exec(ctx, query, args...); err != nil {
		return mapErr(op, err)
	}

	return nil
}

// FacilityByID находит объект по ID.
func (t *Tx) FacilityByID(ctx context.Context, id uuid.UUID) (*models.Facility, error) {
	const op = "storage.postgres.FacilityByID"

	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1`

	f, err := scanFacility(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return f, nil
}

// UpdateFacility заменяет все изменяемые поля и сдвигает updated_at.
func (t *Tx) UpdateFacility(ctx context.Context, id uuid.UUID, fields models.FacilityFields) (*models.Facility, error) {
	const op = "storage.postgres.UpdateFacility"

	query := `
		UPDATE facilities SET
			name = $2, x = $3, y = $4, type = $5, owner_name = $6, property_form = $7,
			length = $8, width = $9, area = $10, actual_workload = $11, annual_capacity = $12,
			notes = $13, height = $14, size = $15, depth = $16, converting_type = $17,
			is_accessible_for_disabled = $18, paying_type = $19, who_can_use = $20,
			link = $21, phone_number = $22, open_hours = $23, eps = $24, hidden = $25,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + facilityColumns

	args := append([]any{id}, fieldArgs(fields)...)

	f, err := scanFacility(t.tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return f, nil
}

// SetFacilityHidden меняет признак видимости.
func (t *Tx) SetFacilityHidden(ctx context.Context, id uuid.UUID, hidden bool) (*models.Facility, error) {
	const op = "storage.postgres.SetFacilityHidden"

	query := `UPDATE facilities SET hidden = $2, updated_at = now() WHERE id = $1 RETURNING ` + facilityColumns

	f, err := scanFacility(t.tx.QueryRow(ctx, query, id, hidden))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return f, nil
}

// DeleteFacility удаляет объект.
func (t *Tx) DeleteFacility(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteFacility"

	tag, err := t.tx.Exec(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	if err != nil {
		return mapErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// ListFacilities возвращает все объекты.
func (t *Tx) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	const op = "storage.postgres.ListFacilities"

	rows, err := t.tx.Query(ctx, `SELECT `+facilityColumns+` FROM facilities ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr(op, err)
	}

	out, err := scanFacilities(rows)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return out, nil
}

// SearchFacilities выполняет поиск по условиям buildSearch.
func (t *Tx) SearchFacilities(ctx context.Context, search models.FacilitySearch) ([]models.Facility, error) {
	const op = "storage.postgres.SearchFacilities"

	query, args, err := buildSearch(search)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}

	out, err := scanFacilities(rows)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return out, nil
}
