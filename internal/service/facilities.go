package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/sportsmap-api/internal/models"
	"github.com/pribylovaa/sportsmap-api/internal/pkg/log"
	"github.com/pribylovaa/sportsmap-api/internal/storage"
)

// CreateFacility создаёт спортивный объект.
func (s *Service) CreateFacility(ctx context.Context, fields models.FacilityFields) (*models.Facility, error) {
	const op = "service.facilities.CreateFacility"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fields, err = validateFacility(fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	facility := &models.Facility{
		ID:             uuid.New(),
		FacilityFields: fields,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := tx.SaveFacility(ctx, facility); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapFacilityErr(err))
	}

	log.From(ctx).Info("facility_created", slog.String("facility_id", facility.ID.String()))

	return facility, nil
}

// UpdateFacility полностью заменяет изменяемые поля объекта.
func (s *Service) UpdateFacility(ctx context.Context, id uuid.UUID, fields models.FacilityFields) (*models.Facility, error) {
	const op = "service.facilities.UpdateFacility"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fields, err = validateFacility(fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	facility, err := tx.UpdateFacility(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapFacilityErr(err))
	}

	return facility, nil
}

// SetFacilityHidden скрывает объект из публичной выдачи или возвращает его.
func (s *Service) SetFacilityHidden(ctx context.Context, id uuid.UUID, hidden bool) (*models.Facility, error) {
	const op = "service.facilities.SetFacilityHidden"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	facility, err := tx.SetFacilityHidden(ctx, id, hidden)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapFacilityErr(err))
	}

	return facility, nil
}

// DeleteFacility удаляет объект.
func (s *Service) DeleteFacility(ctx context.Context, id uuid.UUID) error {
	const op = "service.facilities.DeleteFacility"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.DeleteFacility(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapFacilityErr(err))
	}

	log.From(ctx).Info("facility_deleted", slog.String("facility_id", id.String()))

	return nil
}

// FacilityByID возвращает объект по ID.
func (s *Service) FacilityByID(ctx context.Context, id uuid.UUID) (*models.Facility, error) {
	const op = "service.facilities.FacilityByID"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	facility, err := tx.FacilityByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapFacilityErr(err))
	}

	return facility, nil
}

// ListFacilities возвращает все объекты в порядке создания.
func (s *Service) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	const op = "service.facilities.ListFacilities"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	list, err := tx.ListFacilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// SearchFacilities ищет объекты. Ссылка на неизвестное поле или значение
// неподходящего типа - ErrValidation.
func (s *Service) SearchFacilities(ctx context.Context, search models.FacilitySearch) ([]models.Facility, error) {
	const op = "service.facilities.SearchFacilities"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	list, err := tx.SearchFacilities(ctx, search)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidQuery) {
			return nil, fmt.Errorf("%s: %w", op, invalid("search", unwrapReason(err)))
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func mapFacilityErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrFacilityNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return ErrFacilityExists
	}

	return err
}

// unwrapReason отрезает префиксы op от текста ошибки хранилища.
func unwrapReason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, storage.ErrInvalidQuery.Error()); i >= 0 {
		return msg[i:]
	}

	return msg
}

// validateFacility проверяет обязательные поля, перечисления и числа.
func validateFacility(f models.FacilityFields) (models.FacilityFields, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return f, invalid("name", "is required")
	}

	if f.X == nil || !isFinite(*f.X) {
		return f, invalid("x", "is required")
	}
	if f.Y == nil || !isFinite(*f.Y) {
		return f, invalid("y", "is required")
	}

	if !f.PayingType.Valid() {
		return f, invalid("paying_type", fmt.Sprintf("unknown value %q", f.PayingType))
	}

	if f.Type != nil && !f.Type.Valid() {
		return f, invalid("type", fmt.Sprintf("unknown value %q", *f.Type))
	}
	if f.PropertyForm != nil && !f.PropertyForm.Valid() {
		return f, invalid("property_form", fmt.Sprintf("unknown value %q", *f.PropertyForm))
	}
	if f.ConvertingType != nil && !f.ConvertingType.Valid() {
		return f, invalid("converting_type", fmt.Sprintf("unknown value %q", *f.ConvertingType))
	}

	measures := []struct {
		name string
		v    *float64
	}{
		{"length", f.Length},
		{"width", f.Width},
		{"area", f.Area},
		{"height", f.Height},
		{"size", f.Size},
		{"depth", f.Depth},
	}
	for _, m := range measures {
		if m.v != nil && (!isFinite(*m.v) || *m.v < 0) {
			return f, invalid(m.name, "must be a non-negative number")
		}
	}

	return f, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
