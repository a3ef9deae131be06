package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/sportsmap-api/internal/models"
	"github.com/pribylovaa/sportsmap-api/internal/storage"
)

func validFields() models.FacilityFields {
	return models.FacilityFields{
		Name:       "Stadium",
		X:          ptr(55.75),
		Y:          ptr(37.61),
		PayingType: models.PayingTypeFullFree,
	}
}

func TestCreateFacility_OK(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)

	fields := validFields()
	fields.Name = "  Stadium "

	tx.EXPECT().SaveFacility(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f *models.Facility) error {
		require.NotEqual(t, uuid.Nil, f.ID)
		require.Equal(t, "Stadium", f.Name)
		require.Equal(t, f.CreatedAt, f.UpdatedAt)
		return nil
	})

	got, err := svc.CreateFacility(ctx, fields)
	require.NoError(t, err)
	require.Equal(t, "Stadium", got.Name)
	require.False(t, got.Hidden)
}

func TestCreateFacility_Duplicate(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)
	tx.EXPECT().SaveFacility(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("postgres.facility.SaveFacility: %w", storage.ErrAlreadyExists))

	_, err := svc.CreateFacility(ctx, validFields())
	require.ErrorIs(t, err, ErrFacilityExists)
}

func TestValidateFacility(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(f *models.FacilityFields)
		field  string
	}{
		{"empty_name", func(f *models.FacilityFields) { f.Name = " " }, "name"},
		{"missing_x", func(f *models.FacilityFields) { f.X = nil }, "x"},
		{"nan_y", func(f *models.FacilityFields) { f.Y = ptr(math.NaN()) }, "y"},
		{"missing_paying_type", func(f *models.FacilityFields) { f.PayingType = "" }, "paying_type"},
		{"unknown_type", func(f *models.FacilityFields) { f.Type = ptr(models.FacilityType("Stadium")) }, "type"},
		{"unknown_property_form", func(f *models.FacilityFields) { f.PropertyForm = ptr(models.PropertyForm("State")) }, "property_form"},
		{"unknown_covering", func(f *models.FacilityFields) { f.ConvertingType = ptr(models.CoveringType("Grass")) }, "converting_type"},
		{"negative_area", func(f *models.FacilityFields) { f.Area = ptr(-1.0) }, "area"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := validFields()
			tt.mutate(&f)

			_, err := validateFacility(f)
			require.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tt.field, ve.Field)
		})
	}

	_, err := validateFacility(validFields())
	require.NoError(t, err)
}

func TestUpdateFacility_NotFound(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)
	id := uuid.New()
	tx.EXPECT().UpdateFacility(gomock.Any(), id, gomock.Any()).Return(nil, storage.ErrNotFound)

	_, err := svc.UpdateFacility(ctx, id, validFields())
	require.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestUpdateFacility_InvalidSkipsStorage(t *testing.T) {
	t.Parallel()

	svc, _, ctx := newSvc(t)
	f := validFields()
	f.X = nil

	_, err := svc.UpdateFacility(ctx, uuid.New(), f)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetFacilityHidden(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)
	id := uuid.New()

	tx.EXPECT().SetFacilityHidden(gomock.Any(), id, true).
		Return(&models.Facility{ID: id, FacilityFields: models.FacilityFields{Hidden: true}}, nil)

	got, err := svc.SetFacilityHidden(ctx, id, true)
	require.NoError(t, err)
	require.True(t, got.Hidden)

	missing := uuid.New()
	tx.EXPECT().SetFacilityHidden(gomock.Any(), missing, false).Return(nil, storage.ErrNotFound)

	_, err = svc.SetFacilityHidden(ctx, missing, false)
	require.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestDeleteAndGetFacility_NotFound(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)
	id := uuid.New()

	tx.EXPECT().DeleteFacility(gomock.Any(), id).Return(storage.ErrNotFound)
	tx.EXPECT().FacilityByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	require.ErrorIs(t, svc.DeleteFacility(ctx, id), ErrFacilityNotFound)

	_, err := svc.FacilityByID(ctx, id)
	require.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestListFacilities_PassesStorageError(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)
	tx.EXPECT().ListFacilities(gomock.Any()).Return(nil, errDB)

	_, err := svc.ListFacilities(ctx)
	require.ErrorIs(t, err, errDB)
}

func TestSearchFacilities(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)
	search := models.FacilitySearch{Query: "olymp", OrderBy: "area"}

	gomock.InOrder(
		tx.EXPECT().SearchFacilities(gomock.Any(), search).Return([]models.Facility{{FacilityFields: models.FacilityFields{Name: "Olymp"}}}, nil),
		tx.EXPECT().SearchFacilities(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("postgres.facility.SearchFacilities: %w", fmt.Errorf("%w: unknown order_by %q", storage.ErrInvalidQuery, "x1"))),
	)

	got, err := svc.SearchFacilities(ctx, search)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = svc.SearchFacilities(ctx, models.FacilitySearch{OrderBy: "x1"})
	require.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "search", ve.Field)
	require.Equal(t, `invalid query: unknown order_by "x1"`, ve.Reason)
}
