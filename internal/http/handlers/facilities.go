package handlers

import (
	"fmt"
	"net/http"

	apierrors "github.com/pribylovaa/sportsmap-api/internal/http/errors"
	"github.com/pribylovaa/sportsmap-api/internal/models"
)

func (h *Handlers) CreateFacility(w http.ResponseWriter, r *http.Request) error {
	var in models.FacilityFields
	if err := decodeStrict(w, r, &in); err != nil {
		return err
	}

	f, err := h.svc.CreateFacility(r.Context(), in)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, f)
}

func (h *Handlers) UpdateFacility(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var in models.FacilityFields
	if err := decodeStrict(w, r, &in); err != nil {
		return err
	}

	f, err := h.svc.UpdateFacility(r.Context(), id, in)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) SetFacilityHidden(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var in hiddenRequest
	if err := decodeStrict(w, r, &in); err != nil {
		return err
	}
	if in.Hidden == nil {
		return fmt.Errorf("%w: hidden is required", apierrors.ErrInvalidBody)
	}

	f, err := h.svc.SetFacilityHidden(r.Context(), id, *in.Hidden)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) DeleteFacility(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.svc.DeleteFacility(r.Context(), id); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handlers) GetFacility(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	f, err := h.svc.FacilityByID(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) ListFacilities(w http.ResponseWriter, r *http.Request) error {
	list, err := h.svc.ListFacilities(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, newFacilityList(list))
}

func (h *Handlers) SearchFacilities(w http.ResponseWriter, r *http.Request) error {
	var in models.FacilitySearch
	if err := decodeStrict(w, r, &in); err != nil {
		return err
	}

	list, err := h.svc.SearchFacilities(r.Context(), in)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, newFacilityList(list))
}
