package handlers

import (
	"net/http"

	"github.com/pribylovaa/sportsmap-api/internal/service"
)

func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) error {
	var in registerRequest
	if err := decodeStrict(w, r, &in); err != nil {
		return err
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, newUserResponse(user))
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) error {
	var in updateUserRequest
	if err := decodeStrict(w, r, &in); err != nil {
		return err
	}

	user, err := h.svc.UpdateSelf(r.Context(), service.UpdateUserInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  in.Password,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.DeleteSelf(r.Context()); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	user, err := h.svc.UserByID(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, newUserResponse(user))
}
