package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"shiksha/internal/domain/tariffs"
	"shiksha/internal/rbac"

	"github.com/go-chi/chi/v5"
)

func parseTariffID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "tariffID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid tariffID")
	}
	return id, nil
}

// requireAdmin rejects tariff mutations from everyone but the superadmin.
// The listing page is open to staff, so the route table leaves /tariffs/{id}
// unguarded and the write protection lives here instead.
func (app *application) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	profile := getProfileFromContext(r)
	if profile == nil || !rbac.IsAdmin(profile.Role) {
		app.forbiddenResponse(w, r)
		return false
	}
	return true
}

// listTariffsHandler godoc
//
//	@Summary	List tariffs
//	@Tags		tariffs
//	@Produce	json
//	@Success	200	{array}		tariffs.Tariff
//	@Failure	500	{object}	error
//	@Security	ApiKeyAuth
//	@Router		/tariffs [get]
func (app *application) listTariffsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Tariffs.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, list)
}

// getTariffHandler godoc
//
//	@Summary	Get one tariff
//	@Tags		tariffs
//	@Produce	json
//	@Param		tariffID	path		int	true	"Tariff ID"
//	@Success	200			{object}	tariffs.Tariff
//	@Failure	400			{object}	error
//	@Failure	404			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/tariffs/{tariffID} [get]
func (app *application) getTariffHandler(w http.ResponseWriter, r *http.Request) {
	tariffID, err := parseTariffID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	tariff, err := app.store.Tariffs.GetByID(r.Context(), tariffID)
	if err != nil {
		switch {
		case errors.Is(err, tariffs.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, tariff)
}

type tariffPayload struct {
	Name         string `json:"name" validate:"required,max=120"`
	PriceCents   int64  `json:"price_cents" validate:"required,gt=0"`
	LessonsCount int    `json:"lessons_count" validate:"required,gt=0"`
}

// createTariffHandler godoc
//
//	@Summary	Create a tariff
//	@Tags		tariffs
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		tariffPayload	true	"Tariff fields"
//	@Success	201		{object}	tariffs.Tariff
//	@Failure	400		{object}	error
//	@Failure	403		{object}	error
//	@Failure	409		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/tariffs [post]
func (app *application) createTariffHandler(w http.ResponseWriter, r *http.Request) {
	if !app.requireAdmin(w, r) {
		return
	}

	var payload tariffPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	tariff := &tariffs.Tariff{
		Name:         payload.Name,
		PriceCents:   payload.PriceCents,
		LessonsCount: payload.LessonsCount,
	}

	if err := app.store.Tariffs.Create(r.Context(), getProfileFromContext(r), tariff); err != nil {
		switch {
		case errors.Is(err, tariffs.ErrDuplicateName):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusCreated, tariff)
}

// updateTariffHandler godoc
//
//	@Summary	Update a tariff
//	@Tags		tariffs
//	@Accept		json
//	@Produce	json
//	@Param		tariffID	path		int				true	"Tariff ID"
//	@Param		payload		body		tariffPayload	true	"Tariff fields"
//	@Success	200			{object}	tariffs.Tariff
//	@Failure	400			{object}	error
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/tariffs/{tariffID} [patch]
func (app *application) updateTariffHandler(w http.ResponseWriter, r *http.Request) {
	if !app.requireAdmin(w, r) {
		return
	}

	tariffID, err := parseTariffID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload tariffPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	tariff := &tariffs.Tariff{
		ID:           tariffID,
		Name:         payload.Name,
		PriceCents:   payload.PriceCents,
		LessonsCount: payload.LessonsCount,
	}

	if err := app.store.Tariffs.Update(r.Context(), getProfileFromContext(r), tariff); err != nil {
		switch {
		case errors.Is(err, tariffs.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, tariffs.ErrDuplicateName):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, tariff)
}

// deleteTariffHandler godoc
//
//	@Summary	Delete a tariff
//	@Tags		tariffs
//	@Param		tariffID	path	int	true	"Tariff ID"
//	@Success	204
//	@Failure	400	{object}	error
//	@Failure	403	{object}	error
//	@Failure	404	{object}	error
//	@Security	ApiKeyAuth
//	@Router		/tariffs/{tariffID} [delete]
func (app *application) deleteTariffHandler(w http.ResponseWriter, r *http.Request) {
	if !app.requireAdmin(w, r) {
		return
	}

	tariffID, err := parseTariffID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Tariffs.Delete(r.Context(), getProfileFromContext(r), tariffID); err != nil {
		switch {
		case errors.Is(err, tariffs.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
