package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"shiksha/internal/domain/students"
	"shiksha/internal/params"
	"shiksha/internal/rbac"

	"github.com/go-chi/chi/v5"
)

func parseStudentID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "studentID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid studentID")
	}
	return id, nil
}

type createStudentPayload struct {
	FullName string  `json:"full_name" validate:"required,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	TariffID *int64  `json:"tariff_id"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
	// Only admins may assign a manager other than themselves.
	ManagerID *int64 `json:"manager_id"`
}

// createStudentHandler godoc
//
//	@Summary		Create a student
//	@Description	Non-admin managers always become the owner of the record they create.
//	@Tags			students
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createStudentPayload	true	"Student fields"
//	@Success		201		{object}	students.Student
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/students [post]
func (app *application) createStudentHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)

	// A student always belongs to a sales-type manager, so only sales staff
	// and admins may create one.
	if !rbac.IsAdmin(actor.Role) && !rbac.IsSalesStaff(actor.Role) {
		app.forbiddenResponse(w, r)
		return
	}

	var payload createStudentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	student := &students.Student{
		FullName:  payload.FullName,
		ManagerID: actor.ID,
	}
	if payload.Phone != nil {
		student.Phone = sql.NullString{String: *payload.Phone, Valid: true}
	}
	if payload.TariffID != nil {
		student.TariffID = sql.NullInt64{Int64: *payload.TariffID, Valid: true}
	}
	if payload.Notes != nil {
		student.Notes = sql.NullString{String: *payload.Notes, Valid: true}
	}
	if payload.ManagerID != nil && rbac.IsAdmin(actor.Role) {
		manager, err := app.store.Profiles.GetByID(r.Context(), *payload.ManagerID)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("manager %d not found", *payload.ManagerID))
			return
		}
		if !rbac.IsSalesStaff(manager.Role) {
			app.badRequestResponse(w, r, fmt.Errorf("manager must have a sales role"))
			return
		}
		student.ManagerID = manager.ID
	}

	if err := app.store.Students.Create(r.Context(), actor, student); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, student)
}

// listStudentsHandler godoc
//
//	@Summary		List students
//	@Description	Managers only see students they own; admins see everything.
//	@Tags			students
//	@Produce		json
//	@Param			search		query		string	false	"Name search"
//	@Param			manager_id	query		int		false	"Filter by owning manager"
//	@Param			tariff_id	query		int		false	"Filter by tariff"
//	@Param			page		query		int		false	"Page number"
//	@Param			limit		query		int		false	"Items per page"
//	@Success		200			{object}	map[string]any
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/students [get]
func (app *application) listStudentsHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)
	q := r.URL.Query()

	filters := students.ListFilters{Search: q.Get("search")}
	if managerID, err := strconv.ParseInt(q.Get("manager_id"), 10, 64); err == nil {
		filters.ManagerID = &managerID
	}
	if tariffID, err := strconv.ParseInt(q.Get("tariff_id"), 10, 64); err == nil {
		filters.TariffID = &tariffID
	}

	pg := params.ParsePagination(q)

	list, total, err := app.store.Students.List(r.Context(), actor, filters, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"students":   list,
		"pagination": pg,
	})
}

// getStudentHandler godoc
//
//	@Summary	Get one student
//	@Tags		students
//	@Produce	json
//	@Param		studentID	path		int	true	"Student ID"
//	@Success	200			{object}	students.Student
//	@Failure	400			{object}	error
//	@Failure	404			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/students/{studentID} [get]
func (app *application) getStudentHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)

	studentID, err := parseStudentID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	student, err := app.store.Students.GetByID(r.Context(), actor, studentID)
	if err != nil {
		switch {
		case errors.Is(err, students.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, student)
}

type updateStudentPayload struct {
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	TariffID *int64  `json:"tariff_id"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}

// updateStudentHandler godoc
//
//	@Summary	Update a student
//	@Tags		students
//	@Accept		json
//	@Produce	json
//	@Param		studentID	path		int						true	"Student ID"
//	@Param		payload		body		updateStudentPayload	true	"Fields to change"
//	@Success	200			{object}	map[string]string
//	@Failure	400			{object}	error
//	@Failure	404			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/students/{studentID} [patch]
func (app *application) updateStudentHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)

	studentID, err := parseStudentID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload updateStudentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := map[string]interface{}{}
	if payload.FullName != nil {
		updates["full_name"] = *payload.FullName
	}
	if payload.Phone != nil {
		updates["phone"] = *payload.Phone
	}
	if payload.TariffID != nil {
		updates["tariff_id"] = *payload.TariffID
	}
	if payload.Notes != nil {
		updates["notes"] = *payload.Notes
	}
	if len(updates) == 0 {
		app.badRequestResponse(w, r, fmt.Errorf("no fields to update"))
		return
	}

	if err := app.store.Students.Update(r.Context(), actor, studentID, updates); err != nil {
		switch {
		case errors.Is(err, students.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "student updated"})
}

// deleteStudentHandler godoc
//
//	@Summary	Delete a student
//	@Tags		students
//	@Param		studentID	path	int	true	"Student ID"
//	@Success	204
//	@Failure	400	{object}	error
//	@Failure	404	{object}	error
//	@Security	ApiKeyAuth
//	@Router		/students/{studentID} [delete]
func (app *application) deleteStudentHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)

	studentID, err := parseStudentID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Students.Delete(r.Context(), actor, studentID); err != nil {
		switch {
		case errors.Is(err, students.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
