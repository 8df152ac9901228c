package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shiksha/internal/domain/payments"
	"shiksha/internal/params"

	"github.com/go-chi/chi/v5"
)

func parsePaymentID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "paymentID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid paymentID")
	}
	return id, nil
}

type createPaymentPayload struct {
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required"`
	PaidAt      string `json:"paid_at"`
}

// createPaymentHandler godoc
//
//	@Summary		Record a payment
//	@Description	The receipt number is generated server side and never accepted from the client.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			studentID	path		int						true	"Student ID"
//	@Param			payload		body		createPaymentPayload	true	"Payment fields"
//	@Success		201			{object}	payments.Payment
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/students/{studentID}/payments [post]
func (app *application) createPaymentHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)

	studentID, err := parseStudentID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload createPaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if !payments.ValidMethod(payload.Method) {
		app.badRequestResponse(w, r, fmt.Errorf("unknown payment method %q", payload.Method))
		return
	}

	paidAt := time.Now()
	if payload.PaidAt != "" {
		paidAt, err = time.Parse(time.RFC3339, payload.PaidAt)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("paid_at must be RFC 3339"))
			return
		}
	}

	receiptNumber, err := app.receipts.Generate(studentID, paidAt)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	payment := &payments.Payment{
		StudentID:     studentID,
		AmountCents:   payload.AmountCents,
		Method:        payload.Method,
		ReceiptNumber: receiptNumber,
		PaidAt:        paidAt,
	}

	if err := app.store.Payments.Create(r.Context(), actor, payment); err != nil {
		switch {
		case errors.Is(err, payments.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusCreated, payment)
}

// listPaymentsHandler godoc
//
//	@Summary	List a student's payments
//	@Tags		payments
//	@Produce	json
//	@Param		studentID	path		int	true	"Student ID"
//	@Param		page		query		int	false	"Page number"
//	@Param		limit		query		int	false	"Items per page"
//	@Success	200			{object}	map[string]any
//	@Failure	400			{object}	error
//	@Failure	500			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/students/{studentID}/payments [get]
func (app *application) listPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)

	studentID, err := parseStudentID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	pg := params.ParsePagination(r.URL.Query())

	list, total, err := app.store.Payments.ListByStudent(r.Context(), actor, studentID, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"payments":   list,
		"pagination": pg,
	})
}

// getPaymentHandler godoc
//
//	@Summary	Get one payment
//	@Tags		payments
//	@Produce	json
//	@Param		studentID	path		int	true	"Student ID"
//	@Param		paymentID	path		int	true	"Payment ID"
//	@Success	200			{object}	payments.Payment
//	@Failure	400			{object}	error
//	@Failure	404			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/students/{studentID}/payments/{paymentID} [get]
func (app *application) getPaymentHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)

	paymentID, err := parsePaymentID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payment, err := app.store.Payments.GetByID(r.Context(), actor, paymentID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, payment)
}

// deletePaymentHandler godoc
//
//	@Summary	Delete a payment
//	@Tags		payments
//	@Param		studentID	path	int	true	"Student ID"
//	@Param		paymentID	path	int	true	"Payment ID"
//	@Success	204
//	@Failure	400	{object}	error
//	@Failure	404	{object}	error
//	@Security	ApiKeyAuth
//	@Router		/students/{studentID}/payments/{paymentID} [delete]
func (app *application) deletePaymentHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)

	paymentID, err := parsePaymentID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Payments.Delete(r.Context(), actor, paymentID); err != nil {
		switch {
		case errors.Is(err, payments.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// paymentsReportHandler godoc
//
//	@Summary		Payment totals per method
//	@Description	Aggregates payments over [from, to). Managers see totals for their own students only.
//	@Tags			reports
//	@Produce		json
//	@Param			from	query		string	false	"Range start, RFC 3339 (default: 30 days ago)"
//	@Param			to		query		string	false	"Range end, RFC 3339 (default: now)"
//	@Success		200		{object}	payments.Summary
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reports/payments [get]
func (app *application) paymentsReportHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)
	q := r.URL.Query()

	to := time.Now()
	from := to.AddDate(0, 0, -30)

	var err error
	if fromStr := q.Get("from"); fromStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("from must be RFC 3339"))
			return
		}
	}
	if toStr := q.Get("to"); toStr != "" {
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("to must be RFC 3339"))
			return
		}
	}
	if !to.After(from) {
		app.badRequestResponse(w, r, fmt.Errorf("to must come after from"))
		return
	}

	summary, err := app.store.Payments.Summarize(r.Context(), actor, from, to)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, summary)
}
