package main

import (
	"errors"
	"fmt"
	"net/http"

	"shiksha/internal/domain/payments"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const maxReceiptSize = 5 << 20 // 5 MB

// uploadReceiptHandler godoc
//
//	@Summary		Attach a scanned receipt to a payment
//	@Description	Accepts one image under the "receipt" form field and stores its URL on the payment.
//	@Tags			payments
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			studentID	path		int		true	"Student ID"
//	@Param			paymentID	path		int		true	"Payment ID"
//	@Param			receipt		formData	file	true	"Receipt scan"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/students/{studentID}/payments/{paymentID}/receipt [post]
func (app *application) uploadReceiptHandler(w http.ResponseWriter, r *http.Request) {
	actor := getProfileFromContext(r)

	paymentID, err := parsePaymentID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Ownership check before touching the file: a manager cannot attach a
	// receipt to somebody else's payment.
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

	// Parse the multipart form
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("could not parse form: %w", err))
		return
	}

	file, _, err := r.FormFile("receipt")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("receipt file is required: %w", err))
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("receipt_%s", payment.ReceiptNumber)
	resp, err := app.cld.Upload.Upload(r.Context(), file, uploader.UploadParams{
		Folder:    "receipts",
		PublicID:  publicID,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("cloudinary upload: %w", err))
		return
	}

	if err := app.store.Payments.SetReceiptURL(r.Context(), actor, paymentID, resp.SecureURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"receipt_url": resp.SecureURL})
}
