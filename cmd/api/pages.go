package main

import "net/http"

// The home and forbidden "pages" are JSON endpoints: the API serves the data
// the client renders, but both paths must exist because the guard redirects
// navigations to them.

// homeHandler godoc
//
//	@Summary	Landing data for the signed-in actor
//	@Tags		pages
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Security	ApiKeyAuth
//	@Router		/ [get]
func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"app":     "shiksha",
		"version": version,
	}

	// The home path is public, so there may be no actor at all.
	if profile := getProfileFromContext(r); profile != nil {
		data["profile"] = profile
	}

	app.jsonResponse(w, http.StatusOK, data)
}

// forbiddenPageHandler godoc
//
//	@Summary	Access denied page
//	@Tags		pages
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/403 [get]
func (app *application) forbiddenPageHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "you do not have access to the page you requested",
	})
}
