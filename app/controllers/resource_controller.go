package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"postsapi/app/models"
	"postsapi/app/repositories"
	"postsapi/app/response"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	notFoundMessage = "Resource not found"
	deletedMessage  = "Resource deleted successfully"

	maxBodyBytes = 1 << 20
)

// ResourceController serves the five CRUD handlers for one collection.
type ResourceController struct {
	collection repositories.Collection
}

func NewResourceController(collection repositories.Collection) *ResourceController {
	return &ResourceController{collection: collection}
}

// List handles GET /<resource>. Every query parameter is an exact-match filter.
func (rc *ResourceController) List(w http.ResponseWriter, r *http.Request) {
	records, err := rc.collection.Find(r.Context(), models.Filter(r.URL.Query()))
	if err != nil {
		rc.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	response.JSON(w, http.StatusOK, records)
}

// Show handles GET /<resource>/{id}.
func (rc *ResourceController) Show(w http.ResponseWriter, r *http.Request) {
	record, err := rc.collection.FindByID(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.Error(w, http.StatusNotFound, notFoundMessage)
	case err != nil:
		rc.fail(w, r, http.StatusInternalServerError, err)
	default:
		response.JSON(w, http.StatusOK, record)
	}
}

// Create handles POST /<resource> and answers 201 with the stored record.
func (rc *ResourceController) Create(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeBody(w, r)
	if err != nil {
		rc.fail(w, r, http.StatusBadRequest, err)
		return
	}

	record, err := rc.collection.Create(r.Context(), fields)
	if err != nil {
		rc.fail(w, r, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Location", path.Join(r.URL.Path, record.ID()))
	response.JSON(w, http.StatusCreated, record)
}

// Update handles PUT /<resource>/{id} and answers with the record as it is
// after the change.
func (rc *ResourceController) Update(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeBody(w, r)
	if err != nil {
		rc.fail(w, r, http.StatusBadRequest, err)
		return
	}

	record, err := rc.collection.FindByIDAndUpdate(r.Context(), mux.Vars(r)["id"], fields)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.Error(w, http.StatusNotFound, notFoundMessage)
	case err != nil:
		rc.fail(w, r, http.StatusBadRequest, err)
	default:
		response.JSON(w, http.StatusOK, record)
	}
}

// Delete handles DELETE /<resource>/{id}.
func (rc *ResourceController) Delete(w http.ResponseWriter, r *http.Request) {
	_, err := rc.collection.FindByIDAndDelete(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.Error(w, http.StatusNotFound, notFoundMessage)
	case err != nil:
		rc.fail(w, r, http.StatusInternalServerError, err)
	default:
		response.Message(w, http.StatusOK, deletedMessage)
	}
}

func (rc *ResourceController) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	event := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")

	response.Error(w, status, response.ErrorMessage(err))
}

// decodeBody reads a JSON object or urlencoded form. An empty or null JSON
// body yields an empty record so validation reports the missing fields.
func decodeBody(w http.ResponseWriter, r *http.Request) (models.Record, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
		fields := models.Record{}
		for key, values := range r.PostForm {
			if len(values) == 1 {
				fields[key] = values[0]
			} else {
				fields[key] = values
			}
		}
		return fields, nil
	}

	var fields models.Record
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON body: unexpected data after JSON value")
	}
	if fields == nil {
		fields = models.Record{}
	}
	return fields, nil
}
