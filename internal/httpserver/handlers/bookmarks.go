package handlers

import (
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
	"github.com/MrSnakeDoc/bookmarks-api/internal/metrics"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store"
)

// bookmarkID parses the {id} path parameter. Anything that is not a positive integer cannot
// name a stored bookmark and is reported as not found.
func bookmarkID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, store.ErrNotFound
	}
	return id, nil
}

func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookmarks, err := d.Gateway.ListAll(r.Context())
		if err != nil {
			fail(w, r, d, "list", err)
			return
		}
		metrics.RecordOperation("list", metrics.ResultOK)
		writeJSON(w, http.StatusOK, domain.SanitizeAll(bookmarks))
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bookmarkID(r)
		if err != nil {
			fail(w, r, d, "get", err)
			return
		}
		b, err := d.Gateway.GetByID(r.Context(), id)
		if err != nil {
			fail(w, r, d, "get", err)
			return
		}
		metrics.RecordOperation("get", metrics.ResultOK)
		writeJSON(w, http.StatusOK, domain.Sanitize(b))
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeInput(w, r)
		if err != nil {
			fail(w, r, d, "create", err)
			return
		}
		draft, err := domain.ValidateForCreate(in)
		if err != nil {
			fail(w, r, d, "create", err)
			return
		}
		b, err := d.Gateway.Insert(r.Context(), draft)
		if err != nil {
			fail(w, r, d, "create", err)
			return
		}

		metrics.RecordOperation("create", metrics.ResultOK)
		d.Logger.Info("bookmark created", logger.Int64("id", b.ID))

		w.Header().Set("Location", path.Join(r.URL.Path, strconv.FormatInt(b.ID, 10)))
		writeJSON(w, http.StatusCreated, domain.Sanitize(b))
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bookmarkID(r)
		if err != nil {
			fail(w, r, d, "update", err)
			return
		}
		if _, err := d.Gateway.GetByID(r.Context(), id); err != nil {
			fail(w, r, d, "update", err)
			return
		}
		in, err := decodeInput(w, r)
		if err != nil {
			fail(w, r, d, "update", err)
			return
		}
		patch, err := domain.ValidateForUpdate(in)
		if err != nil {
			fail(w, r, d, "update", err)
			return
		}
		n, err := d.Gateway.Update(r.Context(), id, patch)
		if err != nil {
			fail(w, r, d, "update", err)
			return
		}
		if n == 0 {
			// deleted between lookup and update
			fail(w, r, d, "update", store.ErrNotFound)
			return
		}

		metrics.RecordOperation("update", metrics.ResultOK)
		d.Logger.Info("bookmark updated", logger.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bookmarkID(r)
		if err != nil {
			fail(w, r, d, "delete", err)
			return
		}
		n, err := d.Gateway.Delete(r.Context(), id)
		if err != nil {
			fail(w, r, d, "delete", err)
			return
		}
		if n == 0 {
			fail(w, r, d, "delete", store.ErrNotFound)
			return
		}

		metrics.RecordOperation("delete", metrics.ResultOK)
		d.Logger.Info("bookmark deleted", logger.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// NotFound answers unmatched routes with the JSON error shape.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed answers known paths called with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
