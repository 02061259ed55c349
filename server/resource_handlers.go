package server

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/models"
	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/rs/zerolog/log"
)

const maxBannerUpload = 10 << 20

// writeStoreError maps data store errors onto HTTP statuses
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		writeJSONError(w, oauthmodel.ErrCodeNotFound, err.Error(), http.StatusNotFound)
	case errors.Is(err, errors.ErrAlreadyExists):
		writeJSONError(w, oauthmodel.ErrCodeConflict, err.Error(), http.StatusConflict)
	default:
		log.Error().Err(err).Msg("data store failure")
		writeJSONError(w, oauthmodel.ErrCodeServerError, "internal server error", http.StatusInternalServerError)
	}
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func (s *Server) ListRestaurantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.listRestaurants(queryInt(r, "offset"), queryInt(r, "limit")))
	}
}

func (s *Server) GetRestaurantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurant, err := s.data.getRestaurant(r.PathValue("id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, restaurant)
	}
}

func (s *Server) CreateRestaurantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.Restaurant
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := req.Validate(); err != nil {
			badRequest(w, err)
			return
		}
		created, err := s.data.createRestaurant(req)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) UpdateRestaurantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.Restaurant
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := req.Validate(); err != nil {
			badRequest(w, err)
			return
		}
		updated, err := s.data.updateRestaurant(r.PathValue("id"), req)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeleteRestaurantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.data.deleteRestaurant(r.PathValue("id")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) SetRestaurantActiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Active *bool `json:"active"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Active == nil {
			writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, "active is required", http.StatusBadRequest)
			return
		}
		updated, err := s.data.setRestaurantActive(r.PathValue("id"), *req.Active)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// ShareCredentialsHandler creates (or resets) a restaurant owner login and returns its temporary password
func (s *Server) ShareCredentialsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		email := strings.TrimSpace(req.Email)
		if !strings.Contains(email, "@") {
			writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, "a valid email is required", http.StatusBadRequest)
			return
		}

		restaurant, err := s.data.getRestaurant(r.PathValue("id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}

		passwordBytes := make([]byte, 12)
		if _, err := rand.Read(passwordBytes); err != nil {
			writeStoreError(w, err)
			return
		}
		password := base64.RawURLEncoding.EncodeToString(passwordBytes)

		owner, err := s.CreateUser(users.User{
			Email:        email,
			Name:         restaurant.Name,
			Roles:        []users.RoleType{users.RoleRestaurantOwner},
			RestaurantID: restaurant.ID,
		}, password)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, models.CredentialShare{
			RestaurantID:      restaurant.ID,
			Email:             owner.Email,
			TemporaryPassword: password,
			SharedAt:          s.now(),
		})
	}
}

func (s *Server) ListCouponsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.listCoupons())
	}
}

func (s *Server) CreateCouponHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.Coupon
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := req.Validate(s.now()); err != nil {
			badRequest(w, err)
			return
		}
		created, err := s.data.createCoupon(req)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) ListBugReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := models.BugStatus(r.URL.Query().Get("status"))
		if status != "" && !status.Valid() {
			writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, "unknown status "+string(status), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, s.data.listBugReports(status))
	}
}

func (s *Server) UpdateBugReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status models.BugStatus `json:"status"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if !req.Status.Valid() {
			writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, "unknown status "+string(req.Status), http.StatusBadRequest)
			return
		}
		updated, err := s.data.updateBugStatus(r.PathValue("id"), req.Status)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) ListBannersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.listBanners())
	}
}

// UploadBannerHandler accepts a multipart form with a "file" part and an optional "name" field.
// Only the file's metadata is kept.
func (s *Server) UploadBannerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBannerUpload)
		if err := r.ParseMultipartForm(maxBannerUpload); err != nil {
			writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, "file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		size, err := io.Copy(io.Discard, file)
		if err != nil {
			writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, "failed to read file", http.StatusBadRequest)
			return
		}

		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			name = header.Filename
		}

		writeJSON(w, http.StatusCreated, s.data.addBanner(models.Banner{
			Name:     name,
			Filename: header.Filename,
			Size:     size,
		}))
	}
}

func (s *Server) DeleteBannerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.data.deleteBanner(r.PathValue("id")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) LookupLocationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.lookupLocations(r.URL.Query().Get("q")))
	}
}
