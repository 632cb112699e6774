package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"socialhub/internal/auth"
	"socialhub/internal/models"
	"socialhub/internal/service"
)

// Page is the JSON document returned for GET pages and redisplayed forms.
type Page struct {
	Flash  []Flash           `json:"flash,omitempty"`
	Data   interface{}       `json:"data,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// WantsJSON reports whether the caller is a script rather than a browser
// form, in which case it gets JSON instead of redirects.
func WantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return isJSONBody(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

func isJSONBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, data interface{}, flash ...Flash) {
	page := Page{Flash: append(h.popFlash(w, r), flash...), Data: data}
	writeJSON(w, page, status)
}

// renderFormErrors redisplays a form with its field errors.
func (h *Handlers) renderFormErrors(w http.ResponseWriter, r *http.Request, data interface{}, err *models.ValidationError) {
	page := Page{Flash: h.popFlash(w, r), Data: data, Errors: err.Fields}
	writeJSON(w, page, http.StatusBadRequest)
}

// redirect sends a browser to location with 303 See Other.
func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// decodeForm fills dst from a JSON body, or from form values through fill.
func (h *Handlers) decodeForm(w http.ResponseWriter, r *http.Request, dst interface{}, fill func(form url.Values)) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize()+1<<20)

	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return models.NewValidationError("body", "Invalid request body.")
		}
		return nil
	}

	var err error
	if isMultipart(r) {
		err = r.ParseMultipartForm(h.maxUploadSize())
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return models.NewValidationError("body", "Invalid form data.")
	}

	fill(r.PostForm)
	return nil
}

// validate runs struct validation and returns a models.ValidationError.
func (h *Handlers) validate(req interface{}) error {
	if err := h.Validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

// readImage returns the uploaded image in field, or nil when none was sent.
// The caller must call the returned close function.
func (h *Handlers) readImage(r *http.Request, field string) (*models.ImageUpload, func(), error) {
	noop := func() {}

	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, noop, nil
	}

	header := r.MultipartForm.File[field][0]
	if header.Size == 0 {
		return nil, noop, nil
	}

	if header.Size > h.maxUploadSize() {
		return nil, noop, models.NewValidationError(field, fmt.Sprintf("File is too large. The limit is %d bytes.", h.maxUploadSize()))
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, noop, models.NewValidationError(field, "Upload a valid image.")
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open upload: %w", err)
	}

	image := &models.ImageUpload{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader:      file,
	}

	return image, func() { file.Close() }, nil
}

func (h *Handlers) maxUploadSize() int64 {
	if h.Cfg.MaxUploadSize <= 0 {
		return 10 << 20
	}
	return h.Cfg.MaxUploadSize
}

// page reads ?page= and ?limit= with configured bounds.
func (h *Handlers) page(r *http.Request) service.Page {
	number, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return service.NewPage(number, limit, h.Cfg.PageSize, h.Cfg.MaxPageSize)
}

// identity returns the authenticated user or answers 401 itself.
func (h *Handlers) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		WriteError(w, "Authentication required", http.StatusUnauthorized)
		return nil, false
	}
	return identity, true
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, session *service.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cfg.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cfg.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext keeps redirects on this site.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return fallback
	}

	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}

// localReferer returns the Referer path when it points at this host.
func localReferer(r *http.Request, fallback string) string {
	referer := r.Header.Get("Referer")
	if referer == "" {
		return fallback
	}

	u, err := url.Parse(referer)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return fallback
	}

	return safeNext(u.RequestURI(), fallback)
}

// formError redisplays a browser form on validation errors and falls back
// to handleError otherwise.
func (h *Handlers) formError(w http.ResponseWriter, r *http.Request, data interface{}, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) && !WantsJSON(r) {
		h.renderFormErrors(w, r, data, validationErr)
		return
	}
	h.handleError(w, r, err)
}
