package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"socialhub/internal/auth"
	"socialhub/internal/models"
)

type EditProfileForm struct {
	Fields  []string        `json:"fields"`
	Profile *models.Profile `json:"profile,omitempty"`
}

var profileFields = []string{"bio", "profile_picture", "profile_picture-clear"}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	view, err := h.UserService.GetProfile(r.Context(), username, auth.UserID(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, view)
}

func (h *Handlers) EditProfilePage(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	profile, err := h.UserService.GetEditableProfile(r.Context(), identity, mux.Vars(r)["username"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, EditProfileForm{Fields: profileFields, Profile: profile})
}

// EditProfile updates the bio and the optional profile picture of the
// session user.
func (h *Handlers) EditProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	username := mux.Vars(r)["username"]
	formSpec := EditProfileForm{Fields: profileFields}

	var req models.UpdateProfileRequest
	err := h.decodeForm(w, r, &req, func(form url.Values) {
		clearImage, _ := strconv.ParseBool(form.Get("profile_picture-clear"))
		if form.Get("profile_picture-clear") == "on" {
			clearImage = true
		}
		req = models.UpdateProfileRequest{Bio: form.Get("bio"), ClearImage: clearImage}
	})
	if err != nil {
		h.formError(w, r, formSpec, err)
		return
	}

	image, closeImage, err := h.readImage(r, "profile_picture")
	if err != nil {
		h.formError(w, r, formSpec, err)
		return
	}
	defer closeImage()
	req.Image = image

	profile, err := h.UserService.UpdateProfile(r.Context(), identity, username, req)
	if err != nil {
		h.formError(w, r, formSpec, err)
		return
	}

	if WantsJSON(r) {
		writeJSON(w, profile, http.StatusOK)
		return
	}
	h.setFlash(w, "success", "Profile updated successfully!")
	redirect(w, r, "/profile/"+url.PathEscape(identity.Username)+"/")
}

func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.UserService.Search(r.Context(), r.URL.Query().Get("q"), h.page(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, result)
}
