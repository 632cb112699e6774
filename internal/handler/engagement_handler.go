package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"socialhub/internal/models"
)

// ToggleLike likes or unlikes a post. Scripts get {liked, likeCount};
// browsers are sent back where they came from.
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	postID := mux.Vars(r)["postId"]

	state, err := h.EngagementService.ToggleLike(r.Context(), identity.UserID, postID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if WantsJSON(r) {
		writeJSON(w, state, http.StatusOK)
		return
	}
	redirect(w, r, localReferer(r, "/post/"+url.PathEscape(postID)+"/"))
}

// ToggleFollow follows or unfollows a user and redirects to their profile
// with a flash message.
func (h *Handlers) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	username := mux.Vars(r)["username"]
	profileURL := "/profile/" + url.PathEscape(username) + "/"

	state, err := h.EngagementService.ToggleFollow(r.Context(), identity, username)
	if err != nil {
		if errors.Is(err, models.ErrSelfReference) && !WantsJSON(r) {
			h.setFlash(w, "warning", "You cannot follow yourself.")
			redirect(w, r, profileURL)
			return
		}
		h.handleError(w, r, err)
		return
	}

	if WantsJSON(r) {
		writeJSON(w, state, http.StatusOK)
		return
	}

	if state.Following {
		h.setFlash(w, "success", "You are now following "+state.Username+".")
	} else {
		h.setFlash(w, "info", "You unfollowed "+state.Username+".")
	}
	redirect(w, r, profileURL)
}
