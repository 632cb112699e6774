package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"socialhub/internal/auth"
	"socialhub/internal/models"
)

var (
	postFields    = []string{"content", "image"}
	commentFields = []string{"text"}
)

// Feed shows posts by the session user and the users they follow.
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	feed, err := h.PostService.Feed(r.Context(), identity.UserID, h.page(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, feed)
}

func (h *Handlers) CreatePostPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, FormSpec{Fields: postFields})
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	formSpec := FormSpec{Fields: postFields}

	var req models.CreatePostRequest
	err := h.decodeForm(w, r, &req, func(form url.Values) {
		req = models.CreatePostRequest{Content: form.Get("content")}
	})
	if err == nil {
		err = h.validate(req)
	}
	if err != nil {
		h.formError(w, r, formSpec, err)
		return
	}

	image, closeImage, err := h.readImage(r, "image")
	if err != nil {
		h.formError(w, r, formSpec, err)
		return
	}
	defer closeImage()
	req.Image = image

	post, err := h.PostService.CreatePost(r.Context(), identity.UserID, req)
	if err != nil {
		h.formError(w, r, formSpec, err)
		return
	}

	if WantsJSON(r) {
		writeJSON(w, post, http.StatusCreated)
		return
	}
	redirect(w, r, "/")
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	detail, err := h.PostService.GetPostDetail(r.Context(), mux.Vars(r)["postId"], auth.UserID(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, detail)
}

// AddComment handles the comment form on the post page.
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	postID := mux.Vars(r)["postId"]

	var req models.CreateCommentRequest
	err := h.decodeForm(w, r, &req, func(form url.Values) {
		req = models.CreateCommentRequest{Text: form.Get("text")}
	})
	if err == nil {
		err = h.validate(req)
	}

	var comment *models.Comment
	if err == nil {
		comment, err = h.PostService.AddComment(r.Context(), postID, identity.UserID, req)
	}

	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) && !WantsJSON(r) {
			h.redisplayPost(w, r, postID, identity.UserID, err)
			return
		}
		h.handleError(w, r, err)
		return
	}

	if WantsJSON(r) {
		writeJSON(w, comment, http.StatusCreated)
		return
	}
	redirect(w, r, "/post/"+url.PathEscape(postID)+"/")
}

// redisplayPost renders the post page again with the comment form errors.
func (h *Handlers) redisplayPost(w http.ResponseWriter, r *http.Request, postID, viewerID string, formErr error) {
	detail, err := h.PostService.GetPostDetail(r.Context(), postID, viewerID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.formError(w, r, detail, formErr)
}
