package models

import "io"

type SignupRequest struct {
	Username  string `json:"username" form:"username" validate:"required,max=150,username"`
	Email     string `json:"email" form:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" form:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" form:"last_name" validate:"max=150"`
	Password1 string `json:"password1" form:"password1" validate:"required,min=8,max=128"`
	Password2 string `json:"password2" form:"password2" validate:"required,eqfield=Password1"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Next     string `json:"next" form:"next"`
}

type CreatePostRequest struct {
	Content string       `json:"content" form:"content" validate:"required"`
	Image   *ImageUpload `json:"-" form:"image"`
}

type CreateCommentRequest struct {
	Text string `json:"text" form:"text" validate:"required"`
}

type UpdateProfileRequest struct {
	Bio        string       `json:"bio" form:"bio"`
	Image      *ImageUpload `json:"-" form:"profile_picture"`
	ClearImage bool         `json:"profile_picture_clear" form:"profile_picture-clear"`
}

// ImageUpload is a file received from a multipart form.
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}
