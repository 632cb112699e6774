package test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	handlers "socialhub/internal/handler"
	"socialhub/internal/models"
	"socialhub/internal/service"
)

func withUsername(r *http.Request, username string) *http.Request {
	return mux.SetURLVars(r, map[string]string{"username": username})
}

func TestGetProfile(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		mockSetup      func(*MockUserService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "other user's profile",
			username: "bob",
			mockSetup: func(m *MockUserService) {
				m.On("GetProfile", anyCtx, "bob", alice.UserID).Return(&service.ProfileView{
					User:          &models.PublicUser{Username: "bob"},
					Profile:       &models.Profile{Bio: "hi"},
					IsFollowing:   true,
					FollowerCount: 1,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"isFollowing":true`,
		},
		{
			name:     "own profile",
			username: "alice",
			mockSetup: func(m *MockUserService) {
				m.On("GetProfile", anyCtx, "alice", alice.UserID).Return(&service.ProfileView{
					User:    &models.PublicUser{Username: "alice"},
					Profile: &models.Profile{},
					IsOwner: true,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"isOwner":true`,
		},
		{
			name:     "unknown user",
			username: "nobody",
			mockSetup: func(m *MockUserService) {
				m.On("GetProfile", anyCtx, "nobody", alice.UserID).Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"Not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := newTestHandlers()
			tt.mockSetup(th.users)

			req := withUsername(httptest.NewRequest(http.MethodGet, "/profile/"+tt.username+"/", nil), tt.username)
			rr := httptest.NewRecorder()
			th.GetProfile(rr, asUser(req, alice))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			th.assertExpectations(t)
		})
	}
}

func TestGetProfile_ShowsPendingFlash(t *testing.T) {
	th := newTestHandlers()
	th.users.On("GetProfile", anyCtx, "bob", alice.UserID).
		Return(&service.ProfileView{User: &models.PublicUser{Username: "bob"}, Profile: &models.Profile{}}, nil)

	// follow redirect sets the flash, the profile page consumes it
	follow := httptest.NewRecorder()
	th.engagement.On("ToggleFollow", anyCtx, alice, "bob").
		Return(&service.FollowState{Username: "bob", Following: true, FollowerCount: 1}, nil)
	th.ToggleFollow(follow, asUser(withUsername(httptest.NewRequest(http.MethodPost, "/user/bob/follow/", nil), "bob"), alice))

	req := withUsername(httptest.NewRequest(http.MethodGet, "/profile/bob/", nil), "bob")
	for _, c := range follow.Result().Cookies() {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	th.GetProfile(rr, asUser(req, alice))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "You are now following bob.")

	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "flash" {
			cleared = c.MaxAge < 0
		}
	}
	assert.True(t, cleared, "flash cookie should be consumed")
}

func TestEditProfile(t *testing.T) {
	t.Run("another user's profile is forbidden", func(t *testing.T) {
		th := newTestHandlers()
		th.users.On("UpdateProfile", anyCtx, alice, "bob", mock.Anything).Return(nil, models.ErrPermission)

		req := withUsername(formRequest(http.MethodPost, "/profile/bob/edit/", url.Values{"bio": {"pwned"}}), "bob")
		rr := httptest.NewRecorder()
		th.EditProfile(rr, asUser(req, alice))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		th.assertExpectations(t)
	})

	t.Run("bio update redirects with flash", func(t *testing.T) {
		th := newTestHandlers()
		th.users.On("UpdateProfile", anyCtx, alice, "alice", models.UpdateProfileRequest{Bio: "New bio"}).
			Return(&models.Profile{UserID: alice.UserID, Bio: "New bio"}, nil)

		req := withUsername(formRequest(http.MethodPost, "/profile/alice/edit/", url.Values{"bio": {"New bio"}}), "alice")
		rr := httptest.NewRecorder()
		th.EditProfile(rr, asUser(req, alice))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/profile/alice/", rr.Header().Get("Location"))
		assert.Equal(t, []handlers.Flash{{Level: "success", Message: "Profile updated successfully!"}}, flashFrom(t, rr))
		th.assertExpectations(t)
	})

	t.Run("clear checkbox", func(t *testing.T) {
		th := newTestHandlers()
		th.users.On("UpdateProfile", anyCtx, alice, "alice", models.UpdateProfileRequest{Bio: "", ClearImage: true}).
			Return(&models.Profile{UserID: alice.UserID}, nil)

		form := url.Values{"bio": {""}, "profile_picture-clear": {"on"}}
		req := withUsername(formRequest(http.MethodPost, "/profile/alice/edit/", form), "alice")
		rr := httptest.NewRecorder()
		th.EditProfile(rr, asUser(req, alice))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		th.assertExpectations(t)
	})

	t.Run("edit page of another user", func(t *testing.T) {
		th := newTestHandlers()
		th.users.On("GetEditableProfile", anyCtx, alice, "bob").Return(nil, models.ErrPermission)

		req := withUsername(httptest.NewRequest(http.MethodGet, "/profile/bob/edit/", nil), "bob")
		rr := httptest.NewRecorder()
		th.EditProfilePage(rr, asUser(req, alice))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestToggleFollow(t *testing.T) {
	followRequest := func(username string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/user/"+username+"/follow/", nil)
		return asUser(withUsername(req, username), alice)
	}

	t.Run("follow", func(t *testing.T) {
		th := newTestHandlers()
		th.engagement.On("ToggleFollow", anyCtx, alice, "bob").
			Return(&service.FollowState{Username: "bob", Following: true, FollowerCount: 1}, nil)

		rr := httptest.NewRecorder()
		th.ToggleFollow(rr, followRequest("bob"))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/profile/bob/", rr.Header().Get("Location"))
		assert.Equal(t, []handlers.Flash{{Level: "success", Message: "You are now following bob."}}, flashFrom(t, rr))
	})

	t.Run("unfollow", func(t *testing.T) {
		th := newTestHandlers()
		th.engagement.On("ToggleFollow", anyCtx, alice, "bob").
			Return(&service.FollowState{Username: "bob", Following: false}, nil)

		rr := httptest.NewRecorder()
		th.ToggleFollow(rr, followRequest("bob"))

		assert.Equal(t, []handlers.Flash{{Level: "info", Message: "You unfollowed bob."}}, flashFrom(t, rr))
	})

	t.Run("self follow warns", func(t *testing.T) {
		th := newTestHandlers()
		th.engagement.On("ToggleFollow", anyCtx, alice, "alice").Return(nil, models.ErrSelfReference)

		rr := httptest.NewRecorder()
		th.ToggleFollow(rr, followRequest("alice"))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/profile/alice/", rr.Header().Get("Location"))
		assert.Equal(t, []handlers.Flash{{Level: "warning", Message: "You cannot follow yourself."}}, flashFrom(t, rr))
	})

	t.Run("self follow from script", func(t *testing.T) {
		th := newTestHandlers()
		th.engagement.On("ToggleFollow", anyCtx, alice, "alice").Return(nil, models.ErrSelfReference)

		rr := httptest.NewRecorder()
		th.ToggleFollow(rr, xhr(followRequest("alice")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"You cannot follow yourself."}`, rr.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		th := newTestHandlers()
		th.engagement.On("ToggleFollow", anyCtx, alice, "ghost").Return(nil, models.ErrNotFound)

		rr := httptest.NewRecorder()
		th.ToggleFollow(rr, followRequest("ghost"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSearch(t *testing.T) {
	th := newTestHandlers()
	result := &service.SearchResult{
		Query:    "ali",
		Users:    []models.PublicUser{{Username: "alice"}, {Username: "Alison"}},
		PageInfo: service.PageInfo{Page: 1, Limit: 20, Total: 2},
	}
	th.users.On("Search", anyCtx, "ali", service.Page{Number: 1, Limit: 20}).Return(result, nil)

	rr := httptest.NewRecorder()
	th.Search(rr, asUser(httptest.NewRequest(http.MethodGet, "/search/?q=ali", nil), alice))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"Alison"`)
	assert.Contains(t, rr.Body.String(), `"total":2`)
	th.assertExpectations(t)
}

func TestSearch_LimitIsCapped(t *testing.T) {
	th := newTestHandlers()
	th.users.On("Search", anyCtx, "", service.Page{Number: 1, Limit: 100}).
		Return(&service.SearchResult{}, nil)

	rr := httptest.NewRecorder()
	th.Search(rr, asUser(httptest.NewRequest(http.MethodGet, "/search/?limit=5000&page=-3", nil), alice))

	assert.Equal(t, http.StatusOK, rr.Code)
	th.assertExpectations(t)
}

//go test ./internal/handler/test/... -v
