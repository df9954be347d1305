package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/geoblog/internal/dto"
	apierrors "github.com/yukikurage/geoblog/internal/errors"
	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/testutil"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	srv   *testServer
	cl    *client
	staff *models.User
}

func (s *AdminHandlerTestSuite) SetupTest() {
	s.srv = newTestServer(s.T(), nil)
	s.staff = testutil.CreateUser(s.T(), s.srv.db, "staff@example.com", "staff")
	s.Require().NoError(s.srv.db.Model(s.staff).Update("staff", true).Error)
	s.cl = s.srv.client(s.T())
	s.cl.login("staff@example.com")
}

func (s *AdminHandlerTestSuite) TestUsers() {
	member := testutil.CreateUser(s.T(), s.srv.db, "member@example.com", "member")

	w := s.cl.get("/admin/users")
	s.Require().Equal(http.StatusOK, w.Code)
	list := decode[dto.UserListResponse](s.T(), w)
	s.Len(list.Users, 2)
	s.Equal(int64(2), list.Pagination.Total)

	list = decode[dto.UserListResponse](s.T(), s.cl.get("/admin/users?staff=true"))
	s.Require().Len(list.Users, 1)
	s.Equal("staff@example.com", list.Users[0].Email)

	list = decode[dto.UserListResponse](s.T(), s.cl.get("/admin/users?q=MEMB"))
	s.Require().Len(list.Users, 1)
	s.Equal(member.ID, list.Users[0].ID)

	w = s.cl.doJSON(http.MethodPatch, fmt.Sprintf("/admin/users/%d", member.ID), map[string]any{"is_active": false, "admin": true})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.UserDTO](s.T(), w)
	s.False(updated.IsActive)
	s.True(updated.Admin)
	s.True(updated.SignupConfirmed, "fields not sent are left alone")

	s.Equal(http.StatusNotFound, s.cl.doJSON(http.MethodPatch, "/admin/users/999", map[string]any{"staff": true}).Code)
	s.Equal(http.StatusBadRequest, s.cl.doJSON(http.MethodPatch, "/admin/users/abc", map[string]any{}).Code)
	s.Contains(fieldErrors(s.T(), s.cl.doJSON(http.MethodPatch, fmt.Sprintf("/admin/users/%d", member.ID), map[string]any{"sex_id": 42})), "sex_id")
}

func (s *AdminHandlerTestSuite) TestReferenceTables() {
	w := s.cl.postForm("/admin/countries", url.Values{"name": {"Latvia"}})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	country := decode[dto.RefDTO](s.T(), w)

	w = s.cl.postForm("/admin/sexes", url.Values{"name": {"female"}})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	sex := decode[dto.RefDTO](s.T(), w)

	s.Len(decode[[]dto.RefDTO](s.T(), s.cl.get("/admin/countries")), 1)
	s.Len(decode[[]dto.RefDTO](s.T(), s.cl.get("/admin/sexes")), 1)
	s.Contains(fieldErrors(s.T(), s.cl.postForm("/admin/sexes", url.Values{"name": {""}})), "name")

	// referenced rows cannot be deleted
	s.Require().NoError(s.srv.db.Model(s.staff).Updates(map[string]any{"sex_id": sex.ID, "country_id": country.ID}).Error)
	w = s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/sexes/%d", sex.ID), nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apierrors.ErrCodeConflict, decode[apierrors.APIError](s.T(), w).Code)
	s.Equal(http.StatusConflict, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/countries/%d", country.ID), nil).Code)

	s.Require().NoError(s.srv.db.Model(s.staff).Updates(map[string]any{"sex_id": nil, "country_id": nil}).Error)
	s.Equal(http.StatusNoContent, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/sexes/%d", sex.ID), nil).Code)
	s.Equal(http.StatusNoContent, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/countries/%d", country.ID), nil).Code)
	s.Equal(http.StatusNotFound, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/countries/%d", country.ID), nil).Code)
}

func (s *AdminHandlerTestSuite) TestTags() {
	w := s.cl.postForm("/admin/tags", url.Values{"name": {"Street Food"}})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	tag := decode[dto.TagDTO](s.T(), w)
	s.Equal("street-food", tag.Slug)

	w = s.cl.postForm("/admin/tags", url.Values{"name": {"Street food!"}})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("street-food-2", decode[dto.TagDTO](s.T(), w).Slug)

	w = s.cl.postForm("/admin/tags", url.Values{"name": {"Street Food"}})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apierrors.ErrCodeAlreadyExists, decode[apierrors.APIError](s.T(), w).Code)

	s.Len(decode[[]dto.TagDTO](s.T(), s.cl.get("/admin/tags")), 2)
	s.Equal(http.StatusNoContent, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/tags/%d", tag.ID), nil).Code)
	s.Len(decode[[]dto.TagDTO](s.T(), s.cl.get("/admin/tags")), 1)
}

func (s *AdminHandlerTestSuite) TestEmojis() {
	w := s.cl.postMultipart("/admin/emojis", url.Values{"name": {"Sun"}}, map[string][][]byte{"image": {testutil.PNG(512, 256)}})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	emoji := decode[dto.EmojiDTO](s.T(), w)
	s.Equal("sun", emoji.Slug)
	s.Require().Len(s.srv.storage.Names(), 1)
	s.Equal("/media/"+s.srv.storage.Names()[0], emoji.ImageURL)

	s.Contains(fieldErrors(s.T(), s.cl.postMultipart("/admin/emojis", url.Values{"name": {"Moon"}}, nil)), "image")
	s.Contains(fieldErrors(s.T(), s.cl.postMultipart("/admin/emojis", url.Values{"name": {"Moon"}}, map[string][][]byte{"image": {[]byte("x")}})), "image")

	tag := testutil.CreateTag(s.T(), s.srv.db, "travel")
	var stored models.Emoji
	s.Require().NoError(s.srv.db.First(&stored, emoji.ID).Error)
	post := testutil.CreatePost(s.T(), s.srv.db, s.staff, &stored, "trip", []models.Tag{*tag})

	s.Equal(http.StatusConflict, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/emojis/%d", emoji.ID), nil).Code)
	s.Equal(http.StatusNoContent, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/posts/%d", post.ID), nil).Code)
	s.Equal(http.StatusNoContent, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/emojis/%d", emoji.ID), nil).Code)
	s.Empty(s.srv.storage.Names(), "the emoji image is removed")
}

func (s *AdminHandlerTestSuite) TestPosts() {
	tag := testutil.CreateTag(s.T(), s.srv.db, "travel")
	emoji := testutil.CreateEmoji(s.T(), s.srv.db, "sun")
	path := "blog/post/2024/01/01/a.jpg"
	s.Require().NoError(s.srv.storage.Save(context.Background(), path, []byte("jpeg")))
	post := testutil.CreatePost(s.T(), s.srv.db, s.staff, emoji, "trip", []models.Tag{*tag}, path)

	w := s.cl.get("/admin/posts?limit=10")
	s.Require().Equal(http.StatusOK, w.Code)
	feed := decode[dto.FeedContext](s.T(), w)
	s.Require().Len(feed.Posts, 1)
	s.Equal(10, feed.Pagination.Limit)

	s.Equal(http.StatusNoContent, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/posts/%d", post.ID), nil).Code)
	_, ok := s.srv.storage.Get(path)
	s.False(ok, "image files are removed with the post")
	s.Equal(http.StatusNotFound, s.cl.doJSON(http.MethodDelete, fmt.Sprintf("/admin/posts/%d", post.ID), nil).Code)
}

func TestAdminHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func TestAdminHandler_RequiresStaff(t *testing.T) {
	srv := newTestServer(t, nil)
	testutil.CreateUser(t, srv.db, "member@example.com", "member")

	anonymous := srv.client(t)
	assert.Equal(t, http.StatusUnauthorized, anonymous.get("/admin/users").Code)

	member := srv.client(t)
	member.login("member@example.com")
	for _, path := range []string{"/admin/users", "/admin/tags", "/admin/posts"} {
		w := member.get(path)
		require.Equal(t, http.StatusForbidden, w.Code, path)
	}
	assert.Equal(t, http.StatusForbidden, member.postForm("/admin/tags", url.Values{"name": {"x"}}).Code)
}
