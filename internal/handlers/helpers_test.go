package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apierrors "github.com/yukikurage/geoblog/internal/errors"
	"github.com/yukikurage/geoblog/internal/middleware"
	"github.com/yukikurage/geoblog/internal/repository"
	"github.com/yukikurage/geoblog/internal/services"
	"github.com/yukikurage/geoblog/internal/testutil"
	"github.com/yukikurage/geoblog/internal/token"
)

var linkPattern = regexp.MustCompile(`https?://[^/\s]+(/(?:activate|change-password)/[^/\s]+/[^/\s]+/)`)

type testServer struct {
	db      *gorm.DB
	auth    *services.AuthService
	mailer  *testutil.RecordingMailer
	storage *testutil.MemoryStorage
	router  *gin.Engine
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	mailer := &testutil.RecordingMailer{}
	storage := testutil.NewMemoryStorage()
	log := zap.NewNop()

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	catalog := repository.NewCatalogRepository(db)
	issuer := token.NewIssuer("test-secret", 72*time.Hour)

	authService := services.NewAuthService(users, issuer, mailer, services.Site{Protocol: "http"}, log).WithHashCost(bcrypt.MinCost)
	postService := services.NewPostService(posts, catalog, storage, 2, log)
	profileService := services.NewProfileService(users, catalog, storage, log)
	adminService := services.NewAdminService(users, posts, catalog, storage, log).WithHashCost(bcrypt.MinCost)

	router := NewRouter(RouterConfig{
		Auth:         NewAuthHandler(authService, log),
		Posts:        NewPostHandler(postService, storage.URL, log),
		Profiles:     NewProfileHandler(profileService, storage.URL, log),
		Admin:        NewAdminHandler(adminService, storage.URL, log),
		Users:        authService,
		SessionStore: cookie.NewStore([]byte("secret")),
		Limiter:      limiter,
		Log:          log,
	})

	t.Cleanup(authService.Wait)

	return &testServer{db: db, auth: authService, mailer: mailer, storage: storage, router: router}
}

// client keeps the session cookie between requests.
type client struct {
	t       *testing.T
	srv     *testServer
	cookies map[string]*http.Cookie
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, srv: s, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	cl.srv.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

// postMultipart sends fields and files; files maps a field name to file contents.
func (cl *client) postMultipart(path string, fields url.Values, files map[string][][]byte) *httptest.ResponseRecorder {
	cl.t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(cl.t, mw.WriteField(name, v))
		}
	}
	for name, contents := range files {
		for i, data := range contents {
			fw, err := mw.CreateFormFile(name, name+string(rune('a'+i))+".png")
			require.NoError(cl.t, err)
			_, err = fw.Write(data)
			require.NoError(cl.t, err)
		}
	}
	require.NoError(cl.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return cl.do(req)
}

func (cl *client) doJSON(method, path string, payload any) *httptest.ResponseRecorder {
	cl.t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(cl.t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return cl.do(req)
}

// login signs in with the fixture password and fails the test otherwise.
func (cl *client) login(email string) {
	cl.t.Helper()
	w := cl.postForm("/sign-in/", url.Values{"email": {email}, "password": {testutil.Password}})
	require.Equal(cl.t, http.StatusFound, w.Code, w.Body.String())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// fieldErrors decodes a validation failure.
func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	var resp struct {
		apierrors.APIError
		Details map[string][]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, apierrors.ErrCodeValidationFailed, resp.Code)
	return resp.Details
}

// lastLink returns the path of the link in the most recent mail.
func (s *testServer) lastLink(t *testing.T) string {
	t.Helper()
	msg, ok := s.mailer.Last()
	require.True(t, ok, "no mail sent")
	m := linkPattern.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2, "no link in mail body: %s", msg.Body)
	return m[1]
}
