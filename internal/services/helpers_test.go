package services

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/repository"
	"github.com/yukikurage/geoblog/internal/testutil"
	"github.com/yukikurage/geoblog/internal/token"
)

type testEnv struct {
	db       *gorm.DB
	users    repository.UserRepository
	posts    repository.PostRepository
	catalog  repository.CatalogRepository
	mailer   *testutil.RecordingMailer
	storage  *testutil.MemoryStorage
	issuer   *token.Issuer
	auth     *AuthService
	profiles *ProfileService
	post     *PostService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	env := &testEnv{
		db:      db,
		users:   repository.NewUserRepository(db),
		posts:   repository.NewPostRepository(db),
		catalog: repository.NewCatalogRepository(db),
		mailer:  &testutil.RecordingMailer{},
		storage: testutil.NewMemoryStorage(),
		issuer:  token.NewIssuer("test-secret", 72*time.Hour),
	}
	log := zap.NewNop()
	site := Site{Protocol: "http", Domain: "geoblog.test"}

	env.auth = NewAuthService(env.users, env.issuer, env.mailer, site, log).WithHashCost(bcrypt.MinCost)
	env.profiles = NewProfileService(env.users, env.catalog, env.storage, log)
	env.post = NewPostService(env.posts, env.catalog, env.storage, 4, log)
	env.admin = NewAdminService(env.users, env.posts, env.catalog, env.storage, log).WithHashCost(bcrypt.MinCost)
	t.Cleanup(env.auth.Wait)
	return env
}
