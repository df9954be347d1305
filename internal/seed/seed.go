// Package seed fills the database with reference rows and demo content.
// It is meant for development installs.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/repository"
	"github.com/yukikurage/geoblog/internal/services"
	"github.com/yukikurage/geoblog/internal/slugs"
)

var (
	Sexes     = []string{"female", "male"}
	Countries = []string{"Estonia", "Finland", "Georgia", "Germany", "Latvia", "Lithuania", "Poland"}
	Tags      = []string{"city", "food", "hiking", "museum", "nature", "sea", "travel"}
	Emojis    = map[string]color.RGBA{
		"sun":   {R: 250, G: 200, B: 40, A: 255},
		"rain":  {R: 60, G: 120, B: 220, A: 255},
		"heart": {R: 220, G: 40, B: 70, A: 255},
		"leaf":  {R: 60, G: 170, B: 80, A: 255},
	}
)

// DemoPassword is the password of every demo user.
const DemoPassword = "demo-password"

// Seeder creates rows through the same services the site uses.
type Seeder struct {
	users    repository.UserRepository
	catalog  repository.CatalogRepository
	admin    *services.AdminService
	content  *services.PostService
	log      *zap.Logger
	hashCost int
	faker    *gofakeit.Faker
}

func New(users repository.UserRepository, catalog repository.CatalogRepository, admin *services.AdminService, content *services.PostService, log *zap.Logger) *Seeder {
	return &Seeder{
		users:    users,
		catalog:  catalog,
		admin:    admin,
		content:  content,
		log:      log,
		hashCost: bcrypt.DefaultCost,
		faker:    gofakeit.New(0),
	}
}

// WithHashCost overrides the bcrypt cost of demo users.
func (s *Seeder) WithHashCost(cost int) *Seeder {
	s.hashCost = cost
	return s
}

// WithSeed makes generated content reproducible.
func (s *Seeder) WithSeed(seed int64) *Seeder {
	s.faker = gofakeit.New(seed)
	return s
}

// Reference creates the sexes, countries, tags and emoji that do not exist yet.
func (s *Seeder) Reference(ctx context.Context) error {
	sexes, err := s.catalog.ListSexes()
	if err != nil {
		return err
	}
	have := map[string]bool{}
	for _, sex := range sexes {
		have[sex.Name] = true
	}
	for _, name := range Sexes {
		if have[name] {
			continue
		}
		if _, err := s.admin.CreateSex(name); err != nil {
			return fmt.Errorf("sex %q: %w", name, err)
		}
	}

	countries, err := s.catalog.ListCountries()
	if err != nil {
		return err
	}
	have = map[string]bool{}
	for _, c := range countries {
		have[c.Name] = true
	}
	for _, name := range Countries {
		if have[name] {
			continue
		}
		if _, err := s.admin.CreateCountry(name); err != nil {
			return fmt.Errorf("country %q: %w", name, err)
		}
	}

	for _, name := range Tags {
		if _, err := s.admin.CreateTag(name); err != nil && !errors.Is(err, services.ErrAlreadyExists) {
			return fmt.Errorf("tag %q: %w", name, err)
		}
	}

	emojis, err := s.catalog.ListEmojis()
	if err != nil {
		return err
	}
	have = map[string]bool{}
	for _, e := range emojis {
		have[e.Name] = true
	}
	for name, fill := range Emojis {
		if have[name] {
			continue
		}
		if _, err := s.admin.CreateEmoji(ctx, name, solidPNG(64, 64, fill)); err != nil {
			return fmt.Errorf("emoji %q: %w", name, err)
		}
	}

	s.log.Info("reference data seeded")
	return nil
}

// Demo creates active demo users, each with the given number of posts.
func (s *Seeder) Demo(ctx context.Context, users, posts int) error {
	tags, err := s.catalog.ListTags()
	if err != nil {
		return err
	}
	emojis, err := s.catalog.ListEmojis()
	if err != nil {
		return err
	}
	if len(tags) == 0 || len(emojis) == 0 {
		return errors.New("seed reference data first")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.hashCost)
	if err != nil {
		return err
	}

	for i := 0; i < users; i++ {
		user, err := s.demoUser(string(hash))
		if err != nil {
			return err
		}
		for j := 0; j < posts; j++ {
			if _, err := s.content.CreatePost(ctx, user, s.demoPost(tags, emojis)); err != nil {
				return fmt.Errorf("demo post for %s: %w", user.Email, err)
			}
		}
	}

	s.log.Info("demo content seeded", zap.Int("users", users), zap.Int("posts_per_user", posts))
	return nil
}

func (s *Seeder) demoUser(hash string) (*models.User, error) {
	var email string
	for {
		email = s.faker.Email()
		taken, err := s.users.EmailTaken(email, 0)
		if err != nil {
			return nil, err
		}
		if !taken {
			break
		}
	}

	base, err := slugs.MakeOr(slugs.FromEmail(email), "user")
	if err != nil {
		return nil, err
	}
	slug, err := slugs.Unique(base, s.users.SlugExists)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:           email,
		PasswordHash:    hash,
		IsActive:        true,
		SignupConfirmed: true,
		Avatar:          constants.DefaultAvatarPath,
		Slug:            slug,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("demo user %s: %w", email, err)
	}
	return user, nil
}

func (s *Seeder) demoPost(tags []models.Tag, emojis []models.Emoji) services.CreatePostInput {
	picked := s.faker.Number(1, min(3, len(tags)))
	order := rand.New(rand.NewSource(s.faker.Int64())).Perm(len(tags))
	tagIDs := make([]uint64, picked)
	for i := range tagIDs {
		tagIDs[i] = tags[order[i]].ID
	}

	fill := color.RGBA{R: s.faker.Uint8(), G: s.faker.Uint8(), B: s.faker.Uint8(), A: 255}
	return services.CreatePostInput{
		Title:   truncate(s.faker.Sentence(4), constants.MaxPostTitleLength),
		Text:    truncate(s.faker.Sentence(15), constants.MaxPostTextLength),
		TagIDs:  tagIDs,
		EmojiID: emojis[s.faker.Number(0, len(emojis)-1)].ID,
		Lat:     s.faker.Latitude(),
		Lon:     s.faker.Longitude(),
		Images:  []io.Reader{solidPNG(320, 240, fill)},
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func solidPNG(w, h int, fill color.RGBA) io.Reader {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	buf := new(bytes.Buffer)
	// encoding an in-memory RGBA image cannot fail
	_ = png.Encode(buf, img)
	return buf
}
