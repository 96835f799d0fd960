package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/getapet/adoption-api/internal/config"
	"github.com/getapet/adoption-api/internal/model"
	"github.com/getapet/adoption-api/internal/queue"
	"github.com/getapet/adoption-api/internal/repository/memory"
	"github.com/getapet/adoption-api/internal/utils"
)

// fakeFiles satisfies storage.FileStore without touching disk.
type fakeFiles struct {
	saved []string
	fail  bool
}

func (f *fakeFiles) Save(fh *multipart.FileHeader) (string, error) {
	if f.fail {
		return "", fmt.Errorf("disk full")
	}
	ref := fmt.Sprintf("stored-%d-%s", len(f.saved), fh.Filename)
	f.saved = append(f.saved, ref)
	return ref, nil
}

// recordPublisher captures published events for assertions.
type recordPublisher struct {
	visits    []queue.VisitScheduledEvent
	concludes []queue.AdoptionConcludedEvent
}

func (p *recordPublisher) VisitScheduled(_ context.Context, ev queue.VisitScheduledEvent) {
	p.visits = append(p.visits, ev)
}

func (p *recordPublisher) AdoptionConcluded(_ context.Context, ev queue.AdoptionConcludedEvent) {
	p.concludes = append(p.concludes, ev)
}

// env bundles an in-memory application for handler tests.
type env struct {
	e      *echo.Echo
	cfg    config.Config
	users  *memory.UserStore
	pets   *memory.PetStore
	files  *fakeFiles
	events *recordPublisher

	auth     *AuthHandler
	pet      *PetHandler
	adoption *AdoptionHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.Config{
		Env:        "test",
		JWTSecret:  "handler-test-secret",
		BcryptCost: bcrypt.MinCost,
	}
	v := &env{
		e:      echo.New(),
		cfg:    cfg,
		users:  memory.NewUserStore(),
		pets:   memory.NewPetStore(),
		files:  &fakeFiles{},
		events: &recordPublisher{},
	}
	v.auth = NewAuthHandler(cfg, v.users, v.files)
	v.pet = NewPetHandler(v.users, v.pets, v.files)
	v.adoption = NewAdoptionHandler(v.users, v.pets, v.events)
	return v
}

// seedUser inserts a user directly into the store with a usable bcrypt
// hash for "password123".
func (v *env) seedUser(t *testing.T, name, email string) model.User {
	t.Helper()
	hash, err := utils.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	u := model.User{
		Name:         name,
		Email:        email,
		Phone:        "555-0100",
		PasswordHash: hash,
	}
	require.NoError(t, v.users.Create(context.Background(), &u))
	return u
}

// seedPet inserts a pet owned by the given user.
func (v *env) seedPet(t *testing.T, owner model.User, name string) model.Pet {
	t.Helper()
	p := model.Pet{
		Name:      name,
		Species:   "dog",
		Age:       2,
		Weight:    8.4,
		Images:    []string{"seed.jpg"},
		Available: true,
		Owner: model.OwnerRef{
			ID:     owner.ID,
			Name:   owner.Name,
			Avatar: owner.Avatar,
			Phone:  owner.Phone,
		},
	}
	require.NoError(t, v.pets.Create(context.Background(), &p))
	return p
}

// request runs a handler against a synthetic request. callerID > 0
// simulates the JWT middleware having resolved that user.
func (v *env) request(t *testing.T, h echo.HandlerFunc, method, target string, body io.Reader, contentType string, callerID uint64, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := v.e.NewContext(req, rec)
	if callerID > 0 {
		c.Set("user_id", callerID)
	}
	if len(params) > 0 {
		names := make([]string, 0, len(params))
		values := make([]string, 0, len(params))
		for k, val := range params {
			names = append(names, k)
			values = append(values, val)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	require.NoError(t, h(c))
	return rec
}

// requestWithAuth runs a handler with a raw Authorization header value,
// bypassing the JWT middleware so handlers that read the header
// themselves can be exercised.
func (v *env) requestWithAuth(t *testing.T, h echo.HandlerFunc, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, auth)
	rec := httptest.NewRecorder()
	c := v.e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func ctxBg() context.Context { return context.Background() }

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }

func (v *env) postJSON(t *testing.T, h echo.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return v.request(t, h, http.MethodPost, target, bytes.NewReader(b), echo.MIMEApplicationJSON, 0, nil)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// petForm builds a multipart body with the given fields and one fake
// image per name in images.
func petForm(t *testing.T, fields map[string]string, images ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, val := range fields {
		require.NoError(t, w.WriteField(k, val))
	}
	for _, name := range images {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func validPetFields() map[string]string {
	return map[string]string{
		"name":        "Rex",
		"species":     "dog",
		"description": "friendly",
		"age":         "3",
		"weight":      "12.5",
	}
}
