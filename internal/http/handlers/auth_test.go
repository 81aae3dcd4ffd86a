package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"userhub/internal/auth"
	"userhub/internal/db"
	"userhub/internal/domain/user"
	"userhub/internal/http/handlers"
	"userhub/internal/security"

	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake store implementation of the handlers store interfaces

type fakeUsersStore struct {
	insertFn     func(ctx context.Context, u user.User) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	listFn       func(ctx context.Context) ([]user.User, error)
	getByIDFn    func(ctx context.Context, id string) (user.User, error)
	deleteFn     func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUsersStore) Insert(ctx context.Context, u user.User) (user.User, error) {
	if f.insertFn != nil {
		return f.insertFn(ctx, u)
	}

	u.CreatedAt = time.Now().UTC()
	return u, nil
}

func (f *fakeUsersStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersStore) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}

	return []user.User{}, nil
}

func (f *fakeUsersStore) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersStore) Delete(ctx context.Context, id string) (user.User, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return user.User{}, user.ErrNotFound
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func testJWTManager() *auth.Manager {
	return auth.NewManager("test-secret-key", time.Hour)
}

type detailResponse struct {
	Detail string `json:"detail"`
}

// Register tests

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		storeSetUp     func(*fakeUsersStore)
		wantStatusCode int
		wantDetail     string
	}{
		{
			name: "success",
			body: `{"email":"sam@example.com","name":"Sam Doe","password":"password123"}`,
			storeSetUp: func(f *fakeUsersStore) {
				f.insertFn = func(ctx context.Context, u user.User) (user.User, error) {
					if u.PasswordHash == nil || *u.PasswordHash == "" {
						return user.User{}, errors.New("expected a password hash on insert")
					}
					if u.ID == "" {
						return user.User{}, errors.New("expected a server-assigned id")
					}

					u.CreatedAt = time.Now().UTC()
					return u, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "short_password",
			body: `{"email":"sam@example.com","name":"Sam Doe","password":"12345"}`,
			storeSetUp: func(f *fakeUsersStore) {
				// the length check runs first, so the store must not be touched
				f.insertFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, errors.New("store should not be called")
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantDetail:     "Password must be at least 6 characters long",
		},
		{
			name: "duplicate_email",
			body: `{"email":"sam@example.com","name":"Sam Doe","password":"password123"}`,
			storeSetUp: func(f *fakeUsersStore) {
				f.insertFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusConflict,
			wantDetail:     "Email already registered",
		},
		{
			name:           "validation_error",
			body:           `{"email":"not-an-email","password":"password123"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_error",
			body: `{"email":"sam@example.com","name":"Sam Doe","password":"password123"}`,
			storeSetUp: func(f *fakeUsersStore) {
				f.insertFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name: "pool_exhausted",
			body: `{"email":"sam@example.com","name":"Sam Doe","password":"password123"}`,
			storeSetUp: func(f *fakeUsersStore) {
				f.insertFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, db.ErrAcquireTimeout
				}
			},
			wantStatusCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUsersStore{}

			if tt.storeSetUp != nil {
				tt.storeSetUp(store)
			}

			h := handlers.NewAuthHandler(store, testJWTManager())

			r := setupRouter(http.MethodPost, "/auth/register", h.Register)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantDetail != "" {
				var resp detailResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Detail != tt.wantDetail {
					t.Fatalf("got detail %q, want %q", resp.Detail, tt.wantDetail)
				}
			}
		})
	}
}

func TestRegisterHandler_NeverEchoesHash(t *testing.T) {
	store := &fakeUsersStore{}

	h := handlers.NewAuthHandler(store, testJWTManager())
	r := setupRouter(http.MethodPost, "/auth/register", h.Register)

	body := `{"email":"sam@example.com","name":"Sam Doe","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if _, ok := resp["password_hash"]; ok {
		t.Fatalf("response leaked password_hash: %s", w.Body.String())
	}
	if _, ok := resp["password"]; ok {
		t.Fatalf("response leaked password: %s", w.Body.String())
	}
	if resp["email"] != "sam@example.com" {
		t.Fatalf("unexpected email in response: %v", resp["email"])
	}
}

// Login tests

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	storedUser := user.User{
		ID:           "user-1",
		Email:        "sam@example.com",
		Name:         "Sam Doe",
		PasswordHash: &hash,
		CreatedAt:    time.Now().UTC(),
	}

	tests := []struct {
		name           string
		body           string
		storeSetUp     func(*fakeUsersStore)
		wantStatusCode int
		wantDetail     string
	}{
		{
			name: "success",
			body: `{"email":"sam@example.com","password":"password123"}`,
			storeSetUp: func(f *fakeUsersStore) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return storedUser, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "unknown_email",
			body: `{"email":"ghost@example.com","password":"password123"}`,
			storeSetUp: func(f *fakeUsersStore) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusUnauthorized,
			wantDetail:     "Invalid credentials",
		},
		{
			name: "wrong_password",
			body: `{"email":"sam@example.com","password":"not-the-password"}`,
			storeSetUp: func(f *fakeUsersStore) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return storedUser, nil
				}
			},
			wantStatusCode: http.StatusUnauthorized,
			wantDetail:     "Invalid credentials",
		},
		{
			name: "user_without_password",
			body: `{"email":"sam@example.com","password":"password123"}`,
			storeSetUp: func(f *fakeUsersStore) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					u := storedUser
					u.PasswordHash = nil
					return u, nil
				}
			},
			wantStatusCode: http.StatusUnauthorized,
			wantDetail:     "Invalid credentials",
		},
		{
			name:           "validation_error",
			body:           `{"email":"sam@example.com"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_error",
			body: `{"email":"sam@example.com","password":"password123"}`,
			storeSetUp: func(f *fakeUsersStore) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUsersStore{}

			if tt.storeSetUp != nil {
				tt.storeSetUp(store)
			}

			h := handlers.NewAuthHandler(store, testJWTManager())

			r := setupRouter(http.MethodPost, "/auth/login", h.Login)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantDetail != "" {
				var resp detailResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Detail != tt.wantDetail {
					t.Fatalf("got detail %q, want %q", resp.Detail, tt.wantDetail)
				}
			}
		})
	}
}

func TestLoginHandler_TokenIsUsable(t *testing.T) {
	hash, err := security.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	store := &fakeUsersStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{
				ID:           "user-7",
				Email:        email,
				Name:         "Sam Doe",
				PasswordHash: &hash,
			}, nil
		},
	}

	jwtManager := testJWTManager()
	h := handlers.NewAuthHandler(store, jwtManager)
	r := setupRouter(http.MethodPost, "/auth/login", h.Login)

	body := `{"email":"sam@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.User.ID != "user-7" {
		t.Fatalf("got user id %q, want user-7", resp.User.ID)
	}

	claims, err := jwtManager.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("login returned an unverifiable token: %v", err)
	}
	if claims.UserID != "user-7" {
		t.Fatalf("token carries user id %q, want user-7", claims.UserID)
	}
}
