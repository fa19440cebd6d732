package auth_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
	"github.com/frahmantamala/access-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

const testSecret = "0123456789abcdef0123456789abcdef"

// MockUserRepo implements auth.UserRepository for testing
type MockUserRepo struct {
	users map[string]*auth.AuthUser
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[string]*auth.AuthUser)}
}

func (m *MockUserRepo) GetByEmailWithRole(email string) (*auth.AuthUser, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) GetByID(id int64) (*auth.AuthUser, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, internal.ErrUserNotFound
}

func (m *MockUserRepo) UpdatePassword(userID int64, passwordHash string, mustChange bool) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			u.MustChangePassword = mustChange
			return nil
		}
	}
	return internal.ErrUserNotFound
}

func (m *MockUserRepo) AddUser(u *auth.AuthUser, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u.PasswordHash = string(hash)
	m.users[u.Email] = u
}

// recordingMailer captures outbound mail instead of sending it.
type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(to, subject, htmlBody string) error {
	m.sent = append(m.sent, to)
	return nil
}

type memoryAuditRepo struct {
	entries []string
}

func (m *memoryAuditRepo) Append(userID *int64, actionType, details string) error {
	m.entries = append(m.entries, actionType)
	return nil
}

func (m *memoryAuditRepo) List(page, limit int, search string) (*audit.Page, error) {
	return &audit.Page{}, nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo    *MockUserRepo
		mailer  *recordingMailer
		tokens  *auth.JWTTokenGenerator
		service *auth.Service
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = NewMockUserRepo()
		mailer = &recordingMailer{}
		tokens = auth.NewJWTTokenGenerator(testSecret, 6*time.Hour)
		service = auth.NewService(repo, tokens, mailer, audit.NewService(&memoryAuditRepo{}, logger), bcrypt.MinCost, logger)

		repo.AddUser(&auth.AuthUser{
			ID:       1,
			FullName: "Ava Admin",
			Email:    "ava@example.com",
			Status:   "Active",
			Role:     "Super Admin",
		}, "correct-password")
	})

	Describe("SignIn", func() {
		It("issues a token whose claims mirror the account", func() {
			result, err := service.SignIn(auth.SignInDTO{
				Email:    "ava@example.com",
				Password: "correct-password",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Token).NotTo(BeEmpty())
			Expect(result.Role).To(Equal("Super Admin"))

			claims, err := tokens.Validate(result.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
			Expect(claims.FullName).To(Equal("Ava Admin"))
			Expect(claims.Email).To(Equal("ava@example.com"))
			Expect(claims.Role).To(Equal("Super Admin"))
			Expect(claims.MustChangePassword).To(BeFalse())
		})

		It("rejects a wrong password", func() {
			_, err := service.SignIn(auth.SignInDTO{
				Email:    "ava@example.com",
				Password: "wrong",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects an unknown email with the same error as a wrong password", func() {
			_, err := service.SignIn(auth.SignInDTO{
				Email:    "nobody@example.com",
				Password: "whatever",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("refuses an inactive account even with correct credentials", func() {
			repo.AddUser(&auth.AuthUser{
				ID:     2,
				Email:  "gone@example.com",
				Status: "Inactive",
			}, "correct-password")

			_, err := service.SignIn(auth.SignInDTO{
				Email:    "gone@example.com",
				Password: "correct-password",
			})
			Expect(err).To(MatchError(internal.ErrUserInactive))
		})
	})

	Describe("ForgotPassword", func() {
		It("replaces the password, sets the must-change flag and mails the user", func() {
			service.ForgotPassword("ava@example.com")

			stored := repo.users["ava@example.com"]
			Expect(stored.MustChangePassword).To(BeTrue())
			Expect(mailer.sent).To(ConsistOf("ava@example.com"))

			// old password no longer works
			_, err := service.SignIn(auth.SignInDTO{
				Email:    "ava@example.com",
				Password: "correct-password",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("does nothing observable for an unknown email", func() {
			service.ForgotPassword("nobody@example.com")
			Expect(mailer.sent).To(BeEmpty())
		})
	})

	Describe("SetPassword", func() {
		It("stores the new password and clears the must-change flag", func() {
			service.ForgotPassword("ava@example.com")

			err := service.SetPassword(1, "brand-new-password")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.users["ava@example.com"].MustChangePassword).To(BeFalse())

			_, err = service.SignIn(auth.SignInDTO{
				Email:    "ava@example.com",
				Password: "brand-new-password",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a password shorter than six characters", func() {
			err := service.SetPassword(1, "short")
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodePasswordTooShort))
		})
	})

	Describe("Token validation", func() {
		It("rejects a token signed with a different secret", func() {
			other := auth.NewJWTTokenGenerator("another-secret-another-secret-32", time.Hour)
			token, _, err := other.Generate(&auth.AuthUser{ID: 1, Email: "x@example.com"})
			Expect(err).NotTo(HaveOccurred())

			_, err = tokens.Validate(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects an expired token", func() {
			shortLived := auth.NewJWTTokenGenerator(testSecret, -time.Minute)
			token, _, err := shortLived.Generate(&auth.AuthUser{ID: 1, Email: "x@example.com"})
			Expect(err).NotTo(HaveOccurred())

			_, err = tokens.Validate(token)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("rejects garbage", func() {
			_, err := tokens.Validate("not-a-token")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})
})

var _ = Describe("Middleware", func() {
	var (
		repo    *MockUserRepo
		tokens  *auth.JWTTokenGenerator
		service *auth.Service
		mw      *auth.Middleware
		next    http.Handler
		seen    *internal.Principal
	)

	tokenFor := func(u *auth.AuthUser) string {
		token, _, err := tokens.Generate(u)
		Expect(err).NotTo(HaveOccurred())
		return token
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = NewMockUserRepo()
		tokens = auth.NewJWTTokenGenerator(testSecret, time.Hour)
		service = auth.NewService(repo, tokens, &recordingMailer{}, audit.NewService(&memoryAuditRepo{}, logger), bcrypt.MinCost, logger)
		mw = auth.NewMiddleware(service)

		seen = nil
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := internal.PrincipalFromContext(r.Context()); ok {
				seen = p
			}
			w.WriteHeader(http.StatusOK)
		})
	})

	Describe("Authenticate", func() {
		It("rejects a missing token", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)

			mw.Authenticate(next).ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("stores the principal for a valid token", func() {
			token := tokenFor(&auth.AuthUser{ID: 7, FullName: "Nia", Email: "nia@example.com", Role: "Viewer"})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/permissions", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			mw.Authenticate(next).ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(seen).NotTo(BeNil())
			Expect(seen.UserID).To(Equal(int64(7)))
			Expect(seen.Role).To(Equal("Viewer"))
		})

		It("blocks an account that must change its password", func() {
			token := tokenFor(&auth.AuthUser{ID: 7, Email: "nia@example.com", MustChangePassword: true})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/permissions", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			mw.Authenticate(next).ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("still allows the set-password endpoint for such an account", func() {
			token := tokenFor(&auth.AuthUser{ID: 7, Email: "nia@example.com", MustChangePassword: true})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/set_password", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			mw.Authenticate(next).ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("AdminOnly", func() {
		serve := func(role string) *httptest.ResponseRecorder {
			token := tokenFor(&auth.AuthUser{ID: 7, Email: "x@example.com", Role: role})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/roles", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			mw.Authenticate(mw.AdminOnly(next)).ServeHTTP(rec, req)
			return rec
		}

		It("admits admin case-insensitively", func() {
			Expect(serve("ADMIN").Code).To(Equal(http.StatusOK))
			Expect(serve("Super Admin").Code).To(Equal(http.StatusOK))
		})

		It("denies every other role label", func() {
			Expect(serve("Editor").Code).To(Equal(http.StatusForbidden))
			Expect(serve("").Code).To(Equal(http.StatusForbidden))
		})
	})
})
