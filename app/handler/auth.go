package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/trevor-gituru/solaris-conexus/gateway"
)

const (
	sessionLocal   = "authSession"
	sessionIDLocal = "authSessionID"
)

// AuthHandler exchanges backend credentials for a local dashboard session.
// The backend bearer token never leaves the server; clients hold a JWT
// referencing the session entry.
type AuthHandler struct {
	auth     Authenticator
	profiles ProfileService
	sessions *gateway.SessionRegistry
	authKey  []byte

	feed     FeedRunner
	feedOnce sync.Once

	mu        sync.Mutex
	feedToken string
}

func NewAuthHandler(auth Authenticator, profiles ProfileService, sessions *gateway.SessionRegistry, authKey string, feed FeedRunner) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		profiles: profiles,
		sessions: sessions,
		authKey:  []byte(authKey),
		feed:     feed,
	}
}

func (h *AuthHandler) InitRoute(app *fiber.App) {
	router := app.Group("/auth")

	router.Post("/login", h.Login)
	router.Post("/register", h.Register)
}

// InitProtectedRoute registers the routes that need a live session; call
// it after AuthMiddleware is installed.
func (h *AuthHandler) InitProtectedRoute(app *fiber.App) {
	app.Post("/auth/logout", h.Logout)
}

// Claims represents the JWT claims
type Claims struct {
	Session string `json:"session"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {

	var req LoginRequest
	err := c.BodyParser(&req)
	if err != nil {
		return fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&req)
	if err != nil {
		return fmt.Errorf("param validation error. %w", err)
	}

	token, err := h.auth.Login(c.Context(), gateway.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		var rejected *gateway.ServerRejectedError
		if errors.As(err, &rejected) {
			return c.Status(fiber.StatusUnauthorized).SendString(rejected.Detail)
		}
		return err
	}

	expiry := time.Now().Add(24 * time.Hour)
	sess := &gateway.AuthSession{
		Token:  token,
		Email:  req.Email,
		Expiry: expiry,
	}

	// The profile's recorded wallet address is the settlement guard. A
	// missing profile is fine; settlements fail later with a clear message.
	profile, err := h.profiles.Profile(c.Context(), sess)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Profile fetch failed on login")
	} else if profile != nil {
		sess.ExpectedAddress = profile.AccountAddress
	}

	id := gateway.NewSessionID()
	h.sessions.Put(id, sess)

	claims := &Claims{
		Session: id,
		Email:   req.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   req.Email,
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.authKey)
	if err != nil {
		return err
	}

	// The feed re-reads the token on every reconnect, so each login keeps
	// it dialing with a live credential.
	if h.feed != nil {
		h.mu.Lock()
		h.feedToken = token
		h.mu.Unlock()

		h.feedOnce.Do(func() {
			go h.feed.Run(context.Background(), h.latestFeedToken)
		})
	}

	return c.Status(fiber.StatusOK).JSON(JWTResponse{
		Token:  tokenString,
		Expiry: expiry.Unix(),
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {

	var req RegisterRequest
	err := c.BodyParser(&req)
	if err != nil {
		return fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&req)
	if err != nil {
		return fmt.Errorf("param validation error. %w", err)
	}

	msg, err := h.auth.Register(c.Context(), gateway.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var rejected *gateway.ServerRejectedError
		if errors.As(err, &rejected) {
			return c.Status(rejected.Status).SendString(rejected.Detail)
		}
		return err
	}

	return c.Status(fiber.StatusCreated).SendString(msg)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {

	id, _ := c.Locals(sessionIDLocal).(string)
	if id != "" {
		h.sessions.Delete(id)
	}
	return c.Status(fiber.StatusOK).SendString("logged out")
}

func (h *AuthHandler) AuthMiddleware(c *fiber.Ctx) error {

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).SendString("authorization header missing")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).SendString("invalid authorization format")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.authKey, nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).SendString("invalid token")
	}

	sess, ok := h.sessions.Get(claims.Session)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("session expired")
	}

	c.Locals(sessionLocal, sess)
	c.Locals(sessionIDLocal, claims.Session)

	return c.Next()
}

func (h *AuthHandler) latestFeedToken() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.feedToken
}

func sessionFrom(c *fiber.Ctx) *gateway.AuthSession {
	sess, _ := c.Locals(sessionLocal).(*gateway.AuthSession)
	return sess
}
