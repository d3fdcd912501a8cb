// Package auth handles accounts and authentication: registration, login,
// JWT issuing and refreshing, and the middleware that guards write endpoints.
//
// Files:
//   - service.go: AuthService, password hashing and token handling
//   - handlers.go: /auth HTTP endpoints
//   - middleware.go: JWTMiddleware and the user id context helpers
//   - response.go: JSON response and error writers shared by every package
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/config"
	"github.com/user/movielab-go/logging"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenIssuer      = "movielab"

	// PgUniqueViolation is the PostgreSQL error code for unique constraint violations.
	PgUniqueViolation = "23505"
)

// Service is the behaviour the HTTP handlers depend on.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
}

// AuthService provides authentication-related services.
type AuthService struct {
	dbPool     *pgxpool.Pool
	authConfig config.AuthConfig
}

var _ Service = (*AuthService)(nil)

// NewAuthService creates a new AuthService.
func NewAuthService(dbPool *pgxpool.Pool, authConfig config.AuthConfig) *AuthService {
	return &AuthService{
		dbPool:     dbPool,
		authConfig: authConfig,
	}
}

// CustomClaims embeds jwt.RegisteredClaims and adds custom fields.
type CustomClaims struct {
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// Register creates a new user. Duplicate usernames or emails are a Conflict.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		HashedPassword: string(hashedPassword),
	}

	err = s.dbPool.QueryRow(ctx,
		`INSERT INTO users (username, email, password)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		user.Username, user.Email, user.HashedPassword,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if conflict := uniqueViolationToConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	logging.Ctx(ctx).Info().Int("user_id", user.ID).Msg("User registered")
	return user, nil
}

// uniqueViolationToConflict maps a users unique violation to a Conflict error, or returns nil.
func uniqueViolationToConflict(err error) *apperror.AppError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != PgUniqueViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return apperror.NewConflictError("username already exists", nil)
	case strings.Contains(pgErr.ConstraintName, "email"):
		return apperror.NewConflictError("email already exists", nil)
	default:
		return apperror.NewConflictError("user already exists", nil)
	}
}

// Login authenticates a user and returns tokens.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.getUserByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// same message as a bad password so logins cannot be enumerated
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}

	return s.generateTokens(user.ID)
}

// RefreshToken issues a new access token for a valid refresh token. The
// refresh token itself is returned unchanged.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenResponse, error) {
	claims, err := s.validateToken(refreshTokenString, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError("invalid refresh token", err)
	}

	accessToken, expiresAt, err := s.generateSpecificToken(claims.UserID, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    expiresAt.Unix(),
	}, nil
}

func (s *AuthService) generateTokens(userID int) (*TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.generateSpecificToken(userID, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.generateSpecificToken(userID, tokenTypeRefresh, s.authConfig.RefreshTokenDuration)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    accessExpiresAt.Unix(),
	}, nil
}

func (s *AuthService) generateSpecificToken(userID int, tokenType string, duration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(duration)
	claims := &CustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.Itoa(userID),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.authConfig.JWTSecret))
	if err != nil {
		return "", time.Time{}, apperror.NewInternalError("failed to sign token", err)
	}
	return tokenString, expirationTime, nil
}

// validateToken checks signature, expiry and the token type claim.
func (s *AuthService) validateToken(tokenString string, expectedTokenType string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.authConfig.JWTSecret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedTokenType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedTokenType, claims.TokenType)
	}
	return claims, nil
}

// getUserByLogin looks the login up as an email when it contains '@', otherwise
// as a username with an email fallback.
func (s *AuthService) getUserByLogin(ctx context.Context, login string) (*User, error) {
	const byUsername = `SELECT id, username, email, password, created_at FROM users WHERE username = $1`
	const byEmail = `SELECT id, username, email, password, created_at FROM users WHERE email = $1`

	scan := func(query string, arg string) (*User, error) {
		var u User
		err := s.dbPool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		return &u, nil
	}

	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return scan(byEmail, strings.ToLower(login))
	}

	user, err := scan(byUsername, login)
	if errors.Is(err, pgx.ErrNoRows) {
		return scan(byEmail, strings.ToLower(login))
	}
	return user, err
}
