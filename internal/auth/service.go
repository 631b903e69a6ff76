package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/smdekate-cs/paper-trading-backend/internal/apperr"
	"github.com/smdekate-cs/paper-trading-backend/internal/notifications"
)

type Service struct {
	pool         *pgxpool.Pool
	issuer       string
	secret       []byte
	ttl          time.Duration
	portfolioSvc PortfolioCreator
}

// PortfolioCreator provisions the paper-money portfolio that every new
// user starts with.
type PortfolioCreator interface {
	EnsureDefault(ctx context.Context, userID string) error
}

type User struct {
	ID       string `json:"user_id"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func NewService(pool *pgxpool.Pool, issuer string, secret []byte, ttl time.Duration) *Service {
	return &Service{pool: pool, issuer: issuer, secret: secret, ttl: ttl}
}

func (s *Service) SetPortfolioService(svc PortfolioCreator) {
	s.portfolioSvc = svc
}

// Register creates a user with a short broker-style client id and, when a
// portfolio service is attached, their starting portfolio.
func (s *Service) Register(ctx context.Context, name, email, phone, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)
	if name == "" || email == "" || password == "" {
		return User{}, fmt.Errorf("%w: name, email and password are required", apperr.ErrValidation)
	}
	if len(password) < 8 {
		return User{}, fmt.Errorf("%w: password must be at least 8 characters", apperr.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	clientID := strings.ToUpper(uuid.NewString()[:8])

	var u User
	err = s.pool.QueryRow(ctx, `
		INSERT INTO users (client_id, name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, client_id, name, email, phone`,
		clientID, name, email, phone, string(hash),
	).Scan(&u.ID, &u.ClientID, &u.Name, &u.Email, &u.Phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, apperr.ErrDuplicateEmail
		}
		return User{}, err
	}

	if s.portfolioSvc != nil {
		if err := s.portfolioSvc.EnsureDefault(ctx, u.ID); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	var hash string
	err := s.pool.QueryRow(ctx, `
		SELECT id, client_id, name, email, phone, password_hash
		FROM users
		WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.ClientID, &u.Name, &u.Email, &u.Phone, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", User{}, errors.New("invalid credentials")
		}
		return "", User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", User{}, errors.New("invalid credentials")
	}
	token, err := s.signToken(u.ID)
	if err != nil {
		return "", User{}, err
	}
	return token, u, nil
}

func (s *Service) signToken(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Service) ParseToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Issuer != s.issuer {
		return "", errors.New("invalid issuer")
	}
	if claims.Subject == "" {
		return "", errors.New("invalid subject")
	}
	return claims.Subject, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, client_id, name, email, phone
		FROM users
		WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.ClientID, &u.Name, &u.Email, &u.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Contact resolves a user's delivery addresses for the notification
// dispatcher.
func (s *Service) Contact(ctx context.Context, userID string) (notifications.Contact, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return notifications.Contact{}, err
	}
	return notifications.Contact{Email: u.Email, Phone: u.Phone}, nil
}
