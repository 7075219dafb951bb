package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/remote"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var profilePhonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// defaultCredentials 内置演示账号；托管用户集合不保存密码
var defaultCredentials = map[string]string{
	"user@example.com":  "password123",
	"admin@example.com": "admin123",
}

// UserRemote 远端用户集合
type UserRemote interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, update remote.ProfileUpdate) (*models.User, error)
}

// JWTClaims 会话令牌声明
type JWTClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// LoginResult 登录结果
type LoginResult struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Cart      *CartView   `json:"cart"`
}

// ProfileInput 资料修改输入，nil 字段不修改
type ProfileInput struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// AuthService 登录与会话服务
type AuthService struct {
	cfg         *config.Config
	users       UserRemote
	sessions    *SessionRegistry
	carts       *CartService
	credentials map[string][]byte
}

// NewAuthService 创建认证服务
func NewAuthService(cfg *config.Config, users UserRemote, sessions *SessionRegistry, carts *CartService) *AuthService {
	return newAuthService(cfg, users, sessions, carts, bcrypt.DefaultCost)
}

func newAuthService(cfg *config.Config, users UserRemote, sessions *SessionRegistry, carts *CartService, cost int) *AuthService {
	credentials := make(map[string][]byte, len(defaultCredentials))
	for email, password := range defaultCredentials {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			logger.Errorw("credential_hash_failed", "email", email, "error", err)
			continue
		}
		credentials[email] = hash
	}
	return &AuthService{
		cfg:         cfg,
		users:       users,
		sessions:    sessions,
		carts:       carts,
		credentials: credentials,
	}
}

// VerifyPassword 校验内置账号密码
func (s *AuthService) VerifyPassword(email, password string) bool {
	hash, ok := s.credentials[email]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(user models.User) (string, time.Time, error) {
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Login 邮箱登录：在用户集合中按邮箱查找，再校验内置密码
// 登录成功后打开购物车会话并从远端加载
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	users, err := s.users.List(ctx)
	if err != nil {
		logger.Warnw("login_user_list_failed", "error", err)
		return nil, err
	}
	var found *models.User
	for i := range users {
		if strings.EqualFold(strings.TrimSpace(users[i].Email), email) {
			found = &users[i]
			break
		}
	}
	if found == nil {
		logger.Infow("login_rejected", "email", email, "reason", "user_not_found")
		return nil, ErrInvalidCredentials
	}
	if !s.VerifyPassword(email, password) {
		logger.Infow("login_rejected", "email", email, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(*found)
	if err != nil {
		return nil, err
	}
	view := s.openSession(ctx, *found)
	logger.Infow("login_succeeded", "user_id", found.ID)
	return &LoginResult{User: *found, Token: token, ExpiresAt: expiresAt, Cart: view}, nil
}

func (s *AuthService) openSession(ctx context.Context, user models.User) *CartView {
	s.sessions.Open(user.ID)
	s.sessions.SaveUser(ctx, user)
	if _, err := s.carts.Load(ctx, user.ID); err != nil {
		logger.Warnw("login_cart_load_failed", "user_id", user.ID, "error", err)
	}
	view, err := s.carts.View(user.ID)
	if err != nil {
		return nil
	}
	return view
}

// ResumeSession 令牌有效但会话不存在时（如进程重启）重新打开会话
func (s *AuthService) ResumeSession(ctx context.Context, claims *JWTClaims) error {
	if claims == nil || claims.UserID == "" {
		return ErrInvalidToken
	}
	if _, ok := s.sessions.Get(claims.UserID); ok {
		return nil
	}
	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		if remote.IsNotFound(err) {
			return ErrUserNotFound
		}
		// 用户服务不可用时退回镜像中的登录用户
		mirrored, ok := s.sessions.LoadUser(ctx, claims.UserID)
		if !ok {
			return err
		}
		logger.Warnw("session_resumed_from_mirror", "user_id", claims.UserID, "error", err)
		user = mirrored
	}
	s.openSession(ctx, *user)
	logger.Infow("session_resumed", "user_id", user.ID)
	return nil
}

// Logout 关闭会话，购物车回到空快照
func (s *AuthService) Logout(userID string) {
	s.sessions.Close(userID)
	logger.Infow("logout", "user_id", userID)
}

// CurrentUser 当前用户资料
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if remote.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile 修改用户资料
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*models.User, error) {
	update, err := normalizeProfile(input)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Update(ctx, userID, update)
	if err != nil {
		if remote.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.sessions.SaveUser(ctx, *user)
	return user, nil
}

func normalizeProfile(input ProfileInput) (remote.ProfileUpdate, error) {
	var update remote.ProfileUpdate
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if utf8.RuneCountInString(name) < 3 {
			return update, &FieldError{Field: "name", Message: "Name is too short"}
		}
		update.Name = &name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		phone = strings.TrimPrefix(strings.TrimPrefix(phone, "+91"), "-")
		if phone != "" && !profilePhonePattern.MatchString(phone) {
			return update, &FieldError{Field: "phone", Message: "Enter a valid 10-digit mobile number"}
		}
		update.Phone = &phone
	}
	if input.Address != nil {
		address := strings.TrimSpace(*input.Address)
		if address != "" && utf8.RuneCountInString(address) < 10 {
			return update, &FieldError{Field: "address", Message: "Address is too short"}
		}
		update.Address = &address
	}
	return update, nil
}
