package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dropss/internal/db"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var (
	// ErrInvalidUsername 在用户名格式不合法时返回
	ErrInvalidUsername = errors.New("invalid username")
	// ErrReservedUsername 在用户名与系统路由冲突时返回
	ErrReservedUsername = errors.New("username is reserved")
	// ErrUsernameTaken 在用户名已被占用时返回
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken 在邮箱已注册时返回
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidEmail 在邮箱格式不合法时返回
	ErrInvalidEmail = errors.New("invalid email")
	// ErrPasswordMismatch 在两次输入的密码不一致时返回
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrWeakPassword 在密码过短时返回
	ErrWeakPassword = errors.New("password too short")
	// ErrInvalidCredentials 在登录失败时返回
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AccountService 负责注册与登录
type AccountService struct {
	db       *gorm.DB
	validate *validator.Validate
	cost     int
}

// NewAccountService 构造 AccountService
func NewAccountService(gdb *gorm.DB) *AccountService {
	return &AccountService{db: gdb, validate: validator.New(), cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost, used by tests.
func (s *AccountService) WithHashCost(cost int) *AccountService {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.cost = cost
	}
	return s
}

// SignUpInput 描述注册表单
type SignUpInput struct {
	Email          string
	Username       string
	Password       string
	RepeatPassword string
}

// SignUp creates the account and its profile row in one transaction.
func (s *AccountService) SignUp(input SignUpInput) (*db.User, *db.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, nil, ErrInvalidEmail
	}
	if input.Password != input.RepeatPassword {
		return nil, nil, ErrPasswordMismatch
	}
	if len(input.Password) < minPasswordLength {
		return nil, nil, fmt.Errorf("%w: at least %d characters", ErrWeakPassword, minPasswordLength)
	}
	username, err := NormalizeUsername(input.Username)
	if err != nil {
		return nil, nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{Email: email, Password: string(hashed)}
	var profile db.Profile

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Model(&db.Profile{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile = db.Profile{ID: user.ID, Username: username}
		return tx.Create(&profile).Error
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("sign up: %w", err)
	}

	return &user, &profile, nil
}

// Authenticate checks the email/password pair.
func (s *AccountService) Authenticate(email, password string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// EnsureAccount 存在性检查：若邮箱对应账号不存在，则以给定用户名创建账号。
func (s *AccountService) EnsureAccount(email, username, password string) (*db.Profile, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user db.User
	err := s.db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		var profile db.Profile
		if err := s.db.First(&profile, "id = ?", user.ID).Error; err != nil {
			return nil, false, fmt.Errorf("find profile: %w", err)
		}
		return &profile, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	_, profile, err := s.SignUp(SignUpInput{
		Email:          email,
		Username:       username,
		Password:       password,
		RepeatPassword: password,
	})
	if err != nil {
		return nil, false, err
	}
	return profile, true, nil
}
