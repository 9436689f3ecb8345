package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	accountDomain "github.com/parkmate/service-parking/internal/domain/account"
	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/pkg/auth"
)

// RegisterUserRequest holds the data to register a driver account.
type RegisterUserRequest struct {
	Username      string `json:"username" binding:"required"`
	Email         string `json:"email" binding:"required"`
	Password      string `json:"password" binding:"required,min=8"`
	Phone         string `json:"phone"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
}

// RegisterOwnerRequest holds the data to register a lot owner account.
type RegisterOwnerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Pincode  string `json:"pincode"`
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenPairDTO is the response for a successful login.
type TokenPairDTO struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AccountID    uuid.UUID `json:"account_id"`
	Role         string    `json:"role"`
}

// AccountDTO is the response representation of an account.
type AccountDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfileDTO is the response representation of a driver profile.
type UserProfileDTO struct {
	Account       AccountDTO `json:"account"`
	Phone         string     `json:"phone,omitempty"`
	VehicleNumber string     `json:"vehicle_number,omitempty"`
	VehicleType   string     `json:"vehicle_type,omitempty"`
}

// OwnerProfileDTO is the response representation of an owner profile.
type OwnerProfileDTO struct {
	Account            AccountDTO `json:"account"`
	Phone              string     `json:"phone,omitempty"`
	Address            string     `json:"address,omitempty"`
	Pincode            string     `json:"pincode,omitempty"`
	VerificationStatus string     `json:"verification_status"`
}

// AuthService is the application service for registration, login and
// profile management.
type AuthService struct {
	repo       accountDomain.Repository
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo accountDomain.Repository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:       repo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// RegisterUser creates a driver account with its profile.
func (s *AuthService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*UserProfileDTO, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	acc, err := accountDomain.NewAccount(req.Username, req.Email, hash, auth.RoleUser)
	if err != nil {
		return nil, err
	}
	profile, err := accountDomain.NewUserProfile(acc.ID(), req.Phone, req.VehicleNumber, req.VehicleType)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveUser(ctx, acc, profile); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("account_id", acc.ID().String()))
	dto := toUserProfileDTO(acc, profile)
	return &dto, nil
}

// RegisterOwner creates a lot owner account awaiting admin verification.
func (s *AuthService) RegisterOwner(ctx context.Context, req RegisterOwnerRequest) (*OwnerProfileDTO, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	acc, err := accountDomain.NewAccount(req.Username, req.Email, hash, auth.RoleOwner)
	if err != nil {
		return nil, err
	}
	profile, err := accountDomain.NewOwnerProfile(acc.ID(), req.Phone, req.Address, req.Pincode)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveOwner(ctx, acc, profile); err != nil {
		return nil, err
	}

	s.logger.Info("owner registered", zap.String("account_id", acc.ID().String()))
	dto := toOwnerProfileDTO(acc, profile)
	return &dto, nil
}

// Login validates credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenPairDTO, error) {
	acc, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		// Uniform error so responses never reveal which usernames exist.
		return nil, apperr.NewUnauthorizedError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash()), []byte(req.Password)); err != nil {
		return nil, apperr.NewUnauthorizedError("invalid credentials")
	}

	access, refresh, err := s.jwtManager.GenerateTokenPair(acc.ID(), acc.Role())
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &TokenPairDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		AccountID:    acc.ID(),
		Role:         string(acc.Role()),
	}, nil
}

// GetUserProfile retrieves the driver profile of an account.
func (s *AuthService) GetUserProfile(ctx context.Context, accountID uuid.UUID) (*UserProfileDTO, error) {
	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.FindUserProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	dto := toUserProfileDTO(acc, profile)
	return &dto, nil
}

// GetOwnerProfile retrieves the owner profile of an account.
func (s *AuthService) GetOwnerProfile(ctx context.Context, accountID uuid.UUID) (*OwnerProfileDTO, error) {
	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.FindOwnerProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	dto := toOwnerProfileDTO(acc, profile)
	return &dto, nil
}

// UpdateUserProfileRequest holds partial driver profile updates.
type UpdateUserProfileRequest struct {
	Phone         string `json:"phone"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
}

// UpdateUserProfile applies partial updates to a driver profile.
func (s *AuthService) UpdateUserProfile(ctx context.Context, accountID uuid.UUID, req UpdateUserProfileRequest) (*UserProfileDTO, error) {
	profile, err := s.repo.FindUserProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	profile.Update(req.Phone, req.VehicleNumber, req.VehicleType)
	if err := s.repo.UpdateUserProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.GetUserProfile(ctx, accountID)
}

// UpdateOwnerProfileRequest holds partial owner profile updates.
type UpdateOwnerProfileRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
}

// UpdateOwnerProfile applies partial updates to an owner profile.
func (s *AuthService) UpdateOwnerProfile(ctx context.Context, accountID uuid.UUID, req UpdateOwnerProfileRequest) (*OwnerProfileDTO, error) {
	profile, err := s.repo.FindOwnerProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := profile.Update(req.Phone, req.Address, req.Pincode); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOwnerProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.GetOwnerProfile(ctx, accountID)
}

// --- Helpers ---

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func toAccountDTO(acc *accountDomain.Account) AccountDTO {
	return AccountDTO{
		ID:        acc.ID(),
		Username:  acc.Username(),
		Email:     acc.Email(),
		Role:      string(acc.Role()),
		CreatedAt: acc.CreatedAt(),
	}
}

func toUserProfileDTO(acc *accountDomain.Account, p *accountDomain.UserProfile) UserProfileDTO {
	return UserProfileDTO{
		Account:       toAccountDTO(acc),
		Phone:         p.Phone(),
		VehicleNumber: p.VehicleNumber(),
		VehicleType:   p.VehicleType(),
	}
}

func toOwnerProfileDTO(acc *accountDomain.Account, p *accountDomain.OwnerProfile) OwnerProfileDTO {
	return OwnerProfileDTO{
		Account:            toAccountDTO(acc),
		Phone:              p.Phone(),
		Address:            p.Address(),
		Pincode:            p.Pincode(),
		VerificationStatus: string(p.VerificationStatus()),
	}
}
