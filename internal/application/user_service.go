package application

import (
	"context"

	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	userDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/user"
	"github.com/GoRent-Marketplace/service-rental/internal/media"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRequest is the request DTO for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request DTO for signing in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserService implements account use cases.
type UserService struct {
	users    userDomain.UserRepository
	tokens   TokenIssuer
	uploader media.Uploader
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	users userDomain.UserRepository,
	tokens TokenIssuer,
	uploader media.Uploader,
	logger *zap.Logger,
) *UserService {
	return &UserService{users: users, tokens: tokens, uploader: uploader, logger: logger}
}

// Register creates a renter account and returns a signed token for it.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	u, err := userDomain.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		return "", err
	}

	if _, err := s.users.FindByEmail(ctx, u.Email()); err == nil {
		return "", domain.NewConflictError("User already exists")
	} else if !domain.IsKind(err, domain.KindNotFound) {
		return "", err
	}

	if err := s.users.Save(ctx, u); err != nil {
		return "", err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID().String()))
	return s.tokens.Generate(u.ID(), u.Role())
}

// Login verifies the credentials and returns a signed token.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (string, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return "", domain.NewForbiddenError("Invalid Credentials")
		}
		return "", err
	}
	if !u.CheckPassword(req.Password) {
		return "", domain.NewForbiddenError("Invalid Credentials")
	}
	return s.tokens.Generate(u.ID(), u.Role())
}

// GetUser returns the public view of the account.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toUserDTO(u)
	return &result, nil
}

// ChangeRoleToOwner promotes the account to owner and returns a token that
// carries the new role.
func (s *UserService) ChangeRoleToOwner(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !u.IsOwner() {
		u.PromoteToOwner()
		if err := s.users.Update(ctx, u); err != nil {
			return "", err
		}
		s.logger.Info("user promoted to owner", zap.String("user_id", userID.String()))
	}
	return s.tokens.Generate(u.ID(), u.Role())
}

// UpdateProfileImage uploads a new avatar and returns its URL.
func (s *UserService) UpdateProfileImage(ctx context.Context, userID uuid.UUID, image media.Image) (string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := uploadImage(ctx, s.uploader, s.logger, media.FolderUsers, image, media.ProfileImage)
	if err != nil {
		return "", err
	}

	u.SetImage(url)
	if err := s.users.Update(ctx, u); err != nil {
		return "", err
	}
	return url, nil
}
