package usecase

import (
	"context"
	"errors"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"
	"go-studio-backend/pkg/audit"
	"go-studio-backend/pkg/auth"

	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	JWTSecret            string
	TokenTTL             time.Duration
	DefaultSignupCredits int
}

type authUsecase struct {
	userRepo   domain.UserRepository
	creditRepo domain.CreditRepository
	cfg        AuthConfig
	audit      *audit.Logger
}

func NewAuthUsecase(userRepo domain.UserRepository, creditRepo domain.CreditRepository, cfg AuthConfig) domain.AuthUsecase {
	return &authUsecase{
		userRepo:   userRepo,
		creditRepo: creditRepo,
		cfg:        cfg,
		audit:      audit.Default(),
	}
}

func (u *authUsecase) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.TokenPair, error) {
	role := domain.RoleClient
	if req.Role != nil {
		// Staff roles are assigned by admins, never self-selected.
		if *req.Role == domain.RoleAdmin || *req.Role == domain.RoleTrainer {
			return nil, apperror.Forbidden("Cannot self-register a staff role")
		}
		if !req.Role.IsValid() {
			return nil, apperror.BadRequest("Invalid role")
		}
		role = *req.Role
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhoneNumber:    req.Phone,
		HashedPassword: string(hashed),
		Role:           role,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Welcome credits; signup still succeeds if the grant fails, the
	// ledger can be reconciled by an admin grant.
	if u.cfg.DefaultSignupCredits > 0 {
		entry := &domain.CreditEntry{
			UserID: user.ID,
			Amount: u.cfg.DefaultSignupCredits,
			Source: domain.SourcePromotion,
		}
		ref := domain.RedemptionRef{EntityType: "SIGNUP", Note: "Welcome credits"}
		if err := u.creditRepo.Grant(ctx, entry, ref); err == nil {
			u.audit.LogCreditMovement(ctx, audit.EventCreditGranted, user.ID, entry.Amount, "signup")
		}
	}

	return u.issueTokens(user)
}

func (u *authUsecase) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenPair, error) {
	user, err := u.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			u.audit.Log(ctx, audit.Event{
				Event:        audit.EventLoginFailed,
				SubjectType:  "email",
				SubjectValue: audit.MaskEmail(req.Email),
				Details:      map[string]any{"reason": "user_not_found"},
			})
			return nil, apperror.Unauthorized("Invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.Forbidden("Account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		u.audit.Log(ctx, audit.Event{
			Event:        audit.EventLoginFailed,
			SubjectType:  "email",
			SubjectValue: audit.MaskEmail(req.Email),
			Details:      map[string]any{"reason": "invalid_password"},
		})
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventLoginSuccess,
		SubjectType:  "user_id",
		SubjectValue: audit.HashID(user.ID),
	})
	return u.issueTokens(user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) AssignRole(ctx context.Context, userID int64, role domain.Role) error {
	if domain.RoleFromContext(ctx) != string(domain.RoleAdmin) {
		return apperror.Forbidden("Only admins can assign roles")
	}
	if !role.IsValid() {
		return apperror.BadRequest("Invalid role")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("User not found")
		}
		return err
	}
	user.Role = role
	return u.userRepo.Update(ctx, user)
}

func (u *authUsecase) issueTokens(user *domain.User) (*domain.TokenPair, error) {
	token, err := auth.IssueToken(u.cfg.JWTSecret, user.ID, user.Email, string(user.Role), u.cfg.TokenTTL)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.TokenPair{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(u.cfg.TokenTTL),
		User:        user,
	}, nil
}
