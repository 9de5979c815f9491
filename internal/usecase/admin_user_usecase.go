package usecase

import (
	"context"
	"errors"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"golang.org/x/crypto/bcrypt"
)

type adminUserUsecase struct {
	userRepo domain.UserRepository
}

func NewAdminUserUsecase(userRepo domain.UserRepository) domain.AdminUserUsecase {
	return &adminUserUsecase{userRepo: userRepo}
}

func (u *adminUserUsecase) ListUsers(ctx context.Context, role domain.Role, page, pageSize int) (*domain.PaginatedResult[domain.User], error) {
	if role != "" && !role.IsValid() {
		return nil, apperror.BadRequest("Invalid role filter")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := u.userRepo.List(ctx, role, page, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResult[domain.User]{
		Data:       users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (u *adminUserUsecase) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if !req.Role.IsValid() {
		return nil, apperror.BadRequest("Invalid role")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Email:          req.Email,
		HashedPassword: string(hashed),
		Role:           req.Role,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *adminUserUsecase) UpdateUser(ctx context.Context, userID int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.Phone != nil {
		user.PhoneNumber = req.Phone
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, apperror.BadRequest("Invalid role")
		}
		user.Role = *req.Role
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *adminUserUsecase) SetUserActive(ctx context.Context, userID int64, active bool) error {
	err := u.userRepo.SetActive(ctx, userID, active)
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound("User not found")
	}
	return err
}
