package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/mailing"
	"foodgram-backend/pkg/jwt"
	"foodgram-backend/pkg/recipe"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error)
		VerifyEmail(ctx context.Context, token string) error
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		UpdateUser(ctx context.Context, userID string, req domain.UpdateUserRequest) (domain.UserResponse, error)
		GetUsers(ctx context.Context, page, limit int, viewerID string) ([]domain.UserResponse, domain.Pagination, error)
		GetUserDetail(ctx context.Context, id string, viewerID string) (domain.UserResponse, error)

		Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, userID, authorID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) (domain.SubscriptionListResponse, error)
	}

	userService struct {
		userRepository   UserRepository
		recipeRepository recipe.RecipeRepository
		jwtService       jwt.JWTService
	}
)

func NewUserService(userRepository UserRepository, recipeRepository recipe.RecipeRepository, jwtService jwt.JWTService) UserService {
	return &userService{
		userRepository:   userRepository,
		recipeRepository: recipeRepository,
		jwtService:       jwtService,
	}
}

func (s *userService) toUserResponse(ctx context.Context, user *entities.User, viewerID string) domain.UserResponse {
	res := domain.UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if viewerID != "" && viewerID != res.ID {
		isSubscribed, err := s.userRepository.IsFollowing(ctx, viewerID, res.ID)
		if err == nil {
			res.IsSubscribed = isSubscribed
		}
	}
	return res
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error) {
	if strings.EqualFold(req.Username, "me") {
		return domain.UserResponse{}, domain.ErrUsernameReserved
	}
	if !usernamePattern.MatchString(req.Username) {
		return domain.UserResponse{}, domain.ErrUsernameInvalid
	}

	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.UserResponse{}, domain.ErrEmailAlreadyUsed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserResponse{}, err
	}

	if _, err := s.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return domain.UserResponse{}, domain.ErrUsernameAlreadyUsed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, err
	}

	user := entities.User{
		ID:        uuid.New(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.RoleUser,
	}

	if err := s.userRepository.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.UserResponse{}, s.duplicateUserError(ctx, req)
		}
		return domain.UserResponse{}, err
	}

	s.sendVerificationEmail(&user)

	return s.toUserResponse(ctx, &user, ""), nil
}

// duplicateUserError resolves which unique constraint fired when a
// concurrent registration won the race past the prechecks.
func (s *userService) duplicateUserError(ctx context.Context, req domain.RegisterRequest) error {
	if _, err := s.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return domain.ErrUsernameAlreadyUsed
	}
	return domain.ErrEmailAlreadyUsed
}

// sendVerificationEmail is best-effort: a mail failure never fails the
// registration.
func (s *userService) sendVerificationEmail(user *entities.User) {
	if utils.GetConfig("SMTP_HOST") == "" {
		return
	}

	token, err := s.jwtService.GenerateTokenVerifyEmail(
		map[string]any{"user_id": user.ID.String()},
		24*time.Hour,
	)
	if err != nil {
		log.Printf("failed to generate verification token: %v", err)
		return
	}

	link := fmt.Sprintf("%s/api/v1/users/verify?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf("<p>Hi %s,</p><p>Confirm your email: <a href=%q>verify</a></p>", user.Username, link)
	if err := mailing.SendMail(user.Email, "Confirm your Foodgram account", body); err != nil {
		log.Printf("failed to send verification email: %v", err)
	}
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateTokenVerifyEmail(token)
	if err != nil {
		return err
	}

	userID, _ := claims["user_id"].(string)
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	user.IsVerified = true
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsInvalid
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)

	return domain.LoginResponse{
		Token: token,
		User:  s.toUserResponse(ctx, user, ""),
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return s.toUserResponse(ctx, user, ""), nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, req domain.UpdateUserRequest) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}

	if req.Username != nil {
		if strings.EqualFold(*req.Username, "me") {
			return domain.UserResponse{}, domain.ErrUsernameReserved
		}
		if !usernamePattern.MatchString(*req.Username) {
			return domain.UserResponse{}, domain.ErrUsernameInvalid
		}
		user.Username = *req.Username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.UserResponse{}, domain.ErrUsernameAlreadyUsed
		}
		return domain.UserResponse{}, err
	}

	return s.toUserResponse(ctx, user, ""), nil
}

func (s *userService) GetUsers(ctx context.Context, page, limit int, viewerID string) ([]domain.UserResponse, domain.Pagination, error) {
	users, count, err := s.userRepository.GetUsers(ctx, page, limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	result := make([]domain.UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, s.toUserResponse(ctx, user, viewerID))
	}
	return result, domain.NewPagination(page, limit, count), nil
}

func (s *userService) GetUserDetail(ctx context.Context, id string, viewerID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return s.toUserResponse(ctx, user, viewerID), nil
}

// enrichSubscription builds the author profile with their recipes
// (optionally truncated) and total recipe count.
func (s *userService) enrichSubscription(ctx context.Context, author *entities.User, viewerID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, author.ID.String(), recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	count, err := s.recipeRepository.CountRecipesByAuthor(ctx, author.ID.String())
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	compact := make([]domain.RecipeCompactResponse, 0, len(recipes))
	for _, rec := range recipes {
		compact = append(compact, domain.RecipeCompactResponse{
			ID:          rec.ID.String(),
			Name:        rec.Name,
			ImageURL:    rec.ImageURL,
			CookingTime: rec.CookingTime,
		})
	}

	return domain.SubscriptionResponse{
		UserResponse: s.toUserResponse(ctx, author, viewerID),
		Recipes:      compact,
		RecipesCount: count,
	}, nil
}

func (s *userService) Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	if userID == authorID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscribe
	}

	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		return domain.SubscriptionResponse{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}

	// Fast path only; the (user, author) unique index is what actually
	// prevents duplicate rows under concurrent subscribes.
	following, err := s.userRepository.IsFollowing(ctx, userID, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if following {
		return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
	}

	follow := entities.Follow{
		ID:       uuid.New(),
		UserID:   userUUID,
		AuthorID: author.ID,
	}
	if err := s.userRepository.CreateFollow(ctx, &follow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}

	return s.enrichSubscription(ctx, author, userID, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	if userID == authorID {
		return domain.ErrSelfSubscribe
	}

	if _, err := s.userRepository.GetUserByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	affected, err := s.userRepository.DeleteFollow(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (s *userService) GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) (domain.SubscriptionListResponse, error) {
	follows, count, err := s.userRepository.GetFollowing(ctx, userID, page, limit)
	if err != nil {
		return domain.SubscriptionListResponse{}, err
	}

	subscriptions := make([]domain.SubscriptionResponse, 0, len(follows))
	for _, follow := range follows {
		if follow.Author == nil {
			continue
		}
		enriched, err := s.enrichSubscription(ctx, follow.Author, userID, recipesLimit)
		if err != nil {
			return domain.SubscriptionListResponse{}, err
		}
		subscriptions = append(subscriptions, enriched)
	}

	return domain.SubscriptionListResponse{
		Subscriptions: subscriptions,
		Pagination:    domain.NewPagination(page, limit, count),
	}, nil
}
