package domain

import (
	"errors"
)

var (
	MessageSuccessRegister         = "user registered successfully"
	MessageSuccessLogin            = "login success"
	MessageSuccessGetMe            = "success get profile"
	MessageSuccessUpdateUser       = "user updated successfully"
	MessageSuccessGetUsers         = "success get users"
	MessageSuccessGetUserDetail    = "success get user detail"
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessUnsubscribe      = "unsubscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"

	MessageFailedRegister         = "failed to register user"
	MessageFailedLogin            = "failed to login"
	MessageFailedGetMe            = "failed to get profile"
	MessageFailedUpdateUser       = "failed to update user"
	MessageFailedGetUsers         = "failed to get users"
	MessageFailedGetUserDetail    = "failed to get user detail"
	MessageFailedSubscribe        = "failed to subscribe"
	MessageFailedUnsubscribe      = "failed to unsubscribe"
	MessageFailedGetSubscriptions = "failed to get subscriptions"

	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyUsed    = errors.New("email already used")
	ErrUsernameAlreadyUsed = errors.New("username already used")
	ErrUsernameReserved    = errors.New("username is reserved")
	ErrUsernameInvalid     = errors.New("username may only contain letters, digits, hyphens and underscores")
	ErrCredentialsInvalid  = errors.New("invalid email or password")
	ErrSelfSubscribe       = errors.New("cannot follow self")
	ErrAlreadySubscribed   = errors.New("already following")
	ErrNotSubscribed       = errors.New("not following")
)

type (
	RegisterRequest struct {
		Username  string `json:"username" validate:"required,max=150"`
		Email     string `json:"email" validate:"required,email,max=254"`
		Password  string `json:"password" validate:"required,min=8"`
		FirstName string `json:"first_name" validate:"max=150"`
		LastName  string `json:"last_name" validate:"max=150"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}

	UpdateUserRequest struct {
		Username  *string `json:"username,omitempty" validate:"omitempty,max=150"`
		FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
		LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
		Bio       *string `json:"bio,omitempty"`
	}

	UserResponse struct {
		ID           string `json:"id"`
		Username     string `json:"username"`
		Email        string `json:"email"`
		FirstName    string `json:"first_name,omitempty"`
		LastName     string `json:"last_name,omitempty"`
		IsSubscribed bool   `json:"is_subscribed"`
	}

	// SubscriptionResponse is an author profile enriched with their
	// recipes and recipe count, returned from subscribe and the
	// subscriptions listing.
	SubscriptionResponse struct {
		UserResponse
		Recipes      []RecipeCompactResponse `json:"recipes"`
		RecipesCount int64                   `json:"recipes_count"`
	}

	SubscriptionListResponse struct {
		Subscriptions []SubscriptionResponse `json:"subscriptions"`
		Pagination    Pagination             `json:"pagination"`
	}
)
