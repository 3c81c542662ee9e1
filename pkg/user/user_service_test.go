package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/pkg/jwt"
	"foodgram-backend/pkg/recipe"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&entities.User{},
		&entities.Follow{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.IngredientInRecipe{},
		&entities.Favourite{},
		&entities.ShoppingCart{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestService(t *testing.T, name string) (UserService, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t, name)
	svc := NewUserService(
		NewUserRepository(db),
		recipe.NewRecipeRepository(db),
		jwt.NewJWTService(),
	)
	return svc, db
}

func register(t *testing.T, svc UserService, username string) domain.UserResponse {
	t.Helper()

	res, err := svc.Register(context.Background(), domain.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "sw0rdfish-pass",
	})
	if err != nil {
		t.Fatalf("Register %q failed: %v", username, err)
	}
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t, "user_register")
	ctx := context.Background()

	created := register(t, svc, "alice")
	if created.Username != "alice" {
		t.Fatalf("unexpected user: %+v", created)
	}

	res, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "sw0rdfish-pass",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected a token")
	}
	if res.User.ID != created.ID {
		t.Fatalf("expected same user, got %+v", res.User)
	}

	_, err = svc.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, domain.ErrCredentialsInvalid) {
		t.Fatalf("expected ErrCredentialsInvalid, got %v", err)
	}

	_, err = svc.Login(ctx, domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, domain.ErrCredentialsInvalid) {
		t.Fatalf("expected ErrCredentialsInvalid for unknown email, got %v", err)
	}
}

func TestRegisterRejectsDuplicatesAndBadUsernames(t *testing.T) {
	svc, _ := newTestService(t, "user_duplicates")
	ctx := context.Background()

	register(t, svc, "bob")

	_, err := svc.Register(ctx, domain.RegisterRequest{
		Username: "other",
		Email:    "bob@example.com",
		Password: "password123",
	})
	if !errors.Is(err, domain.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}

	_, err = svc.Register(ctx, domain.RegisterRequest{
		Username: "bob",
		Email:    "bob2@example.com",
		Password: "password123",
	})
	if !errors.Is(err, domain.ErrUsernameAlreadyUsed) {
		t.Fatalf("expected ErrUsernameAlreadyUsed, got %v", err)
	}

	_, err = svc.Register(ctx, domain.RegisterRequest{
		Username: "me",
		Email:    "me@example.com",
		Password: "password123",
	})
	if !errors.Is(err, domain.ErrUsernameReserved) {
		t.Fatalf("expected ErrUsernameReserved, got %v", err)
	}

	_, err = svc.Register(ctx, domain.RegisterRequest{
		Username: "spaced name",
		Email:    "spaced@example.com",
		Password: "password123",
	})
	if !errors.Is(err, domain.ErrUsernameInvalid) {
		t.Fatalf("expected ErrUsernameInvalid, got %v", err)
	}
}

func TestDuplicateKeyResolvesToFiredConstraint(t *testing.T) {
	svc, _ := newTestService(t, "user_raced_dup")
	ctx := context.Background()

	register(t, svc, "heidi")
	s := svc.(*userService)

	// the duplicate row holds the username
	err := s.duplicateUserError(ctx, domain.RegisterRequest{
		Username: "heidi",
		Email:    "fresh@example.com",
	})
	if !errors.Is(err, domain.ErrUsernameAlreadyUsed) {
		t.Fatalf("expected ErrUsernameAlreadyUsed, got %v", err)
	}

	// the duplicate row holds the email
	err = s.duplicateUserError(ctx, domain.RegisterRequest{
		Username: "fresh",
		Email:    "heidi@example.com",
	})
	if !errors.Is(err, domain.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestUpdateUserPartialFields(t *testing.T) {
	svc, _ := newTestService(t, "user_update")
	ctx := context.Background()

	created := register(t, svc, "carol")

	first := "Carol"
	updated, err := svc.UpdateUser(ctx, created.ID, domain.UpdateUserRequest{FirstName: &first})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.FirstName != "Carol" {
		t.Fatalf("expected first name set, got %+v", updated)
	}
	if updated.Username != "carol" {
		t.Fatalf("absent fields must keep prior values, got %+v", updated)
	}
}

func TestSubscribeGuards(t *testing.T) {
	svc, _ := newTestService(t, "user_subscribe")
	ctx := context.Background()

	follower := register(t, svc, "dave")
	author := register(t, svc, "erin")

	if _, err := svc.Subscribe(ctx, follower.ID, follower.ID, 0); !errors.Is(err, domain.ErrSelfSubscribe) {
		t.Fatalf("expected ErrSelfSubscribe, got %v", err)
	}

	if _, err := svc.Subscribe(ctx, follower.ID, uuid.NewString(), 0); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	sub, err := svc.Subscribe(ctx, follower.ID, author.ID, 0)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if sub.Username != "erin" || sub.RecipesCount != 0 {
		t.Fatalf("unexpected subscription payload: %+v", sub)
	}

	if _, err := svc.Subscribe(ctx, follower.ID, author.ID, 0); !errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}

	if err := svc.Unsubscribe(ctx, follower.ID, author.ID); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}
	if err := svc.Unsubscribe(ctx, follower.ID, author.ID); !errors.Is(err, domain.ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed, got %v", err)
	}
}

func TestGetSubscriptionsEnrichment(t *testing.T) {
	svc, db := newTestService(t, "user_subscriptions")
	ctx := context.Background()

	follower := register(t, svc, "frank")
	author := register(t, svc, "gina")

	authorID, err := uuid.Parse(author.ID)
	if err != nil {
		t.Fatalf("bad author id: %v", err)
	}
	for i := 0; i < 3; i++ {
		rec := entities.Recipe{
			ID:          uuid.New(),
			AuthorID:    authorID,
			Name:        fmt.Sprintf("Dish %d", i),
			Text:        "Cook.",
			CookingTime: 10,
		}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("failed to seed recipe: %v", err)
		}
	}

	if _, err := svc.Subscribe(ctx, follower.ID, author.ID, 0); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	res, err := svc.GetSubscriptions(ctx, follower.ID, 1, 20, 2)
	if err != nil {
		t.Fatalf("GetSubscriptions failed: %v", err)
	}
	if len(res.Subscriptions) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(res.Subscriptions))
	}

	sub := res.Subscriptions[0]
	if sub.Username != "gina" {
		t.Fatalf("unexpected author: %+v", sub)
	}
	if sub.RecipesCount != 3 {
		t.Fatalf("expected recipes_count 3, got %d", sub.RecipesCount)
	}
	if len(sub.Recipes) != 2 {
		t.Fatalf("expected recipes truncated to 2, got %d", len(sub.Recipes))
	}
	if !sub.IsSubscribed {
		t.Fatal("expected is_subscribed true for the follower")
	}
}
