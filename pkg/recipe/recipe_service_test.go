package recipe

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils/document"
	"foodgram-backend/pkg/ingredient"
	"foodgram-backend/pkg/tag"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeStorage struct{}

func (s *fakeStorage) UploadFile(fileName string, data []byte, contentType string, folder string) (string, error) {
	return fmt.Sprintf("%s/%s", folder, fileName), nil
}

func (s *fakeStorage) UpdateFile(objectKey string, data []byte, contentType string) (string, error) {
	return objectKey, nil
}

func (s *fakeStorage) DeleteFile(objectKey string) error { return nil }

func (s *fakeStorage) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func (s *fakeStorage) GetObjectKeyFromLink(link string) string { return link }

// recordingStorage tracks object keys so tests can assert on the
// stored image lifecycle.
type recordingStorage struct {
	uploads []string
	updates []string
	deletes []string
}

func (s *recordingStorage) UploadFile(fileName string, data []byte, contentType string, folder string) (string, error) {
	key := fmt.Sprintf("%s/%s", folder, fileName)
	s.uploads = append(s.uploads, key)
	return key, nil
}

func (s *recordingStorage) UpdateFile(objectKey string, data []byte, contentType string) (string, error) {
	s.updates = append(s.updates, objectKey)
	return objectKey, nil
}

func (s *recordingStorage) DeleteFile(objectKey string) error {
	s.deletes = append(s.deletes, objectKey)
	return nil
}

func (s *recordingStorage) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func (s *recordingStorage) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, "https://cdn.test/")
}

type fakeFollowChecker struct{}

func (f *fakeFollowChecker) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	return false, nil
}

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

func newTestService(t *testing.T, name string) (RecipeService, RecipeRepository, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t, name)
	repo := NewRecipeRepository(db)
	svc := NewRecipeService(
		repo,
		tag.NewTagRepository(db),
		ingredient.NewIngredientRepository(db),
		&fakeFollowChecker{},
		&fakeStorage{},
		document.NewPDFRenderer(),
	)
	return svc, repo, db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()

	user := entities.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     domain.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return &user
}

func seedTag(t *testing.T, db *gorm.DB, name, color, slug string) *entities.Tag {
	t.Helper()

	tag := entities.Tag{ID: uuid.New(), Name: name, Color: color, Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to seed tag: %v", err)
	}
	return &tag
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *entities.Ingredient {
	t.Helper()

	ing := entities.Ingredient{ID: uuid.New(), Name: name, MeasurementUnit: unit}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}
	return &ing
}

func TestCreateRecipeThenRead(t *testing.T) {
	svc, _, db := newTestService(t, "create_read")
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	breakfast := seedTag(t, db, "Breakfast", "#49B64E", "breakfast")
	flour := seedIngredient(t, db, "flour", "g")
	milk := seedIngredient(t, db, "milk", "ml")

	created, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Tags:        []string{breakfast.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{
			{ID: flour.ID.String(), Amount: 200},
			{ID: milk.ID.String(), Amount: 300},
		},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	got, err := svc.GetRecipeDetail(ctx, created.ID, author.ID.String())
	if err != nil {
		t.Fatalf("GetRecipeDetail failed: %v", err)
	}
	if got.Name != "Pancakes" || got.CookingTime != 20 {
		t.Fatalf("unexpected recipe: %+v", got)
	}
	if got.Author.Username != "alice" {
		t.Fatalf("expected author alice, got %q", got.Author.Username)
	}
	if len(got.Tags) != 1 || got.Tags[0].Slug != "breakfast" {
		t.Fatalf("unexpected tags: %+v", got.Tags)
	}
	if len(got.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(got.Ingredients))
	}
	for _, item := range got.Ingredients {
		if item.Name == "flour" && item.Amount != 200 {
			t.Fatalf("expected flour amount 200, got %d", item.Amount)
		}
	}
}

func TestCreateRecipeCompositionRules(t *testing.T) {
	svc, _, db := newTestService(t, "composition")
	ctx := context.Background()

	author := seedUser(t, db, "bob")
	dinner := seedTag(t, db, "Dinner", "#0000FF", "dinner")
	salt := seedIngredient(t, db, "salt", "g")

	tagID := dinner.ID.String()
	saltID := salt.ID.String()
	valid := []domain.IngredientAmountRequest{{ID: saltID, Amount: 5}}

	cases := []struct {
		name        string
		tags        []string
		ingredients []domain.IngredientAmountRequest
		cookingTime int
		want        error
	}{
		{"no tags", nil, valid, 10, domain.ErrNoTagsSelected},
		{"duplicate tags", []string{tagID, tagID}, valid, 10, domain.ErrDuplicateTags},
		{"no ingredients", []string{tagID}, nil, 10, domain.ErrNoIngredientsSelected},
		{"duplicate ingredients", []string{tagID}, []domain.IngredientAmountRequest{
			{ID: saltID, Amount: 5}, {ID: saltID, Amount: 7},
		}, 10, domain.ErrDuplicateIngredients},
		{"amount below one", []string{tagID}, []domain.IngredientAmountRequest{
			{ID: saltID, Amount: 0},
		}, 10, domain.ErrAmountTooSmall},
		{"cooking time zero", []string{tagID}, valid, 0, domain.ErrCookingTimeOutOfRange},
		{"cooking time too long", []string{tagID}, valid, 1000, domain.ErrCookingTimeOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
				Name:        "Broken",
				Text:        "x",
				CookingTime: tc.cookingTime,
				Tags:        tc.tags,
				Ingredients: tc.ingredients,
			}, author.ID.String())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateRecipeUnknownReferences(t *testing.T) {
	svc, _, db := newTestService(t, "unknown_refs")
	ctx := context.Background()

	author := seedUser(t, db, "carol")
	dinner := seedTag(t, db, "Dinner", "#0000FF", "dinner")
	salt := seedIngredient(t, db, "salt", "g")

	_, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "Ghost tag",
		Text:        "x",
		CookingTime: 10,
		Tags:        []string{uuid.NewString()},
		Ingredients: []domain.IngredientAmountRequest{{ID: salt.ID.String(), Amount: 5}},
	}, author.ID.String())
	if !errors.Is(err, domain.ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}

	_, err = svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "Ghost ingredient",
		Text:        "x",
		CookingTime: 10,
		Tags:        []string{dinner.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: uuid.NewString(), Amount: 5}},
	}, author.ID.String())
	if !errors.Is(err, domain.ErrIngredientNotFound) {
		t.Fatalf("expected ErrIngredientNotFound, got %v", err)
	}
}

func TestUpdateRecipeReplacesSets(t *testing.T) {
	svc, _, db := newTestService(t, "update_sets")
	ctx := context.Background()

	author := seedUser(t, db, "dave")
	breakfast := seedTag(t, db, "Breakfast", "#49B64E", "breakfast")
	dessert := seedTag(t, db, "Dessert", "#FF00FF", "dessert")
	flour := seedIngredient(t, db, "flour", "g")
	sugar := seedIngredient(t, db, "sugar", "g")

	created, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "Cake",
		Text:        "Bake it.",
		CookingTime: 60,
		Tags:        []string{breakfast.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: flour.ID.String(), Amount: 500}},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	newName := "Sugar Cake"
	updated, err := svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Name:        &newName,
		Tags:        []string{dessert.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: sugar.ID.String(), Amount: 100}},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("UpdateRecipe failed: %v", err)
	}

	if updated.Name != "Sugar Cake" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.Text != "Bake it." || updated.CookingTime != 60 {
		t.Fatalf("absent fields must keep prior values: %+v", updated)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Slug != "dessert" {
		t.Fatalf("expected wholesale tag replacement, got %+v", updated.Tags)
	}
	if len(updated.Ingredients) != 1 || updated.Ingredients[0].Name != "sugar" {
		t.Fatalf("expected wholesale ingredient replacement, got %+v", updated.Ingredients)
	}

	var orphans int64
	if err := db.Model(&entities.IngredientInRecipe{}).
		Where("ingredient_id = ?", flour.ID).
		Count(&orphans).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("expected old ingredient rows removed, found %d", orphans)
	}
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	svc, _, db := newTestService(t, "ownership")
	ctx := context.Background()

	author := seedUser(t, db, "erin")
	stranger := seedUser(t, db, "frank")
	dinner := seedTag(t, db, "Dinner", "#0000FF", "dinner")
	salt := seedIngredient(t, db, "salt", "g")

	created, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "Soup",
		Text:        "Boil.",
		CookingTime: 30,
		Tags:        []string{dinner.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: salt.ID.String(), Amount: 5}},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	_, err = svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Tags:        []string{dinner.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: salt.ID.String(), Amount: 10}},
	}, stranger.ID.String())
	if !errors.Is(err, domain.ErrNotRecipeOwner) {
		t.Fatalf("expected ErrNotRecipeOwner on update, got %v", err)
	}

	if err := svc.DeleteRecipe(ctx, created.ID, stranger.ID.String()); !errors.Is(err, domain.ErrNotRecipeOwner) {
		t.Fatalf("expected ErrNotRecipeOwner on delete, got %v", err)
	}

	if err := svc.DeleteRecipe(ctx, created.ID, author.ID.String()); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	if _, err := svc.GetRecipeDetail(ctx, created.ID, ""); !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound after delete, got %v", err)
	}
}

func TestFavouriteToggle(t *testing.T) {
	svc, _, db := newTestService(t, "favourite")
	ctx := context.Background()

	author := seedUser(t, db, "gina")
	viewer := seedUser(t, db, "hank")
	dinner := seedTag(t, db, "Dinner", "#0000FF", "dinner")
	salt := seedIngredient(t, db, "salt", "g")

	created, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "Stew",
		Text:        "Simmer.",
		CookingTime: 90,
		Tags:        []string{dinner.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: salt.ID.String(), Amount: 3}},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if _, err := svc.AddFavourite(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("AddFavourite failed: %v", err)
	}

	if _, err := svc.AddFavourite(ctx, created.ID, viewer.ID.String()); !errors.Is(err, domain.ErrAlreadyFavourited) {
		t.Fatalf("expected ErrAlreadyFavourited, got %v", err)
	}

	got, err := svc.GetRecipeDetail(ctx, created.ID, viewer.ID.String())
	if err != nil {
		t.Fatalf("GetRecipeDetail failed: %v", err)
	}
	if !got.IsFavourited {
		t.Fatal("expected is_favorited true for the viewer")
	}

	if err := svc.RemoveFavourite(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("RemoveFavourite failed: %v", err)
	}
	if err := svc.RemoveFavourite(ctx, created.ID, viewer.ID.String()); !errors.Is(err, domain.ErrNotFavourited) {
		t.Fatalf("expected ErrNotFavourited, got %v", err)
	}
}

func TestShoppingCartToggle(t *testing.T) {
	svc, _, db := newTestService(t, "cart")
	ctx := context.Background()

	author := seedUser(t, db, "ivan")
	dinner := seedTag(t, db, "Dinner", "#0000FF", "dinner")
	salt := seedIngredient(t, db, "salt", "g")

	created, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "Pasta",
		Text:        "Boil.",
		CookingTime: 15,
		Tags:        []string{dinner.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: salt.ID.String(), Amount: 2}},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if _, err := svc.AddToShoppingCart(ctx, created.ID, author.ID.String()); err != nil {
		t.Fatalf("AddToShoppingCart failed: %v", err)
	}
	if _, err := svc.AddToShoppingCart(ctx, created.ID, author.ID.String()); !errors.Is(err, domain.ErrAlreadyInShoppingCart) {
		t.Fatalf("expected ErrAlreadyInShoppingCart, got %v", err)
	}

	if err := svc.RemoveFromShoppingCart(ctx, created.ID, author.ID.String()); err != nil {
		t.Fatalf("RemoveFromShoppingCart failed: %v", err)
	}
	if err := svc.RemoveFromShoppingCart(ctx, created.ID, author.ID.String()); !errors.Is(err, domain.ErrNotInShoppingCart) {
		t.Fatalf("expected ErrNotInShoppingCart, got %v", err)
	}
}

func TestDuplicateFavouriteRowTranslated(t *testing.T) {
	_, repo, db := newTestService(t, "dup_row")
	ctx := context.Background()

	user := seedUser(t, db, "judy")
	author := seedUser(t, db, "kyle")
	recipe := entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Name:        "Toast",
		Text:        "Toast it.",
		CookingTime: 5,
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	if err := repo.AddFavourite(ctx, user.ID, recipe.ID); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := repo.AddFavourite(ctx, user.ID, recipe.ID); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestShoppingListAggregation(t *testing.T) {
	svc, _, db := newTestService(t, "shopping_list")
	ctx := context.Background()

	author := seedUser(t, db, "lena")
	dinner := seedTag(t, db, "Dinner", "#0000FF", "dinner")
	salt := seedIngredient(t, db, "salt", "g")
	pepper := seedIngredient(t, db, "pepper", "g")

	makeRecipe := func(name string, ingredients []domain.IngredientAmountRequest) domain.RecipeResponse {
		created, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
			Name:        name,
			Text:        "Cook.",
			CookingTime: 10,
			Tags:        []string{dinner.ID.String()},
			Ingredients: ingredients,
		}, author.ID.String())
		if err != nil {
			t.Fatalf("CreateRecipe %q failed: %v", name, err)
		}
		return created
	}

	first := makeRecipe("First", []domain.IngredientAmountRequest{
		{ID: salt.ID.String(), Amount: 10},
		{ID: pepper.ID.String(), Amount: 2},
	})
	second := makeRecipe("Second", []domain.IngredientAmountRequest{
		{ID: salt.ID.String(), Amount: 15},
	})
	// in nobody's cart, must not leak into the list
	makeRecipe("Third", []domain.IngredientAmountRequest{
		{ID: salt.ID.String(), Amount: 100},
	})

	if _, err := svc.AddToShoppingCart(ctx, first.ID, author.ID.String()); err != nil {
		t.Fatalf("AddToShoppingCart failed: %v", err)
	}
	if _, err := svc.AddToShoppingCart(ctx, second.ID, author.ID.String()); err != nil {
		t.Fatalf("AddToShoppingCart failed: %v", err)
	}

	data, fileName, contentType, err := svc.DownloadShoppingList(ctx, author.ID.String())
	if err != nil {
		t.Fatalf("DownloadShoppingList failed: %v", err)
	}
	if fileName != "shopping_cart.pdf" || contentType != "application/pdf" {
		t.Fatalf("unexpected file metadata: %s %s", fileName, contentType)
	}
	if len(data) == 0 || string(data[:5]) != "%PDF-" {
		t.Fatal("expected a PDF document")
	}

	items, err := NewRecipeRepository(db).GetShoppingList(ctx, author.ID.String())
	if err != nil {
		t.Fatalf("GetShoppingList failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 consolidated lines, got %d: %+v", len(items), items)
	}
	// ordered by name: pepper before salt
	if items[0].Name != "pepper" || items[0].Amount != 2 {
		t.Fatalf("unexpected first line: %+v", items[0])
	}
	if items[1].Name != "salt" || items[1].Amount != 25 {
		t.Fatalf("expected salt total 25, got %+v", items[1])
	}
}

func TestRecipeImageLifecycle(t *testing.T) {
	db := setupTestDB(t, "image_lifecycle")
	store := &recordingStorage{}
	svc := NewRecipeService(
		NewRecipeRepository(db),
		tag.NewTagRepository(db),
		ingredient.NewIngredientRepository(db),
		&fakeFollowChecker{},
		store,
		document.NewPDFRenderer(),
	)
	ctx := context.Background()

	author := seedUser(t, db, "nora")
	dinner := seedTag(t, db, "Dinner", "#0000FF", "dinner")
	salt := seedIngredient(t, db, "salt", "g")

	image := func(payload string) string {
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
	}

	created, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "Ratatouille",
		Text:        "Slice and bake.",
		Image:       image("first"),
		CookingTime: 45,
		Tags:        []string{dinner.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: salt.ID.String(), Amount: 2}},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(store.uploads))
	}
	if created.ImageURL == "" {
		t.Fatal("expected image URL on the created recipe")
	}

	newImage := image("second")
	updated, err := svc.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Image:       &newImage,
		Tags:        []string{dinner.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: salt.ID.String(), Amount: 2}},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("UpdateRecipe failed: %v", err)
	}
	if len(store.updates) != 1 || store.updates[0] != store.uploads[0] {
		t.Fatalf("expected the stored object to be overwritten in place, got updates %v", store.updates)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("image replacement must not create a second object, got uploads %v", store.uploads)
	}
	if updated.ImageURL != created.ImageURL {
		t.Fatalf("expected stable image URL, got %q then %q", created.ImageURL, updated.ImageURL)
	}

	if err := svc.DeleteRecipe(ctx, created.ID, author.ID.String()); err != nil {
		t.Fatalf("DeleteRecipe failed: %v", err)
	}
	if len(store.deletes) != 1 || store.deletes[0] != store.uploads[0] {
		t.Fatalf("expected the stored object removed with the recipe, got deletes %v", store.deletes)
	}
}

func TestViewerFlagLookupErrorsPropagate(t *testing.T) {
	svc, _, db := newTestService(t, "viewer_flags")
	ctx := context.Background()

	author := seedUser(t, db, "olga")
	dinner := seedTag(t, db, "Dinner", "#0000FF", "dinner")
	salt := seedIngredient(t, db, "salt", "g")

	created, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "Gratin",
		Text:        "Bake.",
		CookingTime: 40,
		Tags:        []string{dinner.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{{ID: salt.ID.String(), Amount: 2}},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if err := db.Migrator().DropTable(&entities.Favourite{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	if _, err := svc.GetRecipeDetail(ctx, created.ID, author.ID.String()); err == nil {
		t.Fatal("expected an error when the membership lookup fails")
	}

	// anonymous reads skip the membership lookup entirely
	if _, err := svc.GetRecipeDetail(ctx, created.ID, ""); err != nil {
		t.Fatalf("anonymous read failed: %v", err)
	}
}

func TestGetRecipesFilterByTag(t *testing.T) {
	svc, _, db := newTestService(t, "filter_tags")
	ctx := context.Background()

	author := seedUser(t, db, "mona")
	breakfast := seedTag(t, db, "Breakfast", "#49B64E", "breakfast")
	dinner := seedTag(t, db, "Dinner", "#0000FF", "dinner")
	salt := seedIngredient(t, db, "salt", "g")

	makeRecipe := func(name string, tagIDs []string) {
		if _, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
			Name:        name,
			Text:        "Cook.",
			CookingTime: 10,
			Tags:        tagIDs,
			Ingredients: []domain.IngredientAmountRequest{{ID: salt.ID.String(), Amount: 1}},
		}, author.ID.String()); err != nil {
			t.Fatalf("CreateRecipe %q failed: %v", name, err)
		}
	}

	makeRecipe("Omelette", []string{breakfast.ID.String()})
	makeRecipe("Roast", []string{dinner.ID.String()})
	makeRecipe("Brunch Special", []string{breakfast.ID.String(), dinner.ID.String()})

	res, err := svc.GetRecipes(ctx, domain.RecipeFilter{
		TagSlugs: []string{"breakfast"},
		Page:     1,
		Limit:    20,
	}, "")
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if len(res.Recipes) != 2 {
		t.Fatalf("expected 2 breakfast recipes, got %d", len(res.Recipes))
	}
	if res.Pagination.Total != 2 {
		t.Fatalf("expected total 2, got %d", res.Pagination.Total)
	}

	all, err := svc.GetRecipes(ctx, domain.RecipeFilter{Page: 1, Limit: 20}, "")
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if len(all.Recipes) != 3 {
		t.Fatalf("expected 3 recipes without filter, got %d", len(all.Recipes))
	}
}
