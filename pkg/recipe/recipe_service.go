package recipe

import (
	"context"
	"errors"
	"fmt"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/document"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/pkg/ingredient"
	"foodgram-backend/pkg/tag"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// FollowChecker reports whether a viewer follows an author. The
	// user package's repository satisfies it; keeping the dependency
	// as a local interface avoids a package cycle.
	FollowChecker interface {
		IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
	}

	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string) (domain.RecipeListResponse, error)
		GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, actorID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, actorID string) error

		AddFavourite(ctx context.Context, recipeID, userID string) (domain.RecipeCompactResponse, error)
		RemoveFavourite(ctx context.Context, recipeID, userID string) error
		AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeCompactResponse, error)
		RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error

		DownloadShoppingList(ctx context.Context, userID string) ([]byte, string, string, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		tagRepository        tag.TagRepository
		ingredientRepository ingredient.IngredientRepository
		followChecker        FollowChecker
		s3                   storage.AwsS3
		renderer             document.Renderer
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	tagRepository tag.TagRepository,
	ingredientRepository ingredient.IngredientRepository,
	followChecker FollowChecker,
	s3 storage.AwsS3,
	renderer document.Renderer,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		tagRepository:        tagRepository,
		ingredientRepository: ingredientRepository,
		followChecker:        followChecker,
		s3:                   s3,
		renderer:             renderer,
	}
}

// validateComposition checks the cross-field recipe rules. All
// violations are collected so the client sees every failing rule at
// once rather than just the first.
func validateComposition(tags []string, ingredients []domain.IngredientAmountRequest, cookingTime int) error {
	var violations []error

	if len(tags) == 0 {
		violations = append(violations, domain.ErrNoTagsSelected)
	} else {
		seen := make(map[string]struct{}, len(tags))
		for _, id := range tags {
			if _, ok := seen[id]; ok {
				violations = append(violations, domain.ErrDuplicateTags)
				break
			}
			seen[id] = struct{}{}
		}
	}

	if len(ingredients) == 0 {
		violations = append(violations, domain.ErrNoIngredientsSelected)
	} else {
		seen := make(map[string]struct{}, len(ingredients))
		for _, item := range ingredients {
			if _, ok := seen[item.ID]; ok {
				violations = append(violations, domain.ErrDuplicateIngredients)
				break
			}
			seen[item.ID] = struct{}{}
		}
		for _, item := range ingredients {
			if item.Amount < 1 {
				violations = append(violations, domain.ErrAmountTooSmall)
				break
			}
		}
	}

	if cookingTime < 1 || cookingTime > 999 {
		violations = append(violations, domain.ErrCookingTimeOutOfRange)
	}

	return errors.Join(violations...)
}

func (s *recipeService) resolveTags(ctx context.Context, ids []string) ([]*entities.Tag, error) {
	tags, err := s.tagRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, domain.ErrTagNotFound
	}
	return tags, nil
}

func (s *recipeService) resolveIngredients(ctx context.Context, recipeID uuid.UUID, reqs []domain.IngredientAmountRequest) ([]*entities.IngredientInRecipe, error) {
	ids := make([]string, 0, len(reqs))
	for _, item := range reqs {
		ids = append(ids, item.ID)
	}

	ingredients, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(ingredients) != len(ids) {
		return nil, domain.ErrIngredientNotFound
	}

	items := make([]*entities.IngredientInRecipe, 0, len(reqs))
	for _, item := range reqs {
		ingredientID, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		items = append(items, &entities.IngredientInRecipe{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: ingredientID,
			Amount:       item.Amount,
		})
	}
	return items, nil
}

func (s *recipeService) uploadImage(recipeID uuid.UUID, payload string) (string, error) {
	data, contentType, ext, err := utils.DecodeBase64Image(payload)
	if err != nil {
		return "", domain.ErrImageInvalid
	}

	fileName := fmt.Sprintf("%s.%s", recipeID, ext)
	objectKey, err := s.s3.UploadFile(fileName, data, contentType, "recipes")
	if err != nil {
		return "", err
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

// replaceImage overwrites the recipe's existing stored object in place
// when there is one, so image replacement does not orphan the old
// object; first-time uploads go through uploadImage.
func (s *recipeService) replaceImage(recipe *entities.Recipe, payload string) (string, error) {
	if recipe.ImageURL != "" {
		if existingKey := s.s3.GetObjectKeyFromLink(recipe.ImageURL); existingKey != "" {
			data, contentType, _, err := utils.DecodeBase64Image(payload)
			if err != nil {
				return "", domain.ErrImageInvalid
			}
			objectKey, err := s.s3.UpdateFile(existingKey, data, contentType)
			if err != nil {
				return "", err
			}
			return s.s3.GetPublicLinkKey(objectKey), nil
		}
	}
	return s.uploadImage(recipe.ID, payload)
}

func (s *recipeService) toUserResponse(ctx context.Context, user *entities.User, viewerID string) domain.UserResponse {
	res := domain.UserResponse{}
	if user == nil {
		return res
	}
	res = domain.UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if viewerID != "" && viewerID != res.ID {
		isSubscribed, err := s.followChecker.IsFollowing(ctx, viewerID, res.ID)
		if err == nil {
			res.IsSubscribed = isSubscribed
		}
	}
	return res
}

// hydrate builds the full read representation: resolved tags and
// ingredients plus the viewer's favourite/cart membership flags.
func (s *recipeService) hydrate(ctx context.Context, recipe *entities.Recipe, viewerID string) (domain.RecipeResponse, error) {
	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:    t.ID.String(),
			Name:  t.Name,
			Color: t.Color,
			Slug:  t.Slug,
		})
	}

	ingredients := make([]domain.IngredientInRecipeResponse, 0, len(recipe.Ingredients))
	for _, item := range recipe.Ingredients {
		res := domain.IngredientInRecipeResponse{
			ID:     item.IngredientID.String(),
			Amount: item.Amount,
		}
		if item.Ingredient != nil {
			res.Name = item.Ingredient.Name
			res.MeasurementUnit = item.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, res)
	}

	isFavourited, isInCart := false, false
	if viewerID != "" {
		var err error
		if isFavourited, err = s.recipeRepository.IsFavourited(ctx, viewerID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
		if isInCart, err = s.recipeRepository.IsInShoppingCart(ctx, viewerID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Name:             recipe.Name,
		Author:           s.toUserResponse(ctx, recipe.Author, viewerID),
		Text:             recipe.Text,
		ImageURL:         recipe.ImageURL,
		CookingTime:      recipe.CookingTime,
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavourited:     isFavourited,
		IsInShoppingCart: isInCart,
	}, nil
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string) (domain.RecipeListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		hydrated, err := s.hydrate(ctx, recipe, viewerID)
		if err != nil {
			return domain.RecipeListResponse{}, err
		}
		result = append(result, hydrated)
	}

	return domain.RecipeListResponse{
		Recipes:    result,
		Pagination: domain.NewPagination(filter.Page, filter.Limit, count),
	}, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.hydrate(ctx, recipe, viewerID)
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	if err := validateComposition(req.Tags, req.Ingredients, req.CookingTime); err != nil {
		return domain.RecipeResponse{}, err
	}

	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipeID := uuid.New()
	items, err := s.resolveIngredients(ctx, recipeID, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	// The author always comes from the authenticated identity, never
	// from the payload.
	recipe := entities.Recipe{
		ID:          recipeID,
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	if req.Image != "" {
		imageURL, err := s.uploadImage(recipeID, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = imageURL
	}

	if err := s.recipeRepository.CreateRecipe(ctx, &recipe, tags, items); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, actorID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if recipe.AuthorID.String() != actorID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeOwner
	}

	// Absent scalar fields keep their prior values; tag and ingredient
	// sets are always replaced with the submitted ones.
	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		recipe.CookingTime = *req.CookingTime
	}

	if err := validateComposition(req.Tags, req.Ingredients, recipe.CookingTime); err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	items, err := s.resolveIngredients(ctx, recipe.ID, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	if req.Image != nil && *req.Image != "" {
		imageURL, err := s.replaceImage(recipe, *req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = imageURL
	}

	updated := entities.Recipe{
		ID:          recipe.ID,
		AuthorID:    recipe.AuthorID,
		Name:        recipe.Name,
		Text:        recipe.Text,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
		Timestamp:   recipe.Timestamp,
	}
	if err := s.recipeRepository.UpdateRecipe(ctx, &updated, tags, items); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, actorID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, actorID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if recipe.AuthorID.String() != actorID {
		return domain.ErrNotRecipeOwner
	}

	if recipe.ImageURL != "" {
		if objectKey := s.s3.GetObjectKeyFromLink(recipe.ImageURL); objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func toCompactResponse(recipe *entities.Recipe) domain.RecipeCompactResponse {
	return domain.RecipeCompactResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

func (s *recipeService) AddFavourite(ctx context.Context, recipeID, userID string) (domain.RecipeCompactResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeCompactResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeCompactResponse{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeCompactResponse{}, domain.ErrParseUUID
	}

	// Best-effort fast path; the unique constraint is authoritative
	// under concurrent adds.
	exists, err := s.recipeRepository.IsFavourited(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeCompactResponse{}, err
	}
	if exists {
		return domain.RecipeCompactResponse{}, domain.ErrAlreadyFavourited
	}

	if err := s.recipeRepository.AddFavourite(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeCompactResponse{}, domain.ErrAlreadyFavourited
		}
		return domain.RecipeCompactResponse{}, err
	}

	return toCompactResponse(recipe), nil
}

func (s *recipeService) RemoveFavourite(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	affected, err := s.recipeRepository.RemoveFavourite(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFavourited
	}
	return nil
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeCompactResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeCompactResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeCompactResponse{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeCompactResponse{}, domain.ErrParseUUID
	}

	exists, err := s.recipeRepository.IsInShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeCompactResponse{}, err
	}
	if exists {
		return domain.RecipeCompactResponse{}, domain.ErrAlreadyInShoppingCart
	}

	if err := s.recipeRepository.AddShoppingCart(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeCompactResponse{}, domain.ErrAlreadyInShoppingCart
		}
		return domain.RecipeCompactResponse{}, err
	}

	return toCompactResponse(recipe), nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	affected, err := s.recipeRepository.RemoveShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotInShoppingCart
	}
	return nil
}

func (s *recipeService) DownloadShoppingList(ctx context.Context, userID string) ([]byte, string, string, error) {
	items, err := s.recipeRepository.GetShoppingList(ctx, userID)
	if err != nil {
		return nil, "", "", err
	}

	data, fileName, err := s.renderer.Render("Shopping Cart", items)
	if err != nil {
		return nil, "", "", err
	}
	return data, fileName, s.renderer.ContentType(), nil
}
