package domain

import (
	"errors"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessAddFavourite    = "recipe added to favourites"
	MessageSuccessRemoveFavourite = "recipe removed from favourites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"
	MessageSuccessGetShoppingList = "success get shopping list"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedAddFavourite    = "failed to add favourite"
	MessageFailedRemoveFavourite = "failed to remove favourite"
	MessageFailedAddToCart       = "failed to add to shopping cart"
	MessageFailedRemoveFromCart  = "failed to remove from shopping cart"
	MessageFailedGetShoppingList = "failed to get shopping list"

	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrNotRecipeOwner        = errors.New("not the recipe owner")
	ErrNoTagsSelected        = errors.New("no tags selected")
	ErrDuplicateTags         = errors.New("duplicate tags")
	ErrNoIngredientsSelected = errors.New("no ingredients selected")
	ErrDuplicateIngredients  = errors.New("duplicate ingredients")
	ErrAmountTooSmall        = errors.New("ingredient amount must be at least 1")
	ErrCookingTimeOutOfRange = errors.New("cooking time must be between 1 and 999")
	ErrImageInvalid          = errors.New("invalid image payload")
	ErrAlreadyFavourited     = errors.New("recipe already in favourites")
	ErrNotFavourited         = errors.New("recipe not in favourites")
	ErrAlreadyInShoppingCart = errors.New("recipe already in shopping cart")
	ErrNotInShoppingCart     = errors.New("recipe not in shopping cart")
)

type (
	IngredientAmountRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1"`
	}

	CreateRecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=200"`
		Text        string                    `json:"text" validate:"required"`
		Image       string                    `json:"image,omitempty"` // base64 data URI, optional
		CookingTime int                       `json:"cooking_time" validate:"required"`
		Tags        []string                  `json:"tags"`
		Ingredients []IngredientAmountRequest `json:"ingredients"`
	}

	// UpdateRecipeRequest carries partial scalar semantics: nil fields
	// keep their prior values. Tags and ingredients are always replaced
	// wholesale with the submitted set.
	UpdateRecipeRequest struct {
		Name        *string                   `json:"name,omitempty" validate:"omitempty,max=200"`
		Text        *string                   `json:"text,omitempty"`
		Image       *string                   `json:"image,omitempty"`
		CookingTime *int                      `json:"cooking_time,omitempty"`
		Tags        []string                  `json:"tags"`
		Ingredients []IngredientAmountRequest `json:"ingredients"`
	}

	RecipeFilter struct {
		TagSlugs []string
		AuthorID string
		Page     int
		Limit    int
	}

	IngredientInRecipeResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                       `json:"id"`
		Name             string                       `json:"name"`
		Author           UserResponse                 `json:"author"`
		Text             string                       `json:"text"`
		ImageURL         string                       `json:"image_url,omitempty"`
		CookingTime      int                          `json:"cooking_time"`
		Tags             []TagResponse                `json:"tags"`
		Ingredients      []IngredientInRecipeResponse `json:"ingredients"`
		IsFavourited     bool                         `json:"is_favorited"`
		IsInShoppingCart bool                         `json:"is_in_shopping_cart"`
	}

	RecipeCompactResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ImageURL    string `json:"image_url,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	RecipeListResponse struct {
		Recipes    []RecipeResponse `json:"recipes"`
		Pagination Pagination       `json:"pagination"`
	}

	// ShoppingListItem is one consolidated line of a user's shopping
	// list: the summed amount of an ingredient across every recipe in
	// the cart.
	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}
)
