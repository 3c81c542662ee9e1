package ingredient

import (
	"context"
	"errors"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, name string) IngredientService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&entities.Ingredient{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return NewIngredientService(NewIngredientRepository(db))
}

func TestCreateIngredientUniquePerUnit(t *testing.T) {
	svc := newTestService(t, "ingredients_unique")
	ctx := context.Background()

	if _, err := svc.CreateIngredient(ctx, domain.CreateIngredientRequest{
		Name:            "sugar",
		MeasurementUnit: "g",
	}); err != nil {
		t.Fatalf("CreateIngredient failed: %v", err)
	}

	// same name with another unit is a distinct ingredient
	if _, err := svc.CreateIngredient(ctx, domain.CreateIngredientRequest{
		Name:            "sugar",
		MeasurementUnit: "tbsp",
	}); err != nil {
		t.Fatalf("CreateIngredient with other unit failed: %v", err)
	}

	_, err := svc.CreateIngredient(ctx, domain.CreateIngredientRequest{
		Name:            "sugar",
		MeasurementUnit: "g",
	})
	if !errors.Is(err, domain.ErrIngredientAlreadyExists) {
		t.Fatalf("expected ErrIngredientAlreadyExists, got %v", err)
	}
}

func TestGetIngredientsPrefixSearch(t *testing.T) {
	svc := newTestService(t, "ingredients_search")
	ctx := context.Background()

	for _, name := range []string{"salt", "saffron", "pepper"} {
		if _, err := svc.CreateIngredient(ctx, domain.CreateIngredientRequest{
			Name:            name,
			MeasurementUnit: "g",
		}); err != nil {
			t.Fatalf("CreateIngredient %q failed: %v", name, err)
		}
	}

	res, err := svc.GetIngredients(ctx, "sa")
	if err != nil {
		t.Fatalf("GetIngredients failed: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 matches for prefix, got %d", len(res))
	}
	// alphabetical order
	if res[0].Name != "saffron" || res[1].Name != "salt" {
		t.Fatalf("unexpected order: %+v", res)
	}

	all, err := svc.GetIngredients(ctx, "")
	if err != nil {
		t.Fatalf("GetIngredients failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all ingredients, got %d", len(all))
	}
}
