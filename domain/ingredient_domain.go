package domain

import (
	"errors"
)

var (
	MessageSuccessGetIngredients      = "success get ingredients"
	MessageSuccessGetIngredientDetail = "success get ingredient detail"
	MessageSuccessCreateIngredient    = "ingredient created successfully"

	MessageFailedGetIngredients      = "failed to get ingredients"
	MessageFailedGetIngredientDetail = "failed to get ingredient detail"
	MessageFailedCreateIngredient    = "failed to create ingredient"

	ErrIngredientNotFound      = errors.New("ingredient not found")
	ErrIngredientAlreadyExists = errors.New("ingredient already exists")
)

type (
	CreateIngredientRequest struct {
		Name            string `json:"name" validate:"required,max=200"`
		MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
	}

	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
)
