package entity

type ProductCategory string

const (
	ProductCategoryOils     ProductCategory = "oils"
	ProductCategoryGels     ProductCategory = "gels"
	ProductCategoryLotions  ProductCategory = "lotions"
	ProductCategoryShampoos ProductCategory = "shampoos"
)

var ProductCategories = []ProductCategory{
	ProductCategoryOils,
	ProductCategoryGels,
	ProductCategoryLotions,
	ProductCategoryShampoos,
}

type Product struct {
	Base
	ProductInput
}

// ProductInput is the admin-editable part of a product.
type ProductInput struct {
	Name           string          `json:"name" validate:"required,max=120"`
	Subtitle       string          `json:"subtitle"`
	Description    string          `json:"description" validate:"required"`
	Image          string          `json:"image"`
	Category       ProductCategory `json:"category" validate:"required,oneof=oils gels lotions shampoos"`
	KeyIngredients []string        `json:"keyIngredients"`
	FreeFrom       []string        `json:"freeFrom"`
	Benefits       []string        `json:"benefits"`
}
