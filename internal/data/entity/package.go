package entity

type PackageCategory string

const (
	PackageCategoryWellness  PackageCategory = "wellness"
	PackageCategorySpecial   PackageCategory = "special"
	PackageCategorySignature PackageCategory = "signature"
)

var PackageCategories = []PackageCategory{
	PackageCategoryWellness,
	PackageCategorySpecial,
	PackageCategorySignature,
}

type PackageSubcategory string

const (
	SubcategoryHeadHair PackageSubcategory = "head-hair"
	SubcategoryBodySkin PackageSubcategory = "body-skin"
	SubcategoryFacial   PackageSubcategory = "facial"
	SubcategoryFoot     PackageSubcategory = "foot"
	SubcategoryFullDay  PackageSubcategory = "full-day"
	SubcategoryHalfDay  PackageSubcategory = "half-day"
	SubcategorySevenDay PackageSubcategory = "7-day"
)

type ServicePackage struct {
	Base
	PackageInput
}

// PackageInput is the admin-editable part of a package.
type PackageInput struct {
	Name               string             `json:"name" validate:"required,max=120"`
	Duration           int                `json:"duration" validate:"required,min=1"`
	Category           PackageCategory    `json:"category" validate:"required,oneof=wellness special signature"`
	Subcategory        PackageSubcategory `json:"subcategory,omitempty" validate:"omitempty,oneof=head-hair body-skin facial foot full-day half-day 7-day"`
	Description        string             `json:"description" validate:"required"`
	Includes           []string           `json:"includes"`
	Benefits           string             `json:"benefits,omitempty"`
	Image              string             `json:"image,omitempty"`
	Focus              string             `json:"focus,omitempty"`
	Featured           bool               `json:"featured,omitempty"`
	ConcurrentServices int                `json:"concurrentServices" validate:"min=1"`
}
