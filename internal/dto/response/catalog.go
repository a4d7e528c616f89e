package response

import (
	"siddhaka-portal/internal/data/entity"
)

type PackageResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Duration           int      `json:"duration"`
	Category           string   `json:"category"`
	Subcategory        string   `json:"subcategory,omitempty"`
	Description        string   `json:"description"`
	Includes           []string `json:"includes"`
	Benefits           string   `json:"benefits,omitempty"`
	Image              string   `json:"image,omitempty"`
	Focus              string   `json:"focus,omitempty"`
	Featured           bool     `json:"featured"`
	ConcurrentServices int      `json:"concurrent_services"`
}

type ProductResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Subtitle       string   `json:"subtitle,omitempty"`
	Description    string   `json:"description"`
	Image          string   `json:"image,omitempty"`
	Category       string   `json:"category"`
	KeyIngredients []string `json:"key_ingredients"`
	FreeFrom       []string `json:"free_from"`
	Benefits       []string `json:"benefits"`
}

type PackageSubgroupResponse struct {
	Subcategory string            `json:"subcategory"`
	Packages    []PackageResponse `json:"packages"`
}

type PackageGroupResponse struct {
	Category      string                    `json:"category"`
	Packages      []PackageResponse         `json:"packages"`
	Subcategories []PackageSubgroupResponse `json:"subcategories,omitempty"`
}

type PackageCatalogResponse struct {
	State    string                 `json:"state"`
	Error    string                 `json:"error,omitempty"`
	Featured []PackageResponse      `json:"featured"`
	Groups   []PackageGroupResponse `json:"groups"`
}

type ProductGroupResponse struct {
	Category string            `json:"category"`
	Products []ProductResponse `json:"products"`
}

type ProductCatalogResponse struct {
	State  string                 `json:"state"`
	Error  string                 `json:"error,omitempty"`
	Groups []ProductGroupResponse `json:"groups"`
}

func PackageToResponse(p entity.ServicePackage) PackageResponse {
	return PackageResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Duration:           p.Duration,
		Category:           string(p.Category),
		Subcategory:        string(p.Subcategory),
		Description:        p.Description,
		Includes:           nonNil(p.Includes),
		Benefits:           p.Benefits,
		Image:              p.Image,
		Focus:              p.Focus,
		Featured:           p.Featured,
		ConcurrentServices: p.ConcurrentServices,
	}
}

func PackagesToResponse(packages []entity.ServicePackage) []PackageResponse {
	out := make([]PackageResponse, 0, len(packages))
	for _, p := range packages {
		out = append(out, PackageToResponse(p))
	}
	return out
}

func ProductToResponse(p entity.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Subtitle:       p.Subtitle,
		Description:    p.Description,
		Image:          p.Image,
		Category:       string(p.Category),
		KeyIngredients: nonNil(p.KeyIngredients),
		FreeFrom:       nonNil(p.FreeFrom),
		Benefits:       nonNil(p.Benefits),
	}
}

func ProductsToResponse(products []entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductToResponse(p))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
