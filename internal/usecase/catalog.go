package usecase

import (
	"context"
	"strings"

	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/dto/response"

	"go.uber.org/zap"
)

// wellnessSubcategories is the display order of the wellness package groups.
var wellnessSubcategories = []entity.PackageSubcategory{
	entity.SubcategoryHeadHair,
	entity.SubcategoryBodySkin,
	entity.SubcategoryFacial,
	entity.SubcategoryFoot,
}

// Catalog is the read-only view of packages and products.
type Catalog struct {
	store SessionStore
	log   *zap.Logger
}

func NewCatalog(store SessionStore, log *zap.Logger) *Catalog {
	return &Catalog{
		store: store,
		log:   log.With(zap.String("service", "catalog")),
	}
}

func (c *Catalog) Packages(ctx context.Context) response.PackageCatalogResponse {
	c.store.EnsureCatalog(ctx)
	packages := c.store.Snapshot().Packages

	return response.PackageCatalogResponse{
		State:    string(packages.State),
		Error:    errorText(packages.Err),
		Featured: response.PackagesToResponse(FeaturedPackages(packages.Items)),
		Groups:   GroupPackages(packages.Items),
	}
}

func (c *Catalog) Products(ctx context.Context) response.ProductCatalogResponse {
	c.store.EnsureCatalog(ctx)
	products := c.store.Snapshot().Products

	return response.ProductCatalogResponse{
		State:  string(products.State),
		Error:  errorText(products.Err),
		Groups: GroupProducts(products.Items),
	}
}

// Package looks a package up by id or display name.
func (c *Catalog) Package(ctx context.Context, idOrName string) (*response.PackageResponse, error) {
	c.store.EnsureCatalog(ctx)
	pkg, ok := FindPackage(c.store.Packages(), idOrName)
	if !ok {
		return nil, ErrPackageNotFound
	}
	res := response.PackageToResponse(pkg)
	return &res, nil
}

func (c *Catalog) Slots(ctx context.Context, packageID, date string) response.SlotsResponse {
	return response.SlotsResponse{
		PackageID: packageID,
		Date:      date,
		Slots:     c.store.AvailableTimeSlots(ctx, packageID, date),
	}
}

// FindPackage matches on id first, then case-insensitively on name.
func FindPackage(packages []entity.ServicePackage, idOrName string) (entity.ServicePackage, bool) {
	if idOrName == "" {
		return entity.ServicePackage{}, false
	}
	for _, p := range packages {
		if p.ID == idOrName {
			return p, true
		}
	}
	for _, p := range packages {
		if strings.EqualFold(p.Name, idOrName) {
			return p, true
		}
	}
	return entity.ServicePackage{}, false
}

func FeaturedPackages(packages []entity.ServicePackage) []entity.ServicePackage {
	out := make([]entity.ServicePackage, 0)
	for _, p := range packages {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// GroupPackages groups by category in display order. Wellness packages are
// further split by subcategory.
func GroupPackages(packages []entity.ServicePackage) []response.PackageGroupResponse {
	groups := make([]response.PackageGroupResponse, 0, len(entity.PackageCategories))
	for _, category := range entity.PackageCategories {
		var members []entity.ServicePackage
		for _, p := range packages {
			if p.Category == category {
				members = append(members, p)
			}
		}

		group := response.PackageGroupResponse{
			Category: string(category),
			Packages: response.PackagesToResponse(members),
		}
		if category == entity.PackageCategoryWellness {
			for _, sub := range wellnessSubcategories {
				var subMembers []entity.ServicePackage
				for _, p := range members {
					if p.Subcategory == sub {
						subMembers = append(subMembers, p)
					}
				}
				group.Subcategories = append(group.Subcategories, response.PackageSubgroupResponse{
					Subcategory: string(sub),
					Packages:    response.PackagesToResponse(subMembers),
				})
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func GroupProducts(products []entity.Product) []response.ProductGroupResponse {
	groups := make([]response.ProductGroupResponse, 0, len(entity.ProductCategories))
	for _, category := range entity.ProductCategories {
		var members []entity.Product
		for _, p := range products {
			if p.Category == category {
				members = append(members, p)
			}
		}
		groups = append(groups, response.ProductGroupResponse{
			Category: string(category),
			Products: response.ProductsToResponse(members),
		})
	}
	return groups
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
