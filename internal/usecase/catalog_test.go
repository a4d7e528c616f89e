package usecase

import (
	"context"
	"errors"
	"testing"

	"siddhaka-portal/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pkg(id, name string, category entity.PackageCategory, sub entity.PackageSubcategory, featured bool) entity.ServicePackage {
	return entity.ServicePackage{
		Base: entity.Base{ID: id},
		PackageInput: entity.PackageInput{
			Name:        name,
			Category:    category,
			Subcategory: sub,
			Featured:    featured,
		},
	}
}

var testPackages = []entity.ServicePackage{
	pkg("pk1", "Shirodhara", entity.PackageCategoryWellness, entity.SubcategoryHeadHair, true),
	pkg("pk2", "Padabhyanga", entity.PackageCategoryWellness, entity.SubcategoryFoot, false),
	pkg("pk3", "Rejuvenation Day", entity.PackageCategorySpecial, entity.SubcategoryFullDay, true),
	pkg("pk4", "Siddhaka Signature", entity.PackageCategorySignature, "", false),
}

func TestFindPackage(t *testing.T) {
	p, ok := FindPackage(testPackages, "pk3")
	require.True(t, ok)
	assert.Equal(t, "Rejuvenation Day", p.Name)

	p, ok = FindPackage(testPackages, "shirodhara")
	require.True(t, ok)
	assert.Equal(t, "pk1", p.ID)

	_, ok = FindPackage(testPackages, "Nasya")
	assert.False(t, ok)
	_, ok = FindPackage(testPackages, "")
	assert.False(t, ok)
}

func TestGroupPackages(t *testing.T) {
	groups := GroupPackages(testPackages)
	require.Len(t, groups, 3)

	wellness := groups[0]
	assert.Equal(t, "wellness", wellness.Category)
	assert.Len(t, wellness.Packages, 2)
	require.Len(t, wellness.Subcategories, 4)
	assert.Equal(t, "head-hair", wellness.Subcategories[0].Subcategory)
	assert.Len(t, wellness.Subcategories[0].Packages, 1)
	assert.Empty(t, wellness.Subcategories[1].Packages)
	assert.Len(t, wellness.Subcategories[3].Packages, 1)

	assert.Equal(t, "special", groups[1].Category)
	assert.Nil(t, groups[1].Subcategories)
	assert.Len(t, groups[2].Packages, 1)

	assert.Equal(t, []string{"pk1", "pk3"}, func() []string {
		var out []string
		for _, p := range FeaturedPackages(testPackages) {
			out = append(out, p.ID)
		}
		return out
	}())
}

func TestGroupProducts(t *testing.T) {
	products := []entity.Product{
		{Base: entity.Base{ID: "o1"}, ProductInput: entity.ProductInput{Name: "Kshirabala", Category: entity.ProductCategoryOils}},
		{Base: entity.Base{ID: "s1"}, ProductInput: entity.ProductInput{Name: "Bhringraj", Category: entity.ProductCategoryShampoos}},
	}

	groups := GroupProducts(products)
	require.Len(t, groups, 4)
	assert.Equal(t, "oils", groups[0].Category)
	assert.Len(t, groups[0].Products, 1)
	assert.Empty(t, groups[1].Products)
	assert.Len(t, groups[3].Products, 1)
	assert.NotNil(t, groups[0].Products[0].KeyIngredients)
}

func TestCatalog_LoadsOnDemand(t *testing.T) {
	api := newFakeAPI()
	api.listPackages = func() ([]entity.ServicePackage, error) { return testPackages, nil }
	catalog := NewCatalog(newTestStore(api, newMemCredentials()), zap.NewNop())
	ctx := context.Background()

	view := catalog.Packages(ctx)
	assert.Equal(t, "loaded", view.State)
	assert.Len(t, view.Featured, 2)

	catalog.Packages(ctx)
	assert.Equal(t, 1, api.count("list_packages"), "loaded collections are not refetched")

	res, err := catalog.Package(ctx, "Padabhyanga")
	require.NoError(t, err)
	assert.Equal(t, "pk2", res.ID)

	_, err = catalog.Package(ctx, "Nasya")
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestCatalog_FailedLoadReportsState(t *testing.T) {
	api := newFakeAPI()
	api.listProducts = func() ([]entity.Product, error) { return nil, errors.New("backend down") }
	catalog := NewCatalog(newTestStore(api, newMemCredentials()), zap.NewNop())

	view := catalog.Products(context.Background())
	assert.Equal(t, "failed", view.State)
	assert.Equal(t, "backend down", view.Error)
	assert.Len(t, view.Groups, 4)
}
