package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chillzone/chillzone-pos/internal/catalog"
)

var _ catalog.Repository = (*Client)(nil)

// ListProducts fetches the whole product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	err := c.do(ctx, call{op: "list products", method: http.MethodGet, path: "/products", fallback: "Failed to fetch products"}, &out)
	return out, err
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, form catalog.ProductForm) (catalog.Product, error) {
	var out catalog.Product
	err := c.do(ctx, call{op: "create product", method: http.MethodPost, path: "/products", body: form, fallback: "Something went wrong"}, &out)
	return out, err
}

// UpdateProduct replaces a product's editable fields.
func (c *Client) UpdateProduct(ctx context.Context, id int64, form catalog.ProductForm) (catalog.Product, error) {
	var out catalog.Product
	err := c.do(ctx, call{op: "update product", method: http.MethodPut, path: fmt.Sprintf("/products/%d", id), body: form, fallback: "Failed to update product"}, &out)
	return out, err
}

// DeleteProduct deletes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "delete product", method: http.MethodDelete, path: fmt.Sprintf("/products/%d", id), fallback: "Failed to delete product"}, nil)
}

// AddStock records goods received for a product.
func (c *Client) AddStock(ctx context.Context, id int64, input catalog.StockInput) (catalog.Product, error) {
	var out catalog.Product
	err := c.do(ctx, call{op: "add stock", method: http.MethodPost, path: fmt.Sprintf("/products/%d/stock", id), body: input, fallback: "Failed to add stock"}, &out)
	return out, err
}

// ListCategories fetches all categories.
func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	err := c.do(ctx, call{op: "list categories", method: http.MethodGet, path: "/categories", fallback: "Failed to fetch categories"}, &out)
	return out, err
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, form catalog.NamedForm) (catalog.Category, error) {
	var out catalog.Category
	err := c.do(ctx, call{op: "create category", method: http.MethodPost, path: "/categories", body: form, fallback: "Failed to create category"}, &out)
	return out, err
}

// UpdateCategory updates a category.
func (c *Client) UpdateCategory(ctx context.Context, id int64, form catalog.NamedForm) (catalog.Category, error) {
	var out catalog.Category
	body := catalog.Category{ID: id, Name: form.Name, Description: form.Description}
	err := c.do(ctx, call{op: "update category", method: http.MethodPut, path: fmt.Sprintf("/categories/%d", id), body: body, fallback: "Failed to update category"}, &out)
	return out, err
}

// DeleteCategory deletes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "delete category", method: http.MethodDelete, path: fmt.Sprintf("/categories/%d", id), fallback: "Failed to delete category"}, nil)
}

// ListBrands fetches all brands.
func (c *Client) ListBrands(ctx context.Context) ([]catalog.Brand, error) {
	var out []catalog.Brand
	err := c.do(ctx, call{op: "list brands", method: http.MethodGet, path: "/brands", fallback: "Failed to fetch brands"}, &out)
	return out, err
}

// CreateBrand creates a brand.
func (c *Client) CreateBrand(ctx context.Context, form catalog.NamedForm) (catalog.Brand, error) {
	var out catalog.Brand
	err := c.do(ctx, call{op: "create brand", method: http.MethodPost, path: "/brands", body: form, fallback: "Failed to create brand"}, &out)
	return out, err
}

// UpdateBrand updates a brand.
func (c *Client) UpdateBrand(ctx context.Context, id int64, form catalog.NamedForm) (catalog.Brand, error) {
	var out catalog.Brand
	body := catalog.Brand{ID: id, Name: form.Name, Description: form.Description}
	err := c.do(ctx, call{op: "update brand", method: http.MethodPut, path: fmt.Sprintf("/brands/%d", id), body: body, fallback: "Failed to update brand"}, &out)
	return out, err
}

// DeleteBrand deletes a brand.
func (c *Client) DeleteBrand(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "delete brand", method: http.MethodDelete, path: fmt.Sprintf("/brands/%d", id), fallback: "Failed to delete brand"}, nil)
}
