package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Product is a menu item as served by the API.
type Product struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Price      int64  `json:"price"`
	CategoryID string `json:"categoryId"`
	ImageURL   string `json:"imageUrl"`
	Active     bool   `json:"active"`
}

// ProductInput creates or replaces a menu item.
type ProductInput struct {
	Title      string `json:"title" validate:"required"`
	Price      int64  `json:"price" validate:"gte=0"`
	CategoryID string `json:"categoryId" validate:"required"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Active     *bool  `json:"active,omitempty"`
}

// ProductPatch updates individual fields; nil fields are left untouched.
type ProductPatch struct {
	Title      *string `json:"title,omitempty"`
	Price      *int64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	CategoryID *string `json:"categoryId,omitempty"`
	ImageURL   *string `json:"imageUrl,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

// ProductListParams filters the product listing.
type ProductListParams struct {
	CategoryID string
	Search     string
	Page       int
	Limit      int
}

// ProductsService covers /Products.
type ProductsService struct {
	client *Client
}

func (s *ProductsService) List(ctx context.Context, params ProductListParams) ([]Product, error) {
	query := url.Values{}
	if params.CategoryID != "" {
		query.Set("categoryId", params.CategoryID)
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	var products []Product
	if err := s.client.do(ctx, http.MethodGet, "/Products", query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductsService) Get(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := s.client.do(ctx, http.MethodGet, "/Products/"+url.PathEscape(id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductsService) Create(ctx context.Context, input ProductInput) (*Product, error) {
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	var product Product
	if err := s.client.do(ctx, http.MethodPost, "/Products", nil, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductsService) Update(ctx context.Context, id string, input ProductInput) (*Product, error) {
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	var product Product
	if err := s.client.do(ctx, http.MethodPut, "/Products/"+url.PathEscape(id), nil, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductsService) Patch(ctx context.Context, id string, patch ProductPatch) (*Product, error) {
	if err := ValidateStruct(patch); err != nil {
		return nil, err
	}
	var product Product
	if err := s.client.do(ctx, http.MethodPatch, "/Products/"+url.PathEscape(id), nil, patch, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductsService) Delete(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/Products/"+url.PathEscape(id), nil, nil, nil)
}
