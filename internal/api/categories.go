package api

import (
	"context"
	"net/http"
	"net/url"
)

// Category groups menu items for display.
type Category struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// CategoryInput creates or replaces a category.
type CategoryInput struct {
	Title    string `json:"title" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

// CategoriesService covers /Categories.
type CategoriesService struct {
	client *Client
}

func (s *CategoriesService) List(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.client.do(ctx, http.MethodGet, "/Categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoriesService) Create(ctx context.Context, input CategoryInput) (*Category, error) {
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	var category Category
	if err := s.client.do(ctx, http.MethodPost, "/Categories", nil, input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoriesService) Update(ctx context.Context, id string, input CategoryInput) (*Category, error) {
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	var category Category
	if err := s.client.do(ctx, http.MethodPut, "/Categories/"+url.PathEscape(id), nil, input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoriesService) Delete(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/Categories/"+url.PathEscape(id), nil, nil, nil)
}
