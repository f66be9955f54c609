package api

import (
	"context"
	"net/http"
	"net/url"
)

// User is a staff account.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
	OutletID string `json:"outletId"`
}

// UserInput creates or replaces a staff account.
type UserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin cashier waiter kitchen"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
	Active   *bool  `json:"active,omitempty"`
}

// UsersService covers /Users.
type UsersService struct {
	client *Client
}

func (s *UsersService) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.client.do(ctx, http.MethodGet, "/Users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UsersService) Create(ctx context.Context, input UserInput) (*User, error) {
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	var user User
	if err := s.client.do(ctx, http.MethodPost, "/Users", nil, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersService) Update(ctx context.Context, id string, input UserInput) (*User, error) {
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	var user User
	if err := s.client.do(ctx, http.MethodPut, "/Users/"+url.PathEscape(id), nil, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersService) Delete(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/Users/"+url.PathEscape(id), nil, nil, nil)
}
