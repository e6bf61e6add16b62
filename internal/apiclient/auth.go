// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apiclient

import (
	"context"
	"net/http"

	"prepdeck/internal/models"
)

// Credentials is the sign-in request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up request body.
type Registration struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Avatar    *string `json:"avatar"`
}

// AuthResult is returned by sign-in and sign-up.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SignIn exchanges credentials for a token and the user profile.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/signin", nil, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SignUp registers a new account and signs it in.
func (c *Client) SignUp(ctx context.Context, reg Registration) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, reg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SignOut invalidates the client's token on the backend.
func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/signout", nil, nil, nil)
}
