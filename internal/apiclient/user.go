// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apiclient

import (
	"context"
	"net/http"

	"prepdeck/internal/models"
)

// UserPatch carries the partial fields accepted by /user/update.
// Nil fields are left unchanged.
type UserPatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	AdminMode *bool   `json:"adminMode,omitempty"`
}

type userResponse struct {
	User models.User `json:"user"`
}

// GetUser returns the profile of the token holder.
func (c *Client) GetUser(ctx context.Context) (*models.User, error) {
	var res userResponse
	if err := c.do(ctx, http.MethodGet, "/user/get-user", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// UpdateUser applies a partial update and returns the updated profile.
func (c *Client) UpdateUser(ctx context.Context, patch UserPatch) (*models.User, error) {
	var res userResponse
	if err := c.do(ctx, http.MethodPatch, "/user/update", nil, patch, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}
