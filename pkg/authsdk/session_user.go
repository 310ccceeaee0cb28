package authsdk

import (
	"context"
	"net/http"
)

// GetUserInfo retrieves the identity claims for the authenticated session.
// Requires at least one of the profile, email or roles scopes.
// Automatically refreshes the access token if expired.
func (s *Session) GetUserInfo(ctx context.Context) (*UserInfoResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/connect/userinfo", nil, nil)
	if err != nil {
		return nil, err
	}

	var userInfo UserInfoResponse
	if err := decodeJSON(resp, &userInfo, http.StatusOK); err != nil {
		return nil, err
	}

	return &userInfo, nil
}
