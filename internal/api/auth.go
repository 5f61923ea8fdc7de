/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/auth"
	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

const tokenTTL = 12 * time.Hour

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// handleLogin exchanges credentials for a JWT. Unknown accounts and
// wrong passwords are indistinguishable to the caller.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "credentials_required")
		return
	}

	var user models.User
	err := a.db.WithContext(r.Context()).Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.logger.Error().Err(err).Msg("login lookup failed")
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	token, err := auth.Issue(a.jwtSecret, auth.Claims{
		UserID: user.ID,
		Name:   user.Email,
		Roles:  []string{string(user.Role)},
	}, tokenTTL)
	if err != nil {
		a.logger.Error().Err(err).Msg("token issue failed")
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	a.bus.Publish(events.EventAuditLogin, events.Payload{
		"user_id":    user.ID,
		"email":      user.Email,
		"ip_address": r.RemoteAddr,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		Email: user.Email,
		Role:  string(user.Role),
	})
}
