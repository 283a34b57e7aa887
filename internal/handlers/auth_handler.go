package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"plp-bookstore/internal/utils"
)

type AuthHandler struct {
	ConfigCreds struct {
		UserId       string
		Username     string
		UserPassword string
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// POST /login
func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if a.ConfigCreds.Username == "" ||
		!equal(a.ConfigCreds.Username, req.Username) ||
		!equal(a.ConfigCreds.UserPassword, req.Password) {
		utils.JSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := utils.GenerateJWT(a.ConfigCreds.UserId)
	if err != nil {
		zap.S().Errorf("Issuing token failed: %v", err)
		utils.JSONError(w, "Could not issue token", http.StatusInternalServerError)
		return
	}

	utils.JSON(w, http.StatusOK, LoginResponse{Token: token})
}
