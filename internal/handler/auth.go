package handler

import (
	"net/http"

	"github.com/foodies-pos/api/internal/auth"
	"github.com/foodies-pos/api/internal/enum"
)

type AuthHandler struct {
	secret string
	store  auth.EmployeeStore
}

func NewAuthHandler(secret string, store auth.EmployeeStore) *AuthHandler {
	return &AuthHandler{secret: secret, store: store}
}

type loginRequest struct {
	PIN        string `json:"pin"`
	TerminalID string `json:"terminal_id"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Employee  string `json:"employee"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Login exchanges an employee PIN for a terminal-scoped token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	allRoles := []string{
		enum.RoleOwner, enum.RoleAdmin, enum.RoleManager,
		enum.RoleWaiter, enum.RoleCashier, enum.RoleChef,
	}
	employee, err := auth.VerifyPIN(r.Context(), h.store, allRoles, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.GenerateToken(h.secret, employee.ID, req.TerminalID, employee.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Employee:  employee.ID.String(),
		Role:      employee.Role,
		FirstName: employee.FirstName,
		LastName:  employee.LastName,
	})
}
