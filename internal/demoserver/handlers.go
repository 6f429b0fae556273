package demoserver

import (
	"net/http"
	"strings"

	"github.com/avoskres/salondesk/internal/client/models"
	"github.com/avoskres/salondesk/internal/common"
	"github.com/avoskres/salondesk/internal/filex"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !readJSON(w, r, &req) {
		return
	}

	user, err := a.store.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := a.tokens.IssuePair(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue tokens")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          user,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !readJSON(w, r, &req) {
		return
	}

	access, err := a.tokens.Refresh(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Logout is best-effort on the client side; a missing or malformed body
	// still ends with 204.
	_ = readBodyLoose(r, &req)
	if req.RefreshToken != "" {
		a.tokens.Revoke(req.RefreshToken)
	}
	w.WriteHeader(http.StatusNoContent)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (a *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := a.store.AddUser(req.Name, req.Email, req.Password, "staff"); err != nil {
		writeError(w, http.StatusInternalServerError, "could not create account")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type setupRequest struct {
	SalonName string `json:"salon_name" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

func (a *App) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if !readJSON(w, r, &req) {
		return
	}

	if err := a.store.AddUser(req.Name, req.Email, req.Password, "owner"); err != nil {
		writeError(w, http.StatusInternalServerError, "could not create account")
		return
	}
	user, err := a.store.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create account")
		return
	}

	pair, err := a.tokens.IssuePair(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue tokens")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          user,
	})
}

func (a *App) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	// No mail in demo mode; accept and move on.
	w.WriteHeader(http.StatusAccepted)
}

func (a *App) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	// Demo mode issues no reset tokens, so every token is unknown.
	writeError(w, http.StatusBadRequest, "invalid or expired reset token")
}

func (a *App) handleListClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Customers())
}

type customerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

func (a *App) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !readJSON(w, r, &req) {
		return
	}
	c := a.store.SaveCustomer(models.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	writeJSON(w, http.StatusCreated, c)
}

func (a *App) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !readJSON(w, r, &req) {
		return
	}
	c := a.store.SaveCustomer(models.Customer{
		ID:    r.PathValue("id"),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	writeJSON(w, http.StatusOK, c)
}

func (a *App) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if !a.store.DeleteCustomer(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Appointments(r.URL.Query().Get("date")))
}

func (a *App) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var ap models.Appointment
	if !readBodyLoose(r, &ap) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if ap.CustomerID == "" || ap.StartsAt.IsZero() {
		writeError(w, http.StatusBadRequest, "customer_id and starts_at are required")
		return
	}
	writeJSON(w, http.StatusCreated, a.store.SaveAppointment(ap))
}

func (a *App) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if !a.store.DeleteAppointment(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleListServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Services())
}

func (a *App) handleListStaff(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Staff())
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(common.DefaultUploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	path, err := filex.SaveStream(a.uploadDir, header.Filename, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not store file")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": "file://" + path})
}

// requireAuth guards the CRM routes: a valid bearer access token must be
// present. Auth routes are mounted outside this wrapper.
func (a *App) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := a.tokens.ParseAccess(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r)
	}
}
