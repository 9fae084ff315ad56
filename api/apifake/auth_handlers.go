package apifake

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-course-portal/api"
	"github.com/jrsteele09/go-course-portal/users"
	"golang.org/x/crypto/bcrypt"
)

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds users.Credentials
	if !decode(w, r, &creds) {
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeJSON(w, http.StatusBadRequest, nonField("Must include username and password"))
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	id, ok := b.usernames[creds.Username]
	if !ok || bcrypt.CompareHashAndPassword(b.accounts[id].passwordHash, []byte(creds.Password)) != nil {
		writeJSON(w, http.StatusBadRequest, nonField("Invalid credentials"))
		return
	}

	b.writeAuthResponse(w, http.StatusOK, "Login successful", id)
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var reg users.Registration
	if !decode(w, r, &reg) {
		return
	}

	fields := map[string]any{}
	if reg.Username == "" {
		fields["username"] = []string{"This field is required."}
	}
	if reg.Password == "" {
		fields["password"] = []string{"This field is required."}
	}
	if reg.PasswordConfirm == "" {
		fields["password_confirm"] = "Password confirmation is required"
	} else if reg.Password != reg.PasswordConfirm {
		fields["password_confirm"] = "Passwords don't match"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.MinCost)
	if err != nil {
		fields["password"] = []string{err.Error()}
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if _, taken := b.usernames[reg.Username]; taken {
		fields["username"] = []string{"A user with that username already exists."}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	u := b.insertUser(users.User{
		Username:    reg.Username,
		Email:       reg.Email,
		FirstName:   reg.FirstName,
		LastName:    reg.LastName,
		Role:        reg.Role,
		Phone:       reg.Phone,
		DateOfBirth: reg.DateOfBirth,
		Address:     reg.Address,
	}, hash)
	b.writeAuthResponse(w, http.StatusCreated, "User created successfully", u.ID)
}

// writeAuthResponse must be called with the lock held
func (b *Backend) writeAuthResponse(w http.ResponseWriter, status int, message string, userID int) {
	pair, err := b.issuePair(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	u := b.accounts[userID].user
	writeJSON(w, status, api.AuthResponse{
		Message: message,
		User:    &u,
		Access:  pair.Access,
		Refresh: pair.Refresh,
	})
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	b.lock.Lock()
	b.refreshCalls++
	delay := b.refreshDelay
	b.lock.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, fieldError("refresh", "This field is required."))
		return
	}
	c, err := b.verify(req.Refresh, tokenTypeRefresh)
	if b.failRefresh || err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}

	access, err := b.issue(c.UserID, tokenTypeAccess)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	resp := api.RefreshResponse{Access: access}
	if b.rotateRefresh {
		if resp.Refresh, err = b.issue(c.UserID, tokenTypeRefresh); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
			return
		}
		b.blacklist[req.Refresh] = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if _, err := b.verify(req.Refresh, tokenTypeRefresh); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid token"))
		return
	}
	b.blacklist[req.Refresh] = true
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Logout successful"})
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.currentUser(r))
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var update users.ProfileUpdate
	if !decode(w, r, &update) {
		return
	}
	if err := update.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	current := b.currentUser(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	a := b.accounts[current.ID]
	update.Apply(&a.user)
	a.user.FullName = fullName(a.user.FirstName, a.user.LastName)

	u := a.user
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    &u,
	})
}

func (b *Backend) changePassword(w http.ResponseWriter, r *http.Request) {
	var change users.PasswordChange
	if !decode(w, r, &change) {
		return
	}
	current := b.currentUser(r)

	b.lock.RLock()
	hash := b.accounts[current.ID].passwordHash
	b.lock.RUnlock()

	if bcrypt.CompareHashAndPassword(hash, []byte(change.OldPassword)) != nil {
		writeJSON(w, http.StatusBadRequest, fieldError("old_password", "Old password is incorrect"))
		return
	}
	if change.NewPassword != change.ConfirmPassword {
		writeJSON(w, http.StatusBadRequest, nonField("New passwords don't match"))
		return
	}
	if err := users.ValidatePasswordStrength(change.NewPassword); err != nil {
		writeJSON(w, http.StatusBadRequest, fieldError("new_password", err.Error()))
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(change.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}

	b.lock.Lock()
	b.accounts[current.ID].passwordHash = newHash
	b.lock.Unlock()

	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Password changed successfully"})
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	current := b.currentUser(r)

	b.lock.RLock()
	defer b.lock.RUnlock()

	results := []users.User{}
	for id := 1; id < b.nextUserID; id++ {
		a, ok := b.accounts[id]
		if !ok {
			continue
		}
		if current.IsAdmin() || id == current.ID {
			results = append(results, a.user)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(results),
		"results": results,
	})
}
