package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tradelore/tradelore/core/user"
)

func Test_userApi_login(t *testing.T) {
	env := newTestEnv(t)

	active := createUser(t, env.userRepo, "Active Member", "member01", "member01@test.tl", "passwd", user.MemberRoles, true)
	_ = createUser(t, env.userRepo, "Lazy Bones", "lazybones", "lazy@test.tl", "passwd", user.MemberRoles, false)

	body := func(uname, pwd string) []byte {
		return marchallObj(t, LoginRequest{Username: uname, Password: pwd})
	}

	tests := []httpTest{
		{name: "empty body", wantCode: http.StatusBadRequest},
		{name: "unknown user", body: body("ghost", "passwd"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "wrong password", body: body(active.Username, "nope"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "deactivated account", body: body("lazybones", "passwd"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "login with username", body: body(active.Username, "passwd"), wantCode: http.StatusOK},
		{name: "login with email", body: body(active.Email, "passwd"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			env.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling LoginResponse: %v", err)
				}
				if resp.Token == "" {
					t.Error("failed! empty token")
				}
			} else if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_userApi_register(t *testing.T) {
	env := newTestEnv(t)

	data := marchallObj(t, user.NewUser{
		Name:            "Eager Beaver",
		Username:        "eagerbeaver",
		Email:           "beaver@test.tl",
		Password:        "passwd",
		PasswordConfirm: "passwd",
		Roles:           user.AdminRoles, // must be ignored
	})
	req, rec := newRequest(http.MethodPost, "/v1/users/register", data)
	env.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	usr, err := env.userSvc.GetByUsername(context.Background(), "eagerbeaver")
	if err != nil {
		t.Fatalf("GetByUsername(): %v", err)
	}
	if usr.IsAdmin() {
		t.Error("failed! self-registered user got admin roles")
	}
	if !usr.IsMember() {
		t.Errorf("failed! roles = %v; want member", usr.Roles)
	}

	// duplicate username is a validation error
	req, rec = newRequest(http.MethodPost, "/v1/users/register", data)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}
}

func Test_userApi_query(t *testing.T) {
	env := newTestEnv(t)

	member := createUser(t, env.userRepo, "Member", "member01", "member01@test.tl", "", user.MemberRoles, true)
	admin := createUser(t, env.userRepo, "Admin", "admin01", "admin01@test.tl", "", user.AdminRoles, true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin required", token: getToken(t, member), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "admin gets all", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, member, admin)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	env := newTestEnv(t)

	member := createUser(t, env.userRepo, "Member", "member01", "member01@test.tl", "", user.MemberRoles, true)
	other := createUser(t, env.userRepo, "Other", "other01", "other01@test.tl", "", user.MemberRoles, true)
	admin := createUser(t, env.userRepo, "Admin", "admin01", "admin01@test.tl", "", user.AdminRoles, true)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users/" + member.ID, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken)},
		{name: "own account", path: "/v1/users/" + member.ID, token: getToken(t, member),
			wantCode: http.StatusOK, wantData: marchallObj(t, member)},
		{name: "someone else's account is hidden", path: "/v1/users/" + other.ID, token: getToken(t, member),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
		{name: "admin can retrieve anyone", path: "/v1/users/" + other.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, other)},
		{name: "admin: unknown user", path: "/v1/users/69cafe", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_destroy(t *testing.T) {
	env := newTestEnv(t)

	member := createUser(t, env.userRepo, "Member", "member01", "member01@test.tl", "", user.MemberRoles, true)
	admin := createUser(t, env.userRepo, "Admin", "admin01", "admin01@test.tl", "", user.AdminRoles, true)
	adminToken := getToken(t, admin)

	// no self-destruction
	req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/users/"+member.ID, adminToken)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	if _, err := env.userSvc.GetByID(context.Background(), member.ID); err != user.ErrNotFound {
		t.Errorf("GetByID() err = %v; want %v", err, user.ErrNotFound)
	}
}
