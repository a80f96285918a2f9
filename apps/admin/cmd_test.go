package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/tradelore/tradelore/core/notification"
	"github.com/tradelore/tradelore/core/user"
	emailsvc "github.com/tradelore/tradelore/services/email"
	dummydb "github.com/tradelore/tradelore/storage/database/dummy"
)

var (
	usrRepo   user.Repository
	notifRepo notification.Repository
)

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	notifRepo = dummydb.NewNotificationRepository(db)

	usrSvc := user.NewService(usrRepo, emailsvc.NewConsoleServiceMock())
	notifSvc := notification.NewService(notifRepo, nil, usrSvc, nopLogger{})

	return &commandLine{
		usrRepo:  usrRepo,
		notifSvc: notifSvc,
	}
}

func createUser(t *testing.T, uname, email, pwd string, roles []string, isActive bool) user.User {
	now := time.Now().UTC()
	usr := user.User{
		Name:      uname,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create requires a NAME argument")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create requires a NAME argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "resource", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "awe", "awe@test.tl", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID(): %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)

	existing := createUser(t, "member", "member@test.tl", "mdr", user.MemberRoles, true)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cret"), nil }

	// promote an existing account
	if err := cli.run([]string{"admin", "addadmin", "-username", existing.Username, "-email", existing.Email}); err != nil {
		t.Fatalf("cli.run(): %v", err)
	}
	promoted, err := usrRepo.GetUserByID(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("GetUserByID(): %v", err)
	}
	if !promoted.IsAdmin() {
		t.Errorf("roles = %v; want admin", promoted.Roles)
	}

	// create a brand new admin
	if err := cli.run([]string{"admin", "addadmin", "-username", "bigboss", "-email", "boss@test.tl"}); err != nil {
		t.Fatalf("cli.run(): %v", err)
	}
	boss, err := usrRepo.GetUserByUsername(context.Background(), "bigboss")
	if err != nil {
		t.Fatalf("GetUserByUsername(): %v", err)
	}
	if !boss.IsAdmin() || !boss.Active() {
		t.Errorf("unexpected admin: roles = %v, active = %v", boss.Roles, boss.Active())
	}
	if err := boss.CheckPassword("s3cret"); err != nil {
		t.Error("password was not set")
	}
}

func Test_commandLine_announce(t *testing.T) {
	cli := setup(t)

	member := createUser(t, "member", "member@test.tl", "", user.MemberRoles, true)
	_ = createUser(t, "lazybones", "lazy@test.tl", "", user.MemberRoles, false)

	tests := []cliTest{
		{name: "no title", args: []string{"announce", "-message", "hello"}, wantErr: errHelp},
		{name: "no message", args: []string{"announce", "-title", "hello"}, wantErr: errHelp},
		{name: "ok", args: []string{"announce", "-title", "Maintenance", "-message", "Sunday 02:00 UTC"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	ns, err := notifRepo.RecentNotifications(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("RecentNotifications(): %v", err)
	}
	if len(ns) != 1 {
		t.Errorf("notifications = %d; want 1", len(ns))
	}
}
