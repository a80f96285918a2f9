package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tradelore/tradelore/core"
	"github.com/tradelore/tradelore/core/activity"
	"github.com/tradelore/tradelore/core/audit"
	"github.com/tradelore/tradelore/core/notification"
	"github.com/tradelore/tradelore/core/resource"
	"github.com/tradelore/tradelore/core/user"
	emailsvc "github.com/tradelore/tradelore/services/email"
	"github.com/tradelore/tradelore/services/realtime"
	dummydb "github.com/tradelore/tradelore/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true
	os.Exit(m.Run())
}

type testEnv struct {
	server       Server
	userRepo     user.Repository
	resourceRepo resource.Repository
	activityRepo activity.Repository
	notifRepo    notification.Repository
	auditRepo    audit.Repository

	userSvc     *user.Service
	resourceSvc *resource.Service
	fileStore   *fakeFileStore
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("newTestEnv(): %v", err)
	}

	env := &testEnv{
		userRepo:     dummydb.NewUserRepository(db),
		resourceRepo: dummydb.NewResourceRepository(db),
		activityRepo: dummydb.NewActivityRepository(db),
		notifRepo:    dummydb.NewNotificationRepository(db),
		auditRepo:    dummydb.NewAuditRepository(db),
		fileStore:    &fakeFileStore{},
	}

	logger := nopLogger{}
	auditSvc := audit.NewService(env.auditRepo, logger)
	env.userSvc = user.NewService(env.userRepo, emailsvc.NewConsoleServiceMock())
	env.resourceSvc = resource.NewService(env.resourceRepo, auditSvc)
	activitySvc := activity.NewService(env.activityRepo)
	notifSvc := notification.NewService(env.notifRepo, realtime.NewInProcBroker(), env.userSvc, logger)

	env.server = NewServer(&Options{
		DisableReqLogs:  true,
		Logger:          logger,
		UserSvc:         env.userSvc,
		ResourceSvc:     env.resourceSvc,
		ActivitySvc:     activitySvc,
		NotificationSvc: notifSvc,
		AuditSvc:        auditSvc,
		FileStore:       env.fileStore,
	})
	return env
}

// fakeFileStore validates like the real stores but keeps everything in memory.
type fakeFileStore struct {
	mu      sync.Mutex
	stored  []string
	deleted []string
}

var _ core.FileStore = (*fakeFileStore)(nil)

func (s *fakeFileStore) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (core.UploadResult, error) {
	if err := core.ValidateUpload(contentType, size); err != nil {
		return core.UploadResult{}, err
	}
	key := "resources/" + filename
	s.mu.Lock()
	s.stored = append(s.stored, key)
	s.mu.Unlock()
	return core.UploadResult{
		Key:      key,
		URL:      "https://files.test/" + key,
		FileType: core.InferFileType(contentType),
	}, nil
}

func (s *fakeFileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, key)
	s.mu.Unlock()
	return nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func createUser(t *testing.T, repo user.Repository, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
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
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func createResource(t *testing.T, repo resource.Repository, title string, published bool, visibility string) resource.Resource {
	now := time.Now().UTC()
	res, err := repo.CreateResource(context.Background(), resource.Resource{
		Title:       title,
		Category:    resource.CategoryEquity,
		FileType:    resource.FileTypePDF,
		FileURL:     "https://files.test/" + title + ".pdf",
		IsPublished: published,
		Visibility:  visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("createResource(): %v", err)
	}
	return res
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
