// Package testutil builds a full in-memory application instance for
// handler and service tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/config"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/handler"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/mailer"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/middleware"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/storage"
)

const JWTSecret = "procurehub-test-secret"

var dbSeq atomic.Int64

// Env holds the wired application for one test.
type Env struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Repos    *repository.Repositories
	Services *service.Services
	Cfg      *config.Config
	T        *testing.T
}

// SetupTestDB opens an isolated in-memory SQLite database and migrates
// the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Department{},
		&entity.Category{},
		&entity.Supplier{},
		&entity.SupplierDocument{},
		&entity.PurchaseRequest{},
		&entity.RFQ{},
		&entity.Invitation{},
		&entity.Quotation{},
		&entity.Message{},
		&entity.CompanySettings{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupEnv wires repositories, services, handlers and the full route
// table against an in-memory database. Object storage lands in a temp
// dir and mail goes to a no-op logger.
func SetupEnv(t *testing.T) *Env {
	t.Helper()

	db := SetupTestDB(t)

	cfg := testConfig(t)
	log := zap.NewNop()

	store, err := storage.New(cfg.MinIO)
	if err != nil {
		t.Fatalf("Failed to init local storage: %v", err)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, store, mailer.New(cfg.SMTP, log), cfg, log)
	handlers := handler.NewHandlers(services)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router, handlers, cfg, nil)

	return &Env{
		DB:       db,
		Router:   router,
		Repos:    repos,
		Services: services,
		Cfg:      cfg,
		T:        t,
	}
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     JWTSecret,
			ExpireTime: time.Hour,
			Issuer:     "procurehub",
		},
		MinIO: config.MinIOConfig{
			LocalDir: t.TempDir(),
		},
		RFQ: config.RFQConfig{
			InvitationBatchSize: 25,
			ExpirySweepInterval: time.Minute,
		},
	}
}

// GenerateTestToken mints a JWT accepted by the auth middleware.
func GenerateTestToken(userID uint, username string, role entity.Role, departmentID *uint) string {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:       userID,
		Username:     username,
		Role:         role,
		DepartmentID: departmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			Issuer:    "procurehub",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(JWTSecret))
	return signed
}

// SeedUser creates a user with the given role and returns it with a
// ready-to-use token.
func (e *Env) SeedUser(username string, role entity.Role, departmentID *uint) (*entity.User, string) {
	e.T.Helper()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &entity.User{
		Username:     username,
		Email:        username + "@test.local",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		DepartmentID: departmentID,
	}
	if err := e.DB.Create(user).Error; err != nil {
		e.T.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user, GenerateTestToken(user.ID, user.Username, user.Role, user.DepartmentID)
}

// SeedDepartment creates a department, optionally headed by a user.
func (e *Env) SeedDepartment(name string, headID *uint) *entity.Department {
	e.T.Helper()

	dept := &entity.Department{Name: name, HeadUserID: headID}
	if err := e.DB.Create(dept).Error; err != nil {
		e.T.Fatalf("Failed to seed department %s: %v", name, err)
	}
	if headID != nil {
		if err := e.DB.Model(&entity.User{}).Where("id = ?", *headID).
			Update("department_id", dept.ID).Error; err != nil {
			e.T.Fatalf("Failed to attach head to department: %v", err)
		}
	}
	return dept
}

// SeedSupplier creates a supplier-role user plus its vendor profile.
func (e *Env) SeedSupplier(username, company string) (*entity.Supplier, string) {
	e.T.Helper()

	user, token := e.SeedUser(username, entity.RoleSupplier, nil)
	supplier := &entity.Supplier{
		UserID:            user.ID,
		SupplierNumber:    fmt.Sprintf("SUP-%s-%04d", time.Now().Format("20060102"), user.ID),
		CompanyName:       company,
		ContactPerson:     "Contact " + company,
		IsActive:          true,
		TotalAwardedValue: decimal.Zero,
	}
	if err := e.DB.Create(supplier).Error; err != nil {
		e.T.Fatalf("Failed to seed supplier %s: %v", company, err)
	}
	supplier.User = user
	return supplier, token
}

// DoRequest sends a JSON request through the router.
func (e *Env) DoRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// FormFile describes one file part of a multipart request.
type FormFile struct {
	Field    string
	Name     string
	Contents []byte
}

// DoForm sends a multipart/form-data request through the router.
func (e *Env) DoForm(method, path string, fields map[string]string, files []FormFile, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			e.T.Fatalf("Failed to build multipart body: %v", err)
		}
		io.Copy(part, bytes.NewReader(f.Contents))
	}
	mw.Close()

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// ParseResponse decodes the standard response envelope.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// ResponseCode pulls the application code out of the envelope.
func ResponseCode(w *httptest.ResponseRecorder) int {
	resp := ParseResponse(w)
	code, _ := resp["code"].(float64)
	return int(code)
}

// ResponseData returns the data object of a successful envelope.
func ResponseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	resp := ParseResponse(w)
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no data object: %s", w.Body.String())
	}
	return data
}
