package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
	"github.com/dateshub/dateshub-api/services"
)

// setupMockAuth0Server simulates Auth0's /userinfo endpoint, keyed by token
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := authHeader[7:]

		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	}))
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	server := setupMockAuth0Server(map[string]*services.Auth0UserInfo{
		"customer-token": {
			Sub:   "auth0|newcustomer",
			Email: "newcustomer@example.com",
			Name:  "New Customer",
		},
		"owner-token": {
			Sub:   "auth0|newowner",
			Email: "newowner@example.com",
			Name:  "New Owner",
		},
		"no-email-token": {
			Sub:  "auth0|noemail",
			Name: "No Email",
		},
	})
	defer server.Close()

	config.SetConfig(&config.Config{
		GoEnv:       "test",
		Auth0Domain: server.URL,
	})

	tests := []struct {
		name           string
		auth0ID        string
		role           string
		accessToken    string
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Creates a buyer account by default",
			auth0ID:        "auth0|newcustomer",
			role:           "",
			accessToken:    "customer-token",
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "newcustomer@example.com", data["email"])
				assert.Equal(t, "New Customer", data["name"])
				assert.Equal(t, models.RoleUser, data["role"])
			},
		},
		{
			name:           "Creates a business account from the role claim",
			auth0ID:        "auth0|newowner",
			role:           models.RoleCompany,
			accessToken:    "owner-token",
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, models.RoleCompany, data["role"])
			},
		},
		{
			name:           "Duplicate signup conflicts",
			auth0ID:        "auth0|newcustomer",
			role:           "",
			accessToken:    "customer-token",
			expectedStatus: http.StatusConflict,
			expectedError:  "USER_EXISTS",
		},
		{
			name:           "Fail when Auth0 returns no email",
			auth0ID:        "auth0|noemail",
			role:           "",
			accessToken:    "no-email-token",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MISSING_EMAIL",
		},
		{
			name:           "Fail with invalid access token",
			auth0ID:        "auth0|whoever",
			role:           "",
			accessToken:    "bogus-token",
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "AUTH0_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/users",
				mockAuthMiddleware(tt.auth0ID, tt.role, tt.accessToken),
				CreateUser,
			)

			req, _ := http.NewRequest(http.MethodPost, "/users", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			} else if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	user := createTestUser(t, db, "auth0|customer", "Customer User", "customer@example.com", models.RoleUser)

	t.Run("Returns the caller's profile", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/users/me",
			mockAuthMiddleware(user.Auth0ID, models.RoleUser, "mock-token"),
			GetMyProfile,
		)

		req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, user.Email, data["email"])
	})

	t.Run("Fail without a stored profile", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/users/me",
			mockAuthMiddleware("auth0|unknown", models.RoleUser, "mock-token"),
			GetMyProfile,
		)

		req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateMyProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	user := createTestUser(t, db, "auth0|customer", "Customer User", "customer@example.com", models.RoleUser)
	createTestUser(t, db, "auth0|taken", "Taken User", "taken@example.com", models.RoleUser)

	update := func(body map[string]interface{}) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.PUT("/users/me",
			mockAuthMiddleware(user.Auth0ID, models.RoleUser, "mock-token"),
			UpdateMyProfile,
		)

		payload, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPut, "/users/me", bytes.NewBuffer(payload))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Updates the name", func(t *testing.T) {
		w := update(map[string]interface{}{"name": "Renamed User"})
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Renamed User", response["data"].(map[string]interface{})["name"])
	})

	t.Run("Fail when taking another account's email", func(t *testing.T) {
		w := update(map[string]interface{}{"email": "taken@example.com"})
		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "EMAIL_EXISTS", response["error"].(map[string]interface{})["code"])
	})

	t.Run("Fail with malformed email", func(t *testing.T) {
		w := update(map[string]interface{}{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
