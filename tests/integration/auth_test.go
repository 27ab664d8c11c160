//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthTestSuite struct {
	suite.Suite
	client    *http.Client
	userEmail string
	userToken string
}

func (suite *AuthTestSuite) SetupSuite() {
	suite.client = &http.Client{Timeout: 30 * time.Second}
	suite.userEmail, suite.userToken = signUpAndLogin(suite.T(), suite.client, "auth")
}

func (suite *AuthTestSuite) authorized(method, path string, body []byte) *http.Response {
	req, _ := http.NewRequest(method, APIBaseURL+path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.userToken)
	resp, err := suite.client.Do(req)
	require.NoError(suite.T(), err)
	return resp
}

func (suite *AuthTestSuite) TestDuplicateSignup() {
	body, _ := json.Marshal(map[string]string{"email": suite.userEmail, "password": "testpassword123"})
	resp, err := suite.client.Post(APIBaseURL+"/signup", "application/json", bytes.NewBuffer(body))
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusConflict, resp.StatusCode)
}

func (suite *AuthTestSuite) TestInvalidLogin() {
	body, _ := json.Marshal(map[string]string{"email": "nonexistent@example.com", "password": "wrongpassword"})
	resp, err := suite.client.Post(APIBaseURL+"/login", "application/json", bytes.NewBuffer(body))
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (suite *AuthTestSuite) TestUserMe() {
	resp := suite.authorized("GET", "/users/me", nil)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var user map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(suite.T(), suite.userEmail, user["email"])
	assert.NotEmpty(suite.T(), user["preferences"])
}

func (suite *AuthTestSuite) TestUpdatePreferences() {
	body, _ := json.Marshal(map[string]interface{}{
		"categories": []string{"customer-support"},
		"priceRange": map[string]float64{"min": 0, "max": 100},
	})
	resp := suite.authorized("PUT", "/users/me/preferences", body)
	defer resp.Body.Close()
	require.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var user struct {
		Preferences struct {
			Categories []string `json:"categories"`
		} `json:"preferences"`
	}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(suite.T(), []string{"customer-support"}, user.Preferences.Categories)

	bad, _ := json.Marshal(map[string]interface{}{"priceRange": map[string]float64{"min": 500, "max": 5}})
	resp2 := suite.authorized("PUT", "/users/me/preferences", bad)
	defer resp2.Body.Close()
	assert.Equal(suite.T(), http.StatusBadRequest, resp2.StatusCode)
}

func (suite *AuthTestSuite) TestUnauthorizedAccess() {
	resp, err := suite.client.Get(APIBaseURL + "/users/me")
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (suite *AuthTestSuite) TestInvalidToken() {
	req, _ := http.NewRequest("GET", APIBaseURL+"/users/me", nil)
	req.Header.Set("Authorization", "Bearer invalid_token")

	resp, err := suite.client.Do(req)
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}
