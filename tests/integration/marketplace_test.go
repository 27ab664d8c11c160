//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MarketplaceTestSuite exercises search, recommendations and reviews
// against whatever catalog the target database holds
type MarketplaceTestSuite struct {
	suite.Suite
	client    *http.Client
	userToken string
}

func (suite *MarketplaceTestSuite) SetupSuite() {
	suite.client = &http.Client{Timeout: 30 * time.Second}
	_, suite.userToken = signUpAndLogin(suite.T(), suite.client, "marketplace")
}

func (suite *MarketplaceTestSuite) do(method, path string, body []byte, auth bool) *http.Response {
	req, _ := http.NewRequest(method, APIBaseURL+path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+suite.userToken)
	}
	resp, err := suite.client.Do(req)
	require.NoError(suite.T(), err)
	return resp
}

type searchResponse struct {
	Agents []struct {
		ID             string   `json:"id"`
		Price          float64  `json:"price"`
		RelevanceScore *float64 `json:"relevance_score"`
	} `json:"agents"`
	Recommendations []map[string]interface{} `json:"recommendations"`
	Trending        []map[string]interface{} `json:"trending"`
	Suggestions     []string                 `json:"suggestions"`
	Pagination      struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func (suite *MarketplaceTestSuite) search(query string, auth bool) (int, *searchResponse) {
	resp := suite.do("GET", "/search"+query, nil, auth)
	defer resp.Body.Close()

	var out searchResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, &out
}

func (suite *MarketplaceTestSuite) TestAnonymousSearch() {
	status, out := suite.search("?sort=price_asc&limit=5", false)
	require.Equal(suite.T(), http.StatusOK, status)

	assert.Equal(suite.T(), 1, out.Pagination.Page)
	assert.Equal(suite.T(), 5, out.Pagination.Limit)
	assert.LessOrEqual(suite.T(), len(out.Agents), 5)
	assert.Empty(suite.T(), out.Recommendations)
	assert.LessOrEqual(suite.T(), len(out.Trending), 5)

	for i := 1; i < len(out.Agents); i++ {
		assert.LessOrEqual(suite.T(), out.Agents[i-1].Price, out.Agents[i].Price)
	}
}

func (suite *MarketplaceTestSuite) TestRelevanceSearch() {
	status, out := suite.search("?q=support&sort=relevance", true)
	require.Equal(suite.T(), http.StatusOK, status)

	for _, a := range out.Agents {
		assert.NotNil(suite.T(), a.RelevanceScore)
	}
	assert.LessOrEqual(suite.T(), len(out.Suggestions), 5)
}

func (suite *MarketplaceTestSuite) TestSearchValidation() {
	status, _ := suite.search("?min_price=50&max_price=10", false)
	assert.Equal(suite.T(), http.StatusBadRequest, status)

	status, _ = suite.search("?min_rating=9", false)
	assert.Equal(suite.T(), http.StatusBadRequest, status)
}

func (suite *MarketplaceTestSuite) TestRecommendationsForNewUser() {
	resp := suite.do("GET", "/recommendations?limit=5", nil, true)
	defer resp.Body.Close()
	require.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var out struct {
		Recommendations []struct {
			Type string `json:"type"`
		} `json:"recommendations"`
		Count int `json:"count"`
	}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&out))
	assert.LessOrEqual(suite.T(), out.Count, 5)

	// No purchases or ratings yet, so only trending results
	for _, r := range out.Recommendations {
		assert.Equal(suite.T(), "trending", r.Type)
	}
}

func (suite *MarketplaceTestSuite) TestRecommendationsRequireAuth() {
	resp := suite.do("GET", "/recommendations", nil, false)
	defer resp.Body.Close()
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (suite *MarketplaceTestSuite) TestReviewUnknownAgent() {
	body, _ := json.Marshal(map[string]interface{}{"rating": 4})
	resp := suite.do("POST", "/reviews/agents/"+uuid.New().String(), body, true)
	defer resp.Body.Close()
	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func (suite *MarketplaceTestSuite) TestReviewLifecycle() {
	_, out := suite.search("?limit=1", false)
	if len(out.Agents) == 0 {
		suite.T().Skip("catalog is empty")
	}
	path := "/reviews/agents/" + out.Agents[0].ID

	body, _ := json.Marshal(map[string]interface{}{"rating": 5, "comment": "works well"})
	resp := suite.do("POST", path, body, true)
	resp.Body.Close()
	require.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	resp = suite.do("GET", path, nil, true)
	resp.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	resp = suite.do("DELETE", path, nil, true)
	resp.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
}
