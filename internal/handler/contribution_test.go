package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmdb/contribution-service/internal/model"
	"github.com/filmdb/contribution-service/internal/repository"
	"github.com/filmdb/contribution-service/internal/service"
)

const (
	testMovieID   = uint64(1)
	submitterID   = uint64(10)
	verifierAllID = uint64(20)
)

type handlerEnv struct {
	store         *repository.MemoryStore
	contributions *ContributionHandler
	verifications *VerifyHandler
	queries       *QueryHandler
}

func newHandlerEnv() *handlerEnv {
	store := repository.NewMemoryStore()
	store.SeedMovie(model.Movie{ID: testMovieID, Title: "Heat", Status: model.StatusAccepted})
	store.SeedUser(model.User{ID: submitterID, Email: "sub@example.com", Username: "sub", Enabled: true})
	store.SeedUser(model.User{
		ID: verifierAllID, Email: "mod@example.com", Username: "mod", Enabled: true,
		Permissions: model.PermissionSet{model.PermissionAll},
	})
	return &handlerEnv{
		store:         store,
		contributions: NewContributionHandler(service.NewContributionService(store, nil)),
		verifications: NewVerifyHandler(service.NewVerificationService(store, nil)),
		queries:       NewQueryHandler(service.NewQueryService(store)),
	}
}

// newJSONContext builds an echo context carrying a JSON body and an
// authenticated user, the way the JWT middleware would leave it.
func newJSONContext(t *testing.T, method, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateContributionEndpoint(t *testing.T) {
	env := newHandlerEnv()

	c, rec := newJSONContext(t, http.MethodPost,
		`{"to_add":[{"title":"Film1","country":"POLAND"}],"sources":["https://example.com"],"comment":"from press kit"}`,
		submitterID)
	c.SetPath("/v1/movies/:id/contributions/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("1", "other-title")

	require.NoError(t, env.contributions.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "OTHER_TITLE", body["field"])
	assert.Equal(t, "WAITING", body["status"])
	assert.NotZero(t, body["id"])
}

func TestCreateContributionEndpointErrors(t *testing.T) {
	env := newHandlerEnv()

	// Unknown field kind.
	c, rec := newJSONContext(t, http.MethodPost, `{"to_add":[{}]}`, submitterID)
	c.SetPath("/v1/movies/:id/contributions/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("1", "director")
	require.NoError(t, env.contributions.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Payload that does not decode for the kind.
	c, rec = newJSONContext(t, http.MethodPost, `{"to_add":["not an object"]}`, submitterID)
	c.SetPath("/v1/movies/:id/contributions/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("1", "genre")
	require.NoError(t, env.contributions.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty batch.
	c, rec = newJSONContext(t, http.MethodPost, `{}`, submitterID)
	c.SetPath("/v1/movies/:id/contributions/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("1", "genre")
	require.NoError(t, env.contributions.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No authenticated user.
	c, rec = newJSONContext(t, http.MethodPost, `{"to_add":[{"genre":"DRAMA"}]}`, 0)
	c.SetPath("/v1/movies/:id/contributions/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("1", "genre")
	require.NoError(t, env.contributions.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown movie.
	c, rec = newJSONContext(t, http.MethodPost, `{"to_add":[{"genre":"DRAMA"}]}`, submitterID)
	c.SetPath("/v1/movies/:id/contributions/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("999", "genre")
	require.NoError(t, env.contributions.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateContributionDuplicateMapsToConflict(t *testing.T) {
	env := newHandlerEnv()
	env.store.SeedRecord(model.FieldRecord{
		MovieID: testMovieID, SubmitterID: submitterID, Kind: model.FieldBoxOffice,
		Status: model.StatusAccepted, Payload: model.BoxOffice{AmountCents: 100000, Country: "USA"},
	})

	c, rec := newJSONContext(t, http.MethodPost,
		`{"to_add":[{"amount_cents":100000,"country":"usa"}]}`, submitterID)
	c.SetPath("/v1/movies/:id/contributions/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("1", "box-office")
	require.NoError(t, env.contributions.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateContributionEndpoint(t *testing.T) {
	env := newHandlerEnv()

	c, rec := newJSONContext(t, http.MethodPost, `{"to_add":[{"genre":"DRAMA"}]}`, submitterID)
	c.SetPath("/v1/movies/:id/contributions/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("1", "genre")
	require.NoError(t, env.contributions.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := uint64(decodeBody(t, rec)["id"].(float64))

	c, rec = newJSONContext(t, http.MethodPut, `{"to_add":[{"genre":"CRIME"}]}`, submitterID)
	c.SetPath("/v1/contributions/:field/:id")
	c.SetParamNames("field", "id")
	c.SetParamValues("genre", "1")
	require.NoError(t, env.contributions.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	detail, err := service.NewQueryService(env.store).Contribution(c.Request().Context(), model.FieldGenre, id)
	require.NoError(t, err)
	assert.Len(t, detail.Added, 2)
}

func TestVerifyEndpoint(t *testing.T) {
	env := newHandlerEnv()

	c, rec := newJSONContext(t, http.MethodPost, `{"to_add":[{"genre":"DRAMA"}]}`, submitterID)
	c.SetPath("/v1/movies/:id/contributions/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("1", "genre")
	require.NoError(t, env.contributions.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Submitter lacks the permission.
	c, rec = newJSONContext(t, http.MethodPut, `{"decision":"ACCEPT"}`, submitterID)
	c.SetPath("/v1/contributions/:id/verify")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.verifications.Resolve(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Invalid decision.
	c, rec = newJSONContext(t, http.MethodPut, `{"decision":"MAYBE"}`, verifierAllID)
	c.SetPath("/v1/contributions/:id/verify")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.verifications.Resolve(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Accept.
	c, rec = newJSONContext(t, http.MethodPut, `{"decision":"ACCEPT","comment":"ok"}`, verifierAllID)
	c.SetPath("/v1/contributions/:id/verify")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.verifications.Resolve(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ACCEPTED", decodeBody(t, rec)["status"])

	// Already resolved.
	c, rec = newJSONContext(t, http.MethodPut, `{"decision":"REJECT"}`, verifierAllID)
	c.SetPath("/v1/contributions/:id/verify")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.verifications.Resolve(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecordsEndpoint(t *testing.T) {
	env := newHandlerEnv()
	env.store.SeedRecord(model.FieldRecord{
		MovieID: testMovieID, SubmitterID: submitterID, Kind: model.FieldGenre,
		Status: model.StatusAccepted, Payload: model.Genre{Genre: "DRAMA"},
	})
	env.store.SeedRecord(model.FieldRecord{
		MovieID: testMovieID, SubmitterID: submitterID, Kind: model.FieldGenre,
		Status: model.StatusWaiting, Payload: model.Genre{Genre: "CRIME"},
	})

	c, rec := newJSONContext(t, http.MethodGet, "", 0)
	c.SetPath("/v1/movies/:id/records/:field")
	c.SetParamNames("id", "field")
	c.SetParamValues("1", "genre")
	require.NoError(t, env.queries.GetRecords(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	records := body["records"].([]any)
	require.Len(t, records, 1, "pending data must stay hidden")
	payload := records[0].(map[string]any)["payload"].(map[string]any)
	assert.Equal(t, "DRAMA", payload["genre"])
}

func TestSearchEndpoint(t *testing.T) {
	env := newHandlerEnv()

	for _, g := range []string{`{"to_add":[{"genre":"DRAMA"}]}`, `{"to_add":[{"genre":"CRIME"}]}`} {
		c, rec := newJSONContext(t, http.MethodPost, g, submitterID)
		c.SetPath("/v1/movies/:id/contributions/:field")
		c.SetParamNames("id", "field")
		c.SetParamValues("1", "genre")
		require.NoError(t, env.contributions.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/contributions?field=genre&status=WAITING&page=1&per_page=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", submitterID)
	require.NoError(t, env.queries.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["total"])
	assert.Len(t, body["items"].([]any), 2)

	// Bad status value.
	req = httptest.NewRequest(http.MethodGet, "/v1/contributions?status=PENDING", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	require.NoError(t, env.queries.Search(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
