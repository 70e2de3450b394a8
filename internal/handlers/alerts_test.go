package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bannerworks/alertbanner/internal/content"
	"github.com/bannerworks/alertbanner/internal/database/testutil"
	"github.com/bannerworks/alertbanner/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func newAlertRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(), testutil.WithSeedData())
	policy := content.WorkflowPolicy{TenantDefaultLanguage: "en-us"}
	notifier := services.NewNotifierService(nil, nil, nil)

	handler, err := NewAlertHandler(db, policy, notifier)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/alerts", handler.List)
	r.POST("/api/alerts", handler.Create)
	r.GET("/api/alerts/:id", handler.Get)
	r.PUT("/api/alerts/:id", handler.Update)
	r.DELETE("/api/alerts/:id", handler.Delete)
	r.POST("/api/alerts/:id/languages", handler.AddLanguage)
	r.DELETE("/api/alerts/:id/languages/:code", handler.RemoveLanguage)
	r.POST("/api/drafts", handler.SaveDraft)
	r.GET("/api/drafts", handler.ListDrafts)
	r.GET("/api/templates", handler.ListTemplates)
	r.POST("/api/templates/:id/instantiate", handler.Instantiate)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func validAlertBody() map[string]any {
	return map[string]any{
		"title":         "Planned maintenance window",
		"description":   "Systems will be unavailable Saturday night.",
		"alertTypeName": "Info",
		"priority":      "Medium",
		"targetSites":   []string{"site1"},
	}
}

func TestAlertHandlerCreateAndFetch(t *testing.T) {
	r := newAlertRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/alerts", validAlertBody())
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	w, env = doJSON(t, r, http.MethodGet, "/api/alerts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	w, env = doJSON(t, r, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	require.Equal(t, 1, env.Meta.Total)
}

func TestAlertHandlerCreateReturnsFieldErrors(t *testing.T) {
	r := newAlertRouter(t)

	body := validAlertBody()
	body["title"] = "Hi"
	delete(body, "targetSites")

	w, env := doJSON(t, r, http.MethodPost, "/api/alerts", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	require.Contains(t, env.Error.Fields, "title")
	require.Contains(t, env.Error.Fields, "targetSites")
}

func TestAlertHandlerRejectsUnprovisionedLocale(t *testing.T) {
	r := newAlertRouter(t)

	body := validAlertBody()
	delete(body, "title")
	delete(body, "description")
	body["useMultiLanguage"] = true
	body["languageContent"] = []map[string]any{
		{"language": "en-us", "title": "Hello", "description": "A greeting banner", "availableForAll": true},
		{"language": "es-es", "title": "Hola", "description": "Un aviso de saludo"},
	}

	w, env := doJSON(t, r, http.MethodPost, "/api/alerts", body)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "alert.language_not_provisioned", env.Error.Code)
}

func TestAlertHandlerLanguageVariants(t *testing.T) {
	r := newAlertRouter(t)

	body := validAlertBody()
	delete(body, "title")
	delete(body, "description")
	body["useMultiLanguage"] = true
	body["languageContent"] = []map[string]any{
		{"language": "en-us", "title": "Hello", "description": "A greeting banner", "availableForAll": true},
	}

	w, env := doJSON(t, r, http.MethodPost, "/api/alerts", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// A locale that already has a variant conflicts.
	w, env = doJSON(t, r, http.MethodPost, "/api/alerts/"+created.ID+"/languages", map[string]any{"language": "en-us"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "alert.language_exists", env.Error.Code)

	// Locales without a backing column cannot be added.
	w, env = doJSON(t, r, http.MethodPost, "/api/alerts/"+created.ID+"/languages", map[string]any{"language": "fr-fr"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "alert.language_not_provisioned", env.Error.Code)

	w, env = doJSON(t, r, http.MethodDelete, "/api/alerts/"+created.ID+"/languages/en-us", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var removed struct {
		NextLanguage string `json:"nextLanguage"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &removed))
	require.Empty(t, removed.NextLanguage, "no variants remain to select")

	w, env = doJSON(t, r, http.MethodDelete, "/api/alerts/"+created.ID+"/languages/de-de", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAlertHandlerGetUnknownIDReturns404(t *testing.T) {
	r := newAlertRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/alerts/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAlertHandlerDraftLifecycle(t *testing.T) {
	r := newAlertRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/drafts", map[string]any{
		"title":         "Half-finished announcement",
		"alertTypeName": "Info",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var draft struct {
		ID          string `json:"id"`
		ContentType string `json:"contentType"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	require.Equal(t, "Draft", draft.ContentType)

	w, env = doJSON(t, r, http.MethodGet, "/api/drafts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var drafts []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &drafts))
	require.Len(t, drafts, 1)
}

func TestAlertHandlerTemplateInstantiate(t *testing.T) {
	r := newAlertRouter(t)

	body := validAlertBody()
	body["title"] = "Reusable outage notice"
	body["contentType"] = "Template"

	w, env := doJSON(t, r, http.MethodPost, "/api/alerts", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, env = doJSON(t, r, http.MethodPost, "/api/templates/"+created.ID+"/instantiate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rec struct {
		ID          string `json:"id,omitempty"`
		ContentType string `json:"contentType"`
		Title       string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	require.Empty(t, rec.ID)
	require.Equal(t, "Alert", rec.ContentType)
	require.Equal(t, "Reusable outage notice", rec.Title)
}

func TestAlertHandlerDelete(t *testing.T) {
	r := newAlertRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/alerts", validAlertBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ = doJSON(t, r, http.MethodDelete, "/api/alerts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/alerts/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
