package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/creator-storefront/internal/engagement"
	"github.com/iliyamo/creator-storefront/internal/model"
)

type fakeEngagementSvc struct {
	counters model.EngagementCounters
	err      error
}

func (f *fakeEngagementSvc) Fetch(context.Context, string, string) (model.EngagementCounters, error) {
	return f.counters, f.err
}
func (f *fakeEngagementSvc) SetLike(context.Context, string, string, bool) (model.EngagementCounters, error) {
	return f.counters, f.err
}
func (f *fakeEngagementSvc) RegisterShare(context.Context, string, string) (model.EngagementCounters, error) {
	return f.counters, f.err
}
func (f *fakeEngagementSvc) RegisterView(context.Context, string, string) (model.EngagementCounters, error) {
	return f.counters, f.err
}

func engagementContext(t *testing.T, jsonBody, kind, id string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(jsonBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind", "id")
	c.SetParamValues(kind, id)
	return c, rec
}

func TestEngagementLike_Reconciled(t *testing.T) {
	svc := &fakeEngagementSvc{counters: model.EngagementCounters{Likes: 10, ViewerLiked: true}}
	h := NewEngagementHandler(&engagement.Reconciler{Svc: svc})

	c, rec := engagementContext(t, `{"liked":true,"local":{"likes":9}}`, "content", "48291037465")
	assert.NoError(t, h.Like(c))

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["reconciled"])
	counters := body["counters"].(map[string]any)
	assert.Equal(t, float64(10), counters["likes"])
}

func TestEngagementLike_FailureKeepsOptimisticToggle(t *testing.T) {
	svc := &fakeEngagementSvc{err: errors.New("service down")}
	h := NewEngagementHandler(&engagement.Reconciler{Svc: svc})

	c, rec := engagementContext(t, `{"liked":true,"local":{"likes":9}}`, "content", "48291037465")
	assert.NoError(t, h.Like(c))

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// The toggle stays applied locally; reconciled=false tells the page
	// the authoritative counters have not confirmed it yet.
	assert.Equal(t, false, body["reconciled"])
	counters := body["counters"].(map[string]any)
	assert.Equal(t, float64(10), counters["likes"])
	assert.Equal(t, true, counters["viewer_liked"])
}

func TestEngagementShare_FailureEchoesLocals(t *testing.T) {
	svc := &fakeEngagementSvc{err: errors.New("service down")}
	h := NewEngagementHandler(&engagement.Reconciler{Svc: svc})

	c, rec := engagementContext(t, `{"local":{"shares":4}}`, "content", "48291037465")
	assert.NoError(t, h.Share(c))

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["reconciled"])
	counters := body["counters"].(map[string]any)
	assert.Equal(t, float64(4), counters["shares"])
}

func TestEngagementShare_PublishesEvent(t *testing.T) {
	svc := &fakeEngagementSvc{counters: model.EngagementCounters{Shares: 4}}
	var published []string
	h := NewEngagementHandler(&engagement.Reconciler{
		Svc: svc,
		PublishEvent: func(_ context.Context, action, kind, id string) {
			published = append(published, action+":"+kind+":"+id)
		},
	})

	c, _ := engagementContext(t, `{"local":{}}`, "content", "48291037465")
	assert.NoError(t, h.Share(c))
	assert.Equal(t, []string{"share:content:48291037465"}, published)
}

func TestEngagementUnknownKind(t *testing.T) {
	h := NewEngagementHandler(&engagement.Reconciler{Svc: &fakeEngagementSvc{}})

	c, rec := engagementContext(t, `{}`, "widget", "1")
	assert.NoError(t, h.View(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEngagementCounters_Fetch(t *testing.T) {
	svc := &fakeEngagementSvc{counters: model.EngagementCounters{Likes: 3, Views: 99}}
	h := NewEngagementHandler(&engagement.Reconciler{Svc: svc})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind", "id")
	c.SetParamValues("profile", "ana")
	assert.NoError(t, h.Counters(c))

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	counters := body["counters"].(map[string]any)
	assert.Equal(t, float64(99), counters["views"])
}
