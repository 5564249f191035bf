package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/creator-storefront/internal/config"
	"github.com/iliyamo/creator-storefront/internal/secureid"
)

// Validation runs before any persistence call, so a handler with nil
// repositories exercises every rejection path.
func newOwnerHandler(t *testing.T) *OwnerHandler {
	t.Helper()
	mapper, err := secureid.NewMapper("owner-test-key")
	require.NoError(t, err)
	return NewOwnerHandler(config.Config{}, nil, nil, mapper)
}

func ownerRequest(t *testing.T, h echo.HandlerFunc, body string, creatorID any) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/me/content", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if creatorID != nil {
		c.Set("user_id", creatorID)
	}
	assert.NoError(t, h(c))
	return rec
}

func TestOwnerCreateContent_RequiresSession(t *testing.T) {
	h := newOwnerHandler(t)
	rec := ownerRequest(t, h.CreateContent, `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnerCreateContent_RejectsBadInput(t *testing.T) {
	h := newOwnerHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid id", `{"id":"00nope","title":"x","source":"LOCAL"}`},
		{"missing title", `{"id":"12345","title":"  ","source":"LOCAL"}`},
		{"unknown source", `{"id":"12345","title":"x","source":"FTP"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ownerRequest(t, h.CreateContent, tc.body, uint64(7))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestOwnerPurchaseStats_RejectsBadAlias(t *testing.T) {
	h := newOwnerHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me/content/short/purchases", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	c.SetParamNames("sid")
	c.SetParamValues("short")

	assert.NoError(t, h.PurchaseStats(c))
	// Shape failure is indistinguishable from missing content and never
	// reaches the database.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
