package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quidz-backend/internal/http/response"
)

func testContext(t *testing.T, req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	return c, rec
}

func envelopeCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestQueryPeriod(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		wantOK   bool
		wantNil  bool
		wantCode string
	}{
		{name: "absent", query: "", wantOK: true, wantNil: true},
		{name: "valid", query: "?from=2026-03-01&to=2026-03-31", wantOK: true},
		{name: "single day", query: "?from=2026-03-01&to=2026-03-01", wantOK: true},
		{name: "inverted", query: "?from=2026-03-31&to=2026-03-01", wantCode: "invalid_period"},
		{name: "half open", query: "?from=2026-03-01", wantCode: "invalid_date"},
		{name: "bad format", query: "?from=01.03.2026&to=2026-03-31", wantCode: "invalid_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := testContext(t, httptest.NewRequest(http.MethodGet, "/x"+tc.query, nil))
			p, ok := queryPeriod(c)
			require.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				require.Equal(t, http.StatusBadRequest, rec.Code)
				require.Equal(t, tc.wantCode, envelopeCode(t, rec))
				return
			}
			require.Equal(t, tc.wantNil, p == nil)
		})
	}
}

func TestPathIDAndPaging(t *testing.T) {
	c, rec := testContext(t, httptest.NewRequest(http.MethodGet, "/x?limit=10&offset=-1", nil))
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	_, ok := pathID(c, "id")
	require.False(t, ok)
	require.Equal(t, "invalid_id", envelopeCode(t, rec))

	c, rec = testContext(t, httptest.NewRequest(http.MethodGet, "/x?limit=10&offset=-1", nil))
	_, _, ok = queryPage(c)
	require.False(t, ok)
	require.Equal(t, "invalid_query", envelopeCode(t, rec))

	c, _ = testContext(t, httptest.NewRequest(http.MethodGet, "/x?limit=10&offset=20", nil))
	limit, offset, ok := queryPage(c)
	require.True(t, ok)
	require.Equal(t, 10, limit)
	require.Equal(t, 20, offset)
}

func TestQueryTimeAcceptsDayOrInstant(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c, _ := testContext(t, httptest.NewRequest(http.MethodGet, "/x", nil))
	got, ok := queryTime(c, "from", fallback)
	require.True(t, ok)
	require.Equal(t, fallback, got)

	c, _ = testContext(t, httptest.NewRequest(http.MethodGet, "/x?from=2026-05-04", nil))
	got, ok = queryTime(c, "from", fallback)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), got)

	c, _ = testContext(t, httptest.NewRequest(http.MethodGet, "/x?from=2026-05-04T10:00:00%2B02:00", nil))
	got, ok = queryTime(c, "from", fallback)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC), got)

	c, rec := testContext(t, httptest.NewRequest(http.MethodGet, "/x?from=gestern", nil))
	_, ok = queryTime(c, "from", fallback)
	require.False(t, ok)
	require.Equal(t, "invalid_date", envelopeCode(t, rec))
}

func TestFormUpload(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "zeugnis.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/x", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	c, _ := testContext(t, req)

	up, closeFn, ok := formUpload(c, "file")
	require.True(t, ok)
	defer closeFn()
	require.Equal(t, "zeugnis.pdf", up.Filename)
	require.EqualValues(t, 8, up.Size)
	raw, err := io.ReadAll(up.Body)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(raw))

	c, rec := testContext(t, httptest.NewRequest(http.MethodPost, "/x", nil))
	_, _, ok = formUpload(c, "file")
	require.False(t, ok)
	require.Equal(t, "missing_file", envelopeCode(t, rec))
}
