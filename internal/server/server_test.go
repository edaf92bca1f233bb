package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/threephase/internal/config"
	"github.com/banshee-data/threephase/internal/monitoring"
	"github.com/banshee-data/threephase/internal/units"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(func(string, ...interface{}) {})
	t.Cleanup(func() { monitoring.Logf = original })

	base := config.DefaultWaveformConfig()
	n := 400
	base.SampleCount = &n
	return NewServer(Config{Address: "127.0.0.1:0", Base: base})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestFigureFormats(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		path        string
		contentType string
		check       func(t *testing.T, body []byte)
	}{
		{"/figure.png", "image/png", func(t *testing.T, body []byte) {
			assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")), "missing PNG signature")
		}},
		{"/figure.svg", "image/svg+xml", func(t *testing.T, body []byte) {
			assert.Contains(t, string(body), "<svg")
		}},
		{"/figure.html", "text/html; charset=utf-8", func(t *testing.T, body []byte) {
			assert.Contains(t, string(body), "echarts")
			assert.Contains(t, string(body), "Phase A Voltage")
		}},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := get(t, s, tc.path+"?m=0.5&sectors=3")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tc.contentType, rec.Header().Get("Content-Type"))
			tc.check(t, rec.Body.Bytes())
		})
	}
}

func TestInvalidQuery(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric m", "m=abc"},
		{"NaN m", "m=NaN"},
		{"infinite offset", "offset_deg=Inf"},
		{"zero sectors", "sectors=0"},
		{"negative periods", "periods=-1"},
		{"fractional sectors", "sectors=1.5"},
		{"too many sectors", "sectors=3000000"},
		{"too many periods", "periods=100000"},
		{"unknown unit", "unit=grad"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, s, "/figure.svg?"+tc.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestSectorsJSONRejectsOversizedCount(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/sectors.json?sectors=3000000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Less(t, rec.Body.Len(), 1024)

	rec = get(t, s, "/sectors.json?sectors="+strconv.Itoa(config.MaxSectorCount))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyQueryLeavesBaseUntouched(t *testing.T) {
	base := config.DefaultWaveformConfig()
	q := url.Values{"m": {"0.25"}, "sectors": {"12"}, "unit": {units.DEG}}

	cfg, err := applyQuery(base, q)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.GetModulationIndex())
	assert.Equal(t, 12, cfg.GetSectorCount())
	assert.Equal(t, units.DEG, cfg.GetXUnit())

	assert.Equal(t, 0.85, base.GetModulationIndex())
	assert.Equal(t, 6, base.GetSectorCount())
	assert.Equal(t, units.RAD, base.GetXUnit())
}

func TestSectorsJSON(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/sectors.json?sectors=3&periods=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Span    float64      `json:"span"`
		Sectors []sectorJSON `json:"sectors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.InDelta(t, 2*math.Pi, resp.Span, 1e-12)
	require.Len(t, resp.Sectors, 3)
	assert.Equal(t, "Sector I", resp.Sectors[0].Label)
	assert.Equal(t, "#febf96", strings.ToLower(resp.Sectors[0].Color))
	assert.Equal(t, resp.Span, resp.Sectors[2].End)
}

func TestSeriesCSV(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/series.csv?m=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 401)
	assert.Equal(t, "va", rows[0][3])
	for _, row := range rows[1:] {
		va, err := strconv.ParseFloat(row[3], 64)
		require.NoError(t, err)
		assert.Zero(t, va)
	}
}

func TestRootRedirectsToHTML(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/?m=0.4")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/figure.html?m=0.4", rec.Header().Get("Location"))
}

func TestHealthAndMethods(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])

	post := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/figure.png", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, post.Code)

	missing := get(t, s, "/nope")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestNilBaseUsesDefaults(t *testing.T) {
	s := NewServer(Config{})
	assert.Equal(t, 0.85, s.base.GetModulationIndex())
}
