package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/bmkg-mcp-server/internal/adapter/bmkg"
	"github.com/couchcryptid/bmkg-mcp-server/internal/domain"
	"github.com/couchcryptid/bmkg-mcp-server/internal/gazetteer"
	"github.com/couchcryptid/bmkg-mcp-server/internal/observability"
)

const testAttribution = "Sumber: BMKG"

// fakeUpstream serves canned BMKG data and records the arguments it saw.
type fakeUpstream struct {
	quake     domain.Earthquake
	quakes    []domain.Earthquake
	forecast  domain.Forecast
	feed      domain.NowcastFeed
	caps      map[string]domain.CAPAlert
	err       error
	forecasts []string
	langs     []string
	capCalls  []string
}

func (f *fakeUpstream) LatestEarthquake(context.Context) (domain.Earthquake, error) {
	return f.quake, f.err
}

func (f *fakeUpstream) SignificantEarthquakes(context.Context) ([]domain.Earthquake, error) {
	return f.quakes, f.err
}

func (f *fakeUpstream) FeltEarthquakes(context.Context) ([]domain.Earthquake, error) {
	return f.quakes, f.err
}

func (f *fakeUpstream) Forecast(_ context.Context, adm4 string) (domain.Forecast, error) {
	f.forecasts = append(f.forecasts, adm4)
	return f.forecast, f.err
}

func (f *fakeUpstream) Nowcast(_ context.Context, lang string) (domain.NowcastFeed, error) {
	f.langs = append(f.langs, lang)
	return f.feed, f.err
}

func (f *fakeUpstream) AlertDetail(_ context.Context, _ string, code string) (domain.CAPAlert, error) {
	f.capCalls = append(f.capCalls, code)
	a, ok := f.caps[code]
	if !ok {
		return domain.CAPAlert{}, &bmkg.StatusError{Endpoint: "cap", StatusCode: 404}
	}
	return a, nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []domain.ToolCallEvent
	err    error
}

func (f *fakeSink) Publish(_ context.Context, e domain.ToolCallEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func testStore(path string) *gazetteer.Store {
	return gazetteer.NewStore(path, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func newTestServer(up Upstream, sink AuditSink) *Server {
	return NewServer(
		up,
		testStore(filepath.Join("..", "gazetteer", "testdata", "regions.csv")),
		sink,
		Options{
			Attribution:       testAttribution,
			DefaultRegionCode: "31.71.01.1001",
			StaticURL:         "https://static.bmkg.go.id/",
		},
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func call(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	for _, d := range s.Definitions() {
		if d.Tool.Name != name {
			continue
		}
		res, err := d.Handler(context.Background(), mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: name, Arguments: args},
		})
		require.NoError(t, err)
		require.NotNil(t, res)
		return res
	}
	t.Fatalf("tool %q not registered", name)
	return nil
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func decode(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &m))
	return m
}

func some(v string) domain.Opt { return domain.Some(v) }

func sampleQuake() domain.Earthquake {
	return domain.Earthquake{
		Date:      some("18 Okt 2026"),
		Time:      some("09:12:44 WIB"),
		DateTime:  some("2026-10-18T02:12:44+00:00"),
		Latitude:  some("2.15 LS"),
		Longitude: some("126.41 BT"),
		Magnitude: some("5.3"),
		Depth:     some("10 km"),
		Region:    some("Pusat gempa berada di laut"),
		Potential: some("Tidak berpotensi tsunami"),
		Shakemap:  some("20261018091244.mmi.jpg"),
	}
}

func TestDefinitions(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	var names []string
	for _, d := range s.Definitions() {
		names = append(names, d.Tool.Name)
	}
	assert.Equal(t, []string{
		"get_latest_earthquake",
		"get_significant_earthquakes",
		"get_felt_earthquakes",
		"search_location_code",
		"get_villages_in_district",
		"get_weather_forecast",
		"get_weather_alerts",
		"get_weather_alert_detail",
		"search_weather_alerts_by_kecamatan",
	}, names)
}

func TestLatestEarthquake(t *testing.T) {
	s := newTestServer(&fakeUpstream{quake: sampleQuake()}, nil)

	res := call(t, s, "get_latest_earthquake", nil)
	m := decode(t, res)

	assert.Equal(t, "18 Okt 2026 - 09:12:44 WIB", m["waktu"])
	assert.Equal(t, "5.3", m["magnitudo"])
	assert.Equal(t, "2.15 LS, 126.41 BT", m["koordinat"])
	assert.Equal(t, "-", m["dirasakan"])
	assert.Equal(t, "https://static.bmkg.go.id/20261018091244.mmi.jpg", m["shakemap_url"])
	assert.Equal(t, testAttribution, m["sumber"])

	// Fields keep their declared order.
	text := resultText(t, res)
	assert.Less(t, strings.Index(text, `"waktu"`), strings.Index(text, `"magnitudo"`))
	assert.Less(t, strings.Index(text, `"shakemap_url"`), strings.Index(text, `"sumber"`))
	assert.Contains(t, text, "\n  \"waktu\"")
}

func TestLatestEarthquake_Error(t *testing.T) {
	s := newTestServer(&fakeUpstream{err: errors.New("connection refused")}, nil)

	res := call(t, s, "get_latest_earthquake", nil)

	assert.True(t, res.IsError)
	assert.Equal(t, "Gagal mengambil data gempa: connection refused", resultText(t, res))
	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.ToolCalls.WithLabelValues("get_latest_earthquake", domain.OutcomeError)), 0)
}

func TestSignificantAndFeltEarthquakes(t *testing.T) {
	q := sampleQuake()
	q.Felt = some("III Sanana")
	s := newTestServer(&fakeUpstream{quakes: []domain.Earthquake{q, sampleQuake()}}, nil)

	m := decode(t, call(t, s, "get_significant_earthquakes", nil))
	assert.EqualValues(t, 2, m["total"])
	row := m["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "Tidak berpotensi tsunami", row["potensi"])
	assert.Equal(t, "2026-10-18T02:12:44+00:00", row["datetime_utc"])
	assert.NotContains(t, row, "dirasakan")

	m = decode(t, call(t, s, "get_felt_earthquakes", nil))
	rows := m["data"].([]any)
	assert.Equal(t, "III Sanana", rows[0].(map[string]any)["dirasakan"])
	assert.Equal(t, "-", rows[1].(map[string]any)["dirasakan"])
	assert.NotContains(t, rows[0], "potensi")
}

func TestFeltEarthquakes_ErrorPrefix(t *testing.T) {
	s := newTestServer(&fakeUpstream{err: errors.New("boom")}, nil)

	res := call(t, s, "get_felt_earthquakes", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Gagal mengambil data gempa dirasakan: boom", resultText(t, res))

	res = call(t, s, "get_significant_earthquakes", nil)
	assert.Equal(t, "Gagal mengambil data gempa M 5.0+: boom", resultText(t, res))
}

func TestSearchLocationCode(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	m := decode(t, call(t, s, "search_location_code", map[string]any{"location_name": "gambir"}))
	assert.Equal(t, "gambir", m["query"])
	assert.Equal(t, "all", m["admin_level_filter"])
	assert.EqualValues(t, 2, m["total_found"])

	results := m["results"].([]any)
	district := results[0].(map[string]any)
	assert.Equal(t, "31.71.01", district["code"])
	assert.Equal(t, "Kecamatan", district["level"])
	assert.Equal(t, "DKI JAKARTA > KOTA ADM. JAKARTA PUSAT > GAMBIR", district["hierarchy"])
	assert.Equal(t, false, district["ready_for_weather_api"])
	assert.Equal(t, true, results[1].(map[string]any)["ready_for_weather_api"])
}

func TestSearchLocationCode_LevelFilter(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	m := decode(t, call(t, s, "search_location_code", map[string]any{
		"location_name": "Gambir",
		"admin_level":   "desa",
	}))
	assert.Equal(t, "desa", m["admin_level_filter"])
	require.EqualValues(t, 1, m["total_found"])
	assert.Equal(t, "31.71.01.1001", m["results"].([]any)[0].(map[string]any)["code"])
}

func TestSearchLocationCode_NotFound(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	res := call(t, s, "search_location_code", map[string]any{"location_name": "gambr"})
	m := decode(t, res)

	assert.Equal(t, "Tidak ditemukan lokasi dengan nama 'gambr'", m["message"])
	assert.Equal(t, "regions.csv dengan 16 wilayah", m["searched_in"])
	assert.Equal(t, []any{}, m["results"])
	assert.Contains(t, m["did_you_mean"], "GAMBIR")
	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.ToolCalls.WithLabelValues("search_location_code", domain.OutcomeNotFound)), 0)
}

func TestSearchLocationCode_MissingArgument(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	res := call(t, s, "search_location_code", nil)
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(resultText(t, res), "Gagal mencari kode wilayah: "))
}

func TestSearchLocationCode_MissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.csv")
	s := NewServer(&fakeUpstream{}, testStore(path), nil, Options{},
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	m := decode(t, call(t, s, "search_location_code", map[string]any{"location_name": "x"}))
	assert.Equal(t, "File base.csv tidak ditemukan", m["error"])
	assert.Equal(t, path, m["path"])

	m = decode(t, call(t, s, "get_villages_in_district", map[string]any{"district_code": "33.02.07"}))
	assert.Equal(t, "File base.csv tidak ditemukan", m["error"])
	assert.NotContains(t, m, "path")
}

func TestVillagesInDistrict(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	m := decode(t, call(t, s, "get_villages_in_district", map[string]any{"district_code": "33.02.07"}))
	assert.Equal(t, "33.02.07", m["district_code"])
	assert.Equal(t, "SUMPIUH", m["district_name"])
	assert.EqualValues(t, 2, m["total_villages"])

	villages := m["villages"].([]any)
	assert.Equal(t, map[string]any{
		"code":                  "33.02.07.2002",
		"name":                  "KEBOKURA, SUMPIUH",
		"ready_for_weather_api": true,
	}, villages[1])
}

func TestVillagesInDistrict_NoChildren(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	m := decode(t, call(t, s, "get_villages_in_district", map[string]any{"district_code": "33.02.08"}))
	assert.Equal(t, "TAMBAK", m["district_name"])
	assert.EqualValues(t, 0, m["total_villages"])
	assert.Equal(t, []any{}, m["villages"])
}

func TestVillagesInDistrict_NotFound(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	m := decode(t, call(t, s, "get_villages_in_district", map[string]any{"district_code": "99.99.99"}))
	assert.Equal(t, "Kode kecamatan '99.99.99' tidak ditemukan", m["error"])
	assert.Equal(t, "Gunakan search_location_code() untuk menemukan kode yang tepat", m["suggestion"])
}

func sampleForecast() domain.Forecast {
	return domain.Forecast{
		Location: domain.ForecastLocation{
			Province:  some("DKI Jakarta"),
			Regency:   some("Kota Adm. Jakarta Pusat"),
			District:  some("Gambir"),
			Village:   some("Gambir"),
			Latitude:  some("-6.1744"),
			Longitude: some("106.8164"),
			Timezone:  some("Asia/Jakarta"),
		},
		Days: []domain.ForecastDay{
			{Entries: []domain.ForecastEntry{
				{
					LocalTime:     some("2026-10-18 07:00:00"),
					UTCTime:       some("2026-10-18 00:00:00"),
					Temperature:   some("27"),
					Humidity:      some("83"),
					Weather:       some("Berawan"),
					WindSpeed:     some("6.4"),
					WindDirection: some("W"),
					Visibility:    some("> 9 km"),
				},
			}},
			{Entries: []domain.ForecastEntry{
				{LocalTime: some("2026-10-19 19:00:00"), Temperature: some("25")},
				{LocalTime: some("2026-10-19 22:00:00"), CloudCover: some("100")},
			}},
		},
	}
}

func TestWeatherForecast(t *testing.T) {
	up := &fakeUpstream{forecast: sampleForecast()}
	s := newTestServer(up, nil)

	res := call(t, s, "get_weather_forecast", map[string]any{"kode_wilayah": "33.02.07.2001"})
	m := decode(t, res)

	assert.Equal(t, []string{"33.02.07.2001"}, up.forecasts)
	lokasi := m["lokasi"].(map[string]any)
	assert.Equal(t, "Kota Adm. Jakarta Pusat", lokasi["kabkota"])
	assert.Equal(t, "-6.1744, 106.8164", lokasi["koordinat"])

	assert.EqualValues(t, 2, m["total_hari"])
	assert.EqualValues(t, 3, m["total_forecast"])
	assert.Equal(t, forecastNote, m["catatan"])
	assert.Equal(t, testAttribution, m["sumber"])

	days := m["prakiraan"].([]any)
	day := days[0].(map[string]any)
	assert.Equal(t, "2026-10-18", day["tanggal"])
	assert.EqualValues(t, 1, day["jumlah_forecast"])

	step := day["forecasts"].([]any)[0].(map[string]any)
	assert.Equal(t, "27°C", step["suhu"])
	assert.Equal(t, "83%", step["kelembaban"])
	assert.Equal(t, "6.4 km/j", step["kecepatan_angin"])
	assert.Equal(t, "0%", step["tutupan_awan"])
	assert.Equal(t, "-", step["cuaca_en"])

	later := days[1].(map[string]any)["forecasts"].([]any)[1].(map[string]any)
	assert.Equal(t, "100%", later["tutupan_awan"])
	assert.Equal(t, "-", later["suhu"])

	// No HTML escaping of '>' and no ASCII escaping of the degree sign.
	text := resultText(t, res)
	assert.Contains(t, text, `"> 9 km"`)
	assert.Contains(t, text, "27°C")
}

func TestWeatherForecast_DefaultRegion(t *testing.T) {
	up := &fakeUpstream{forecast: sampleForecast()}
	s := newTestServer(up, nil)

	call(t, s, "get_weather_forecast", nil)
	assert.Equal(t, []string{"31.71.01.1001"}, up.forecasts)
}

func TestWeatherForecast_RejectsNonVillageCode(t *testing.T) {
	up := &fakeUpstream{}
	s := newTestServer(up, nil)

	res := call(t, s, "get_weather_forecast", map[string]any{"kode_wilayah": "31.71"})
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(resultText(t, res), "Gagal mengambil data cuaca."))
	assert.Empty(t, up.forecasts)
}

func TestWeatherForecast_UpstreamStatus(t *testing.T) {
	s := newTestServer(&fakeUpstream{err: &bmkg.StatusError{Endpoint: "prakiraan-cuaca", StatusCode: 404}}, nil)

	res := call(t, s, "get_weather_forecast", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Gagal mengambil data cuaca. Cek kode wilayah.", resultText(t, res))
}

func TestWeatherForecast_DecodeError(t *testing.T) {
	s := newTestServer(&fakeUpstream{err: errors.New("decode forecast: response has no lokasi")}, nil)

	res := call(t, s, "get_weather_forecast", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: decode forecast: response has no lokasi", resultText(t, res))
}

func sampleFeed() domain.NowcastFeed {
	return domain.NowcastFeed{
		LastBuildDate: some("Sat, 18 Oct 2026 08:00:00 +0700"),
		Items: []domain.NowcastItem{
			{
				Title: some("Hujan Lebat di Jawa Tengah"),
				Link:  some("https://www.bmkg.go.id/alerts/nowcast/id/CJH1_alert.xml"),
			},
			{
				Title: some("Hujan Sedang di DKI Jakarta"),
				Link:  some("https://www.bmkg.go.id/alerts/nowcast/id/JKT1_alert.xml"),
			},
			{
				Title: some("Ringkasan"),
				Link:  some("https://www.bmkg.go.id/alerts/nowcast/id"),
			},
			{
				Title: some("Hujan di Banyumas"),
				Link:  some("https://www.bmkg.go.id/alerts/nowcast/id/GONE1_alert.xml"),
			},
		},
	}
}

func sampleCAP() domain.CAPAlert {
	return domain.CAPAlert{
		Identifier: some("CJH1"),
		Status:     some("Actual"),
		Info: domain.CAPInfo{
			Event:    some("Hujan Lebat disertai Petir"),
			Headline: some("Peringatan Dini Cuaca Jawa Tengah"),
			Severity: some("Moderate"),
			Areas: []domain.CAPArea{
				{Description: some("Sumpiuh, Kab. Banyumas"), Polygon: some("0,0 0,2 2,2 2,0 0,0")},
				{Description: some("Tambak, Kab. Banyumas")},
			},
		},
	}
}

func TestWeatherAlerts(t *testing.T) {
	up := &fakeUpstream{feed: sampleFeed()}
	s := newTestServer(up, nil)

	m := decode(t, call(t, s, "get_weather_alerts", map[string]any{"language": "fr"}))

	assert.Equal(t, []string{"id"}, up.langs)
	meta := m["metadata"].(map[string]any)
	assert.Equal(t, defaultAlertsTitle, meta["title"])
	assert.Equal(t, "id", meta["language"])
	assert.Equal(t, "Sat, 18 Oct 2026 08:00:00 +0700", meta["last_build_date"])
	assert.EqualValues(t, 4, m["total_alerts"])
	first := m["alerts"].([]any)[0].(map[string]any)
	assert.Equal(t, "-", first["author"])
}

func TestWeatherAlerts_Error(t *testing.T) {
	s := newTestServer(&fakeUpstream{err: errors.New("timeout")}, nil)

	res := call(t, s, "get_weather_alerts", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Gagal mengambil peringatan dini: timeout", resultText(t, res))
}

func TestWeatherAlertDetail(t *testing.T) {
	up := &fakeUpstream{caps: map[string]domain.CAPAlert{"CJH1": sampleCAP()}}
	s := newTestServer(up, nil)

	m := decode(t, call(t, s, "get_weather_alert_detail", map[string]any{"cap_code": "CJH1", "language": "en"}))

	assert.Equal(t, "CJH1", m["identifier"])
	assert.Equal(t, "-", m["msg_type"])
	assert.Equal(t, "Hujan Lebat disertai Petir", m["event"])
	areas := m["areas"].([]any)
	require.Len(t, areas, 2)

	first := areas[0].(map[string]any)
	assert.Equal(t, "Sumpiuh, Kab. Banyumas", first["area_desc"])
	centroid := first["centroid"].(map[string]any)
	assert.InDelta(t, 1.0, centroid["lat"], 0.01)
	assert.InDelta(t, 1.0, centroid["lon"], 0.01)

	second := areas[1].(map[string]any)
	assert.Equal(t, "-", second["polygon"])
	assert.NotContains(t, second, "centroid")
}

func TestWeatherAlertDetail_Error(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	res := call(t, s, "get_weather_alert_detail", map[string]any{"cap_code": "NOPE"})
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(resultText(t, res), "Gagal mengambil detail CAP: "))
}

func TestAlertsByDistrict(t *testing.T) {
	up := &fakeUpstream{
		feed: sampleFeed(),
		caps: map[string]domain.CAPAlert{
			"CJH1": sampleCAP(),
			"JKT1": {Info: domain.CAPInfo{Areas: []domain.CAPArea{{Description: some("Gambir")}}}},
		},
	}
	s := newTestServer(up, nil)

	m := decode(t, call(t, s, "search_weather_alerts_by_kecamatan", map[string]any{"kecamatan": "SUMPIUH"}))

	// Items without a CAP link are not fetched; failed CAP fetches are skipped.
	assert.Equal(t, []string{"CJH1", "JKT1", "GONE1"}, up.capCalls)
	assert.Equal(t, "SUMPIUH", m["kecamatan_searched"])
	assert.EqualValues(t, 1, m["total_matching_alerts"])
	assert.NotContains(t, m, "message")

	alert := m["alerts"].([]any)[0].(map[string]any)
	assert.Equal(t, "CJH1", alert["cap_code"])
	assert.Equal(t, "Moderate", alert["severity"])
	assert.Equal(t, "-", alert["urgency"])
	affected := alert["affected_areas"].([]any)
	require.Len(t, affected, 1)
	assert.Equal(t, "Sumpiuh, Kab. Banyumas", affected[0].(map[string]any)["area_desc"])
}

func TestAlertsByDistrict_NoMatch(t *testing.T) {
	up := &fakeUpstream{feed: sampleFeed(), caps: map[string]domain.CAPAlert{"CJH1": sampleCAP()}}
	s := newTestServer(up, nil)

	m := decode(t, call(t, s, "search_weather_alerts_by_kecamatan", map[string]any{"kecamatan": "Kebayoran Baru"}))
	assert.EqualValues(t, 0, m["total_matching_alerts"])
	assert.Equal(t, []any{}, m["alerts"])
	assert.Equal(t, "Tidak ada peringatan aktif untuk kecamatan 'Kebayoran Baru'", m["message"])
}

func TestAlertsByDistrict_EmptyFeed(t *testing.T) {
	s := newTestServer(&fakeUpstream{}, nil)

	m := decode(t, call(t, s, "search_weather_alerts_by_kecamatan", map[string]any{"kecamatan": "Gambir"}))
	assert.Equal(t, "Tidak ada peringatan aktif saat ini", m["message"])
	assert.Equal(t, []any{}, m["alerts"])
}

func TestAlertsByDistrict_FeedError(t *testing.T) {
	s := newTestServer(&fakeUpstream{err: errors.New("dns")}, nil)

	res := call(t, s, "search_weather_alerts_by_kecamatan", map[string]any{"kecamatan": "Gambir"})
	assert.True(t, res.IsError)
	assert.Equal(t, "Gagal mencari peringatan untuk kecamatan: dns", resultText(t, res))
}

func TestAuditTrail(t *testing.T) {
	at := time.Date(2026, 10, 18, 2, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { domain.SetClock(nil) })

	sink := &fakeSink{}
	s := newTestServer(&fakeUpstream{err: errors.New("boom")}, sink)

	call(t, s, "search_location_code", map[string]any{"location_name": "sumpiuh"})
	call(t, s, "get_latest_earthquake", nil)

	require.Len(t, sink.events, 2)
	assert.Equal(t, domain.ToolCallEvent{
		Tool:      "search_location_code",
		Arguments: map[string]any{"location_name": "sumpiuh"},
		Outcome:   domain.OutcomeSuccess,
		InvokedAt: at,
	}, sink.events[0])
	assert.Equal(t, domain.OutcomeError, sink.events[1].Outcome)
	assert.Equal(t, "boom", sink.events[1].Error)
}

func TestAuditTrail_PublishErrorIsCounted(t *testing.T) {
	sink := &fakeSink{err: errors.New("broker down")}
	s := newTestServer(&fakeUpstream{quake: sampleQuake()}, sink)

	res := call(t, s, "get_latest_earthquake", nil)

	assert.False(t, res.IsError)
	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.AuditErrors), 0)
}

func TestEncodeJSON_NoHTMLEscaping(t *testing.T) {
	text, err := encodeJSON(struct {
		Plain string     `json:"plain"`
		Opt   domain.Opt `json:"opt"`
	}{"> 10 km & <b>", domain.Some("> 10 km & <b>")})
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"plain\": \"> 10 km & <b>\",\n  \"opt\": \"> 10 km & <b>\"\n}", text)
}

func TestGroupThousands(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		91220:   "91,220",
		1234567: "1,234,567",
	}
	for n, want := range tests {
		assert.Equal(t, want, groupThousands(n))
	}
}
