package bmkg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/couchcryptid/bmkg-mcp-server/internal/domain"
)

// Forecast fetches the three-day forecast for a village (adm4) code.
func (c *Client) Forecast(ctx context.Context, adm4 string) (domain.Forecast, error) {
	u := c.apiURL + "/publik/prakiraan-cuaca?" + url.Values{"adm4": {adm4}}.Encode()
	body, err := c.get(ctx, "prakiraan-cuaca", u)
	if err != nil {
		return domain.Forecast{}, err
	}
	return decodeForecast(body)
}

// Forecast API response types.

type forecastResponse struct {
	Lokasi *forecastLocation `json:"lokasi"`
	Data   []forecastDay     `json:"data"`
}

type forecastLocation struct {
	Provinsi  text `json:"provinsi"`
	Kotkab    text `json:"kotkab"`
	Kecamatan text `json:"kecamatan"`
	Desa      text `json:"desa"`
	Lat       text `json:"lat"`
	Lon       text `json:"lon"`
	Timezone  text `json:"timezone"`
}

type forecastDay struct {
	// Each group is normally an array of steps; anything else is ignored.
	Cuaca []json.RawMessage `json:"cuaca"`
}

type forecastStep struct {
	LocalDatetime text `json:"local_datetime"`
	UTCDatetime   text `json:"utc_datetime"`
	T             text `json:"t"`
	Hu            text `json:"hu"`
	WeatherDesc   text `json:"weather_desc"`
	WeatherDescEn text `json:"weather_desc_en"`
	Ws            text `json:"ws"`
	Wd            text `json:"wd"`
	Tcc           text `json:"tcc"`
	VsText        text `json:"vs_text"`
	Image         text `json:"image"`
}

// text decodes a JSON string or number into its literal text; null and
// missing values stay absent.
type text struct {
	v *string
}

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		t.v = &s
		return nil
	}
	s := string(b)
	t.v = &s
	return nil
}

func (t text) opt() domain.Opt { return domain.OptFrom(t.v) }

func decodeForecast(body []byte) (domain.Forecast, error) {
	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Forecast{}, fmt.Errorf("decode forecast: %w", err)
	}
	if resp.Lokasi == nil {
		return domain.Forecast{}, errors.New("decode forecast: response has no lokasi")
	}

	loc := resp.Lokasi
	f := domain.Forecast{
		Location: domain.ForecastLocation{
			Province:  loc.Provinsi.opt(),
			Regency:   loc.Kotkab.opt(),
			District:  loc.Kecamatan.opt(),
			Village:   loc.Desa.opt(),
			Latitude:  loc.Lat.opt(),
			Longitude: loc.Lon.opt(),
			Timezone:  loc.Timezone.opt(),
		},
	}

	for _, d := range resp.Data {
		var day domain.ForecastDay
		for _, group := range d.Cuaca {
			group = bytes.TrimSpace(group)
			if len(group) == 0 || group[0] != '[' {
				continue
			}
			var steps []forecastStep
			if err := json.Unmarshal(group, &steps); err != nil {
				return domain.Forecast{}, fmt.Errorf("decode forecast steps: %w", err)
			}
			for _, s := range steps {
				day.Entries = append(day.Entries, s.toDomain())
			}
		}
		if len(day.Entries) > 0 {
			f.Days = append(f.Days, day)
		}
	}
	return f, nil
}

func (s forecastStep) toDomain() domain.ForecastEntry {
	return domain.ForecastEntry{
		LocalTime:     s.LocalDatetime.opt(),
		UTCTime:       s.UTCDatetime.opt(),
		Temperature:   s.T.opt(),
		Humidity:      s.Hu.opt(),
		Weather:       s.WeatherDesc.opt(),
		WeatherEN:     s.WeatherDescEn.opt(),
		WindSpeed:     s.Ws.opt(),
		WindDirection: s.Wd.opt(),
		CloudCover:    s.Tcc.opt(),
		Visibility:    s.VsText.opt(),
		Icon:          s.Image.opt(),
	}
}
