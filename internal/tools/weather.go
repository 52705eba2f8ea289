package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/couchcryptid/bmkg-mcp-server/internal/adapter/bmkg"
	"github.com/couchcryptid/bmkg-mcp-server/internal/domain"
	"github.com/couchcryptid/bmkg-mcp-server/internal/gazetteer"
)

const forecastNote = "Data prakiraan 3 hari dengan interval 3 jam (8 forecast per hari)"

func weatherForecastTool(defaultCode string) mcp.Tool {
	return mcp.NewTool("get_weather_forecast",
		mcp.WithDescription("Mengambil prakiraan cuaca 3 hari dengan interval 3 jam berdasarkan kode wilayah "+
			"level kelurahan/desa (adm4). Gunakan search_location_code() untuk mencari kode wilayah."),
		mcp.WithString("kode_wilayah",
			mcp.Description(fmt.Sprintf("Kode wilayah level desa/kelurahan, format AA.BB.CC.DDDD (default: %s)", defaultCode)),
			mcp.DefaultString(defaultCode),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

type forecastLocation struct {
	Provinsi  domain.Opt `json:"provinsi"`
	Kabkota   domain.Opt `json:"kabkota"`
	Kecamatan domain.Opt `json:"kecamatan"`
	Desa      domain.Opt `json:"desa"`
	Koordinat string     `json:"koordinat"`
	Timezone  domain.Opt `json:"timezone"`
}

type forecastStep struct {
	WaktuLokal     domain.Opt `json:"waktu_lokal"`
	WaktuUTC       domain.Opt `json:"waktu_utc"`
	Suhu           string     `json:"suhu"`
	Kelembaban     string     `json:"kelembaban"`
	Cuaca          domain.Opt `json:"cuaca"`
	CuacaEN        domain.Opt `json:"cuaca_en"`
	KecepatanAngin string     `json:"kecepatan_angin"`
	ArahAngin      domain.Opt `json:"arah_angin"`
	TutupanAwan    string     `json:"tutupan_awan"`
	JarakPandang   domain.Opt `json:"jarak_pandang"`
	Icon           domain.Opt `json:"icon"`
}

type forecastDay struct {
	Tanggal        domain.Opt     `json:"tanggal"`
	JumlahForecast int            `json:"jumlah_forecast"`
	Forecasts      []forecastStep `json:"forecasts"`
}

type forecastResult struct {
	Lokasi        forecastLocation `json:"lokasi"`
	TotalHari     int              `json:"total_hari"`
	TotalForecast int              `json:"total_forecast"`
	Prakiraan     []forecastDay    `json:"prakiraan"`
	Catatan       string           `json:"catatan"`
	Sumber        string           `json:"sumber"`
}

// withUnit appends unit to a present value and renders absent values as "-".
func withUnit(o domain.Opt, unit string) string {
	v, ok := o.Get()
	if !ok {
		return domain.Missing
	}
	return v + unit
}

func (s *Server) weatherForecast(ctx context.Context, req mcp.CallToolRequest) reply {
	code := strings.TrimSpace(req.GetString("kode_wilayah", s.opts.DefaultRegionCode))
	if code == "" {
		code = s.opts.DefaultRegionCode
	}
	if gazetteer.Classify(code) != gazetteer.LevelVillage {
		return failureText(
			fmt.Sprintf("Gagal mengambil data cuaca. Kode wilayah '%s' bukan kode kelurahan/desa (4 segmen).", code),
			fmt.Errorf("region code %q is not village level", code))
	}

	f, err := s.upstream.Forecast(ctx, code)
	var se *bmkg.StatusError
	if errors.As(err, &se) {
		return failureText("Gagal mengambil data cuaca. Cek kode wilayah.", err)
	}
	if err != nil {
		return failure("Error: ", err)
	}

	loc := f.Location
	out := forecastResult{
		Lokasi: forecastLocation{
			Provinsi:  loc.Province,
			Kabkota:   loc.Regency,
			Kecamatan: loc.District,
			Desa:      loc.Village,
			Koordinat: loc.Latitude.String() + ", " + loc.Longitude.String(),
			Timezone:  loc.Timezone,
		},
		TotalHari:     len(f.Days),
		TotalForecast: f.EntryCount(),
		Prakiraan:     make([]forecastDay, 0, len(f.Days)),
		Catatan:       forecastNote,
		Sumber:        s.opts.Attribution,
	}
	for _, d := range f.Days {
		day := forecastDay{
			Tanggal:        d.Date(),
			JumlahForecast: len(d.Entries),
			Forecasts:      make([]forecastStep, len(d.Entries)),
		}
		for i, e := range d.Entries {
			day.Forecasts[i] = forecastStep{
				WaktuLokal:     e.LocalTime,
				WaktuUTC:       e.UTCTime,
				Suhu:           withUnit(e.Temperature, "°C"),
				Kelembaban:     withUnit(e.Humidity, "%"),
				Cuaca:          e.Weather,
				CuacaEN:        e.WeatherEN,
				KecepatanAngin: withUnit(e.WindSpeed, " km/j"),
				ArahAngin:      e.WindDirection,
				TutupanAwan:    e.CloudCover.Or("0") + "%",
				JarakPandang:   e.Visibility,
				Icon:           e.Icon,
			}
		}
		out.Prakiraan = append(out.Prakiraan, day)
	}
	return success(out)
}
