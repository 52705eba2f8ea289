package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/couchcryptid/bmkg-mcp-server/internal/gazetteer"
)

// suggestionCount bounds did_you_mean on empty searches.
const suggestionCount = 5

func searchLocationCodeTool() mcp.Tool {
	return mcp.NewTool("search_location_code",
		mcp.WithDescription("Mencari kode wilayah Indonesia berdasarkan nama lokasi menggunakan database lokal. "+
			"Mendukung pencarian di semua level: provinsi, kabupaten/kota, kecamatan, kelurahan/desa. "+
			"Kode level desa (4 segmen) dapat langsung digunakan untuk get_weather_forecast()."),
		mcp.WithString("location_name",
			mcp.Required(),
			mcp.Description("Nama lokasi yang dicari (contoh: \"Pandak\", \"Sumpiuh\", \"Banyumas\")"),
		),
		mcp.WithString("admin_level",
			mcp.Description("Level administratif: province/provinsi, regency/kabkota, district/kecamatan, village/desa, atau all"),
			mcp.DefaultString("all"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func villagesInDistrictTool() mcp.Tool {
	return mcp.NewTool("get_villages_in_district",
		mcp.WithDescription("Mendapatkan daftar semua kelurahan/desa dalam kecamatan tertentu dari database lokal."),
		mcp.WithString("district_code",
			mcp.Required(),
			mcp.Description("Kode kecamatan (contoh: \"33.02.07\" untuk Sumpiuh)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

type tableMissing struct {
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

type searchNotFound struct {
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
	DidYouMean []string `json:"did_you_mean,omitempty"`
	SearchedIn string   `json:"searched_in"`
	Results    []string `json:"results"`
}

type searchResult struct {
	Query            string            `json:"query"`
	AdminLevelFilter string            `json:"admin_level_filter"`
	TotalFound       int               `json:"total_found"`
	Results          []gazetteer.Match `json:"results"`
	Note             string            `json:"note"`
}

type districtNotFound struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion"`
}

type village struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	ReadyForWeather bool   `json:"ready_for_weather_api"`
}

type villagesResult struct {
	DistrictCode  string    `json:"district_code"`
	DistrictName  string    `json:"district_name"`
	TotalVillages int       `json:"total_villages"`
	Villages      []village `json:"villages"`
	Note          string    `json:"note"`
}

// table returns the region table, or the reply to send when it cannot be
// loaded.
func (s *Server) table(withPath bool, prefix string) (*gazetteer.Table, *reply) {
	t, err := s.regions.Table()
	if err == nil {
		return t, nil
	}
	if errors.Is(err, gazetteer.ErrTableNotFound) {
		body := tableMissing{Error: fmt.Sprintf("File %s tidak ditemukan", filepath.Base(s.regions.Path()))}
		if withPath {
			body.Path = s.regions.Path()
		}
		r := notFound(body)
		return nil, &r
	}
	r := failure(prefix, err)
	return nil, &r
}

func (s *Server) searchLocationCode(_ context.Context, req mcp.CallToolRequest) reply {
	query, err := req.RequireString("location_name")
	if err != nil {
		return failure("Gagal mencari kode wilayah: ", err)
	}
	levelArg := req.GetString("admin_level", "all")

	t, r := s.table(true, "Gagal mencari kode wilayah: ")
	if r != nil {
		return *r
	}

	filter, _ := gazetteer.ParseLevelFilter(levelArg)
	matches := t.Search(query, filter)
	if len(matches) == 0 {
		return notFound(searchNotFound{
			Message:    fmt.Sprintf("Tidak ditemukan lokasi dengan nama '%s'", query),
			Suggestion: "Coba gunakan nama yang lebih spesifik atau cek ejaan",
			DidYouMean: t.Suggest(query, filter, suggestionCount),
			SearchedIn: fmt.Sprintf("%s dengan %s wilayah", filepath.Base(s.regions.Path()), groupThousands(t.Len())),
			Results:    []string{},
		})
	}

	return success(searchResult{
		Query:            query,
		AdminLevelFilter: levelArg,
		TotalFound:       len(matches),
		Results:          matches,
		Note:             "Gunakan kode level 'Kelurahan/Desa' (4 segmen) untuk get_weather_forecast()",
	})
}

func (s *Server) villagesInDistrict(_ context.Context, req mcp.CallToolRequest) reply {
	code, err := req.RequireString("district_code")
	if err != nil {
		return failure("Error: ", err)
	}

	t, r := s.table(false, "Error: ")
	if r != nil {
		return *r
	}

	name, children, err := t.Children(code)
	if errors.Is(err, gazetteer.ErrNotFound) {
		return notFound(districtNotFound{
			Error:      fmt.Sprintf("Kode kecamatan '%s' tidak ditemukan", code),
			Suggestion: "Gunakan search_location_code() untuk menemukan kode yang tepat",
		})
	}
	if err != nil {
		return failure("Error: ", err)
	}

	villages := make([]village, len(children))
	for i, c := range children {
		villages[i] = village{Code: c.Code, Name: c.Name, ReadyForWeather: true}
	}
	return success(villagesResult{
		DistrictCode:  strings.TrimSpace(code),
		DistrictName:  name,
		TotalVillages: len(villages),
		Villages:      villages,
		Note:          "Gunakan 'code' untuk parameter kode_wilayah di get_weather_forecast()",
	})
}

// groupThousands formats n with comma thousands separators.
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
