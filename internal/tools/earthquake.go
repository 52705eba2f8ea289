package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/couchcryptid/bmkg-mcp-server/internal/domain"
)

func latestEarthquakeTool() mcp.Tool {
	return mcp.NewTool("get_latest_earthquake",
		mcp.WithDescription("Mengambil data gempa bumi terbaru yang dirasakan (M 5.0+ atau signifikan). "+
			"Mengembalikan detail waktu, lokasi, magnitudo, potensi tsunami, dan tautan shakemap."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func significantEarthquakesTool() mcp.Tool {
	return mcp.NewTool("get_significant_earthquakes",
		mcp.WithDescription("Mengambil daftar 15 gempabumi terkini dengan magnitudo 5.0 atau lebih."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func feltEarthquakesTool() mcp.Tool {
	return mcp.NewTool("get_felt_earthquakes",
		mcp.WithDescription("Mengambil daftar 15 gempabumi terkini yang dirasakan masyarakat."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

type latestEarthquakeResult struct {
	Waktu       string     `json:"waktu"`
	Magnitudo   domain.Opt `json:"magnitudo"`
	Kedalaman   domain.Opt `json:"kedalaman"`
	Koordinat   string     `json:"koordinat"`
	Lokasi      domain.Opt `json:"lokasi"`
	Potensi     domain.Opt `json:"potensi"`
	Dirasakan   domain.Opt `json:"dirasakan"`
	ShakemapURL string     `json:"shakemap_url"`
	Sumber      string     `json:"sumber"`
}

type earthquakeRow struct {
	Waktu       string      `json:"waktu"`
	DateTimeUTC domain.Opt  `json:"datetime_utc"`
	Magnitudo   domain.Opt  `json:"magnitudo"`
	Kedalaman   domain.Opt  `json:"kedalaman"`
	Koordinat   string      `json:"koordinat"`
	Lokasi      domain.Opt  `json:"lokasi"`
	Potensi     *domain.Opt `json:"potensi,omitempty"`
	Dirasakan   *domain.Opt `json:"dirasakan,omitempty"`
}

type earthquakeList struct {
	Total  int             `json:"total"`
	Data   []earthquakeRow `json:"data"`
	Sumber string          `json:"sumber"`
}

func quakeTime(q domain.Earthquake) string {
	return q.Date.String() + " - " + q.Time.String()
}

func quakeCoordinates(q domain.Earthquake) string {
	return q.Latitude.String() + ", " + q.Longitude.String()
}

func (s *Server) shakemapURL(q domain.Earthquake) string {
	name, ok := q.Shakemap.Get()
	if !ok {
		return domain.Missing
	}
	return s.opts.StaticURL + "/" + name
}

func (s *Server) latestEarthquake(ctx context.Context, _ mcp.CallToolRequest) reply {
	q, err := s.upstream.LatestEarthquake(ctx)
	if err != nil {
		return failure("Gagal mengambil data gempa: ", err)
	}
	return success(latestEarthquakeResult{
		Waktu:       quakeTime(q),
		Magnitudo:   q.Magnitude,
		Kedalaman:   q.Depth,
		Koordinat:   quakeCoordinates(q),
		Lokasi:      q.Region,
		Potensi:     q.Potential,
		Dirasakan:   q.Felt,
		ShakemapURL: s.shakemapURL(q),
		Sumber:      s.opts.Attribution,
	})
}

func (s *Server) significantEarthquakes(ctx context.Context, _ mcp.CallToolRequest) reply {
	quakes, err := s.upstream.SignificantEarthquakes(ctx)
	if err != nil {
		return failure("Gagal mengambil data gempa M 5.0+: ", err)
	}
	rows := make([]earthquakeRow, len(quakes))
	for i, q := range quakes {
		rows[i] = newEarthquakeRow(q)
		rows[i].Potensi = &quakes[i].Potential
	}
	return success(earthquakeList{Total: len(rows), Data: rows, Sumber: s.opts.Attribution})
}

func (s *Server) feltEarthquakes(ctx context.Context, _ mcp.CallToolRequest) reply {
	quakes, err := s.upstream.FeltEarthquakes(ctx)
	if err != nil {
		return failure("Gagal mengambil data gempa dirasakan: ", err)
	}
	rows := make([]earthquakeRow, len(quakes))
	for i, q := range quakes {
		rows[i] = newEarthquakeRow(q)
		rows[i].Dirasakan = &quakes[i].Felt
	}
	return success(earthquakeList{Total: len(rows), Data: rows, Sumber: s.opts.Attribution})
}

func newEarthquakeRow(q domain.Earthquake) earthquakeRow {
	return earthquakeRow{
		Waktu:       quakeTime(q),
		DateTimeUTC: q.DateTime,
		Magnitudo:   q.Magnitude,
		Kedalaman:   q.Depth,
		Koordinat:   quakeCoordinates(q),
		Lokasi:      q.Region,
	}
}
