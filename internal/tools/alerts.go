package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/couchcryptid/bmkg-mcp-server/internal/adapter/bmkg"
	"github.com/couchcryptid/bmkg-mcp-server/internal/domain"
)

const defaultAlertsTitle = "BMKG Weather Alerts"

func languageOption() mcp.ToolOption {
	return mcp.WithString("language",
		mcp.Description("Bahasa output, \"id\" untuk Indonesia atau \"en\" untuk English"),
		mcp.Enum("id", "en"),
		mcp.DefaultString("id"),
	)
}

func weatherAlertsTool() mcp.Tool {
	return mcp.NewTool("get_weather_alerts",
		mcp.WithDescription("Mengambil peringatan dini cuaca ekstrem (hujan lebat/petir) yang sedang aktif di Indonesia. "+
			"Data berbasis Common Alerting Protocol (CAP) hingga level kecamatan."),
		languageOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func weatherAlertDetailTool() mcp.Tool {
	return mcp.NewTool("get_weather_alert_detail",
		mcp.WithDescription("Mengambil detail peringatan dini cuaca berdasarkan CAP code, "+
			"termasuk wilayah kecamatan terdampak beserta polygon-nya."),
		mcp.WithString("cap_code",
			mcp.Required(),
			mcp.Description("Kode detail CAP (contoh: \"CJH20261018080000\")"),
		),
		languageOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func alertsByDistrictTool() mcp.Tool {
	return mcp.NewTool("search_weather_alerts_by_kecamatan",
		mcp.WithDescription("Mencari peringatan dini cuaca yang aktif untuk kecamatan tertentu "+
			"di seluruh peringatan aktif."),
		mcp.WithString("kecamatan",
			mcp.Required(),
			mcp.Description("Nama kecamatan yang dicari (contoh: \"Kebayoran Baru\", \"Bogor Barat\")"),
		),
		languageOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

type alertsMetadata struct {
	LastBuildDate domain.Opt `json:"last_build_date"`
	Title         string     `json:"title"`
	Language      string     `json:"language"`
}

type alertItem struct {
	Title       domain.Opt `json:"title"`
	Link        domain.Opt `json:"link"`
	Description domain.Opt `json:"description"`
	Author      domain.Opt `json:"author"`
	PubDate     domain.Opt `json:"pub_date"`
}

type alertsResult struct {
	Metadata    alertsMetadata `json:"metadata"`
	TotalAlerts int            `json:"total_alerts"`
	Alerts      []alertItem    `json:"alerts"`
}

type alertArea struct {
	AreaDesc domain.Opt  `json:"area_desc"`
	Polygon  domain.Opt  `json:"polygon"`
	Centroid *domain.Geo `json:"centroid,omitempty"`
}

type alertDetailResult struct {
	Identifier  domain.Opt  `json:"identifier"`
	Sender      domain.Opt  `json:"sender"`
	Sent        domain.Opt  `json:"sent"`
	Status      domain.Opt  `json:"status"`
	MsgType     domain.Opt  `json:"msg_type"`
	Event       domain.Opt  `json:"event"`
	Effective   domain.Opt  `json:"effective"`
	Expires     domain.Opt  `json:"expires"`
	SenderName  domain.Opt  `json:"sender_name"`
	Headline    domain.Opt  `json:"headline"`
	Description domain.Opt  `json:"description"`
	Web         domain.Opt  `json:"web"`
	Areas       []alertArea `json:"areas"`
}

type districtAlert struct {
	Headline      domain.Opt  `json:"headline"`
	Event         domain.Opt  `json:"event"`
	Effective     domain.Opt  `json:"effective"`
	Expires       domain.Opt  `json:"expires"`
	Severity      domain.Opt  `json:"severity"`
	Certainty     domain.Opt  `json:"certainty"`
	Urgency       domain.Opt  `json:"urgency"`
	Description   domain.Opt  `json:"description"`
	Web           domain.Opt  `json:"web"`
	AffectedAreas []alertArea `json:"affected_areas"`
	CAPCode       string      `json:"cap_code"`
}

type districtAlertsResult struct {
	KecamatanSearched   string          `json:"kecamatan_searched"`
	TotalMatchingAlerts int             `json:"total_matching_alerts"`
	Alerts              []districtAlert `json:"alerts"`
	Message             string          `json:"message,omitempty"`
}

type noActiveAlerts struct {
	Message string          `json:"message"`
	Alerts  []districtAlert `json:"alerts"`
}

func toAlertAreas(areas []domain.CAPArea) []alertArea {
	out := make([]alertArea, len(areas))
	for i, a := range areas {
		out[i] = alertArea{AreaDesc: a.Description, Polygon: a.Polygon}
		if p, ok := a.Polygon.Get(); ok {
			if c, ok := domain.PolygonCentroid(p); ok {
				out[i].Centroid = &c
			}
		}
	}
	return out
}

func (s *Server) weatherAlerts(ctx context.Context, req mcp.CallToolRequest) reply {
	lang := bmkg.NormalizeLanguage(req.GetString("language", "id"))

	feed, err := s.upstream.Nowcast(ctx, lang)
	if err != nil {
		return failure("Gagal mengambil peringatan dini: ", err)
	}

	items := make([]alertItem, len(feed.Items))
	for i, it := range feed.Items {
		items[i] = alertItem{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			Author:      it.Author,
			PubDate:     it.PubDate,
		}
	}
	return success(alertsResult{
		Metadata: alertsMetadata{
			LastBuildDate: feed.LastBuildDate,
			Title:         feed.Title.Or(defaultAlertsTitle),
			Language:      lang,
		},
		TotalAlerts: len(items),
		Alerts:      items,
	})
}

func (s *Server) weatherAlertDetail(ctx context.Context, req mcp.CallToolRequest) reply {
	code, err := req.RequireString("cap_code")
	if err != nil {
		return failure("Gagal mengambil detail CAP: ", err)
	}
	lang := bmkg.NormalizeLanguage(req.GetString("language", "id"))

	alert, err := s.upstream.AlertDetail(ctx, lang, code)
	if err != nil {
		return failure("Gagal mengambil detail CAP: ", err)
	}

	info := alert.Info
	return success(alertDetailResult{
		Identifier:  alert.Identifier,
		Sender:      alert.Sender,
		Sent:        alert.Sent,
		Status:      alert.Status,
		MsgType:     alert.MsgType,
		Event:       info.Event,
		Effective:   info.Effective,
		Expires:     info.Expires,
		SenderName:  info.SenderName,
		Headline:    info.Headline,
		Description: info.Description,
		Web:         info.Web,
		Areas:       toAlertAreas(info.Areas),
	})
}

// alertsByDistrict fetches the nowcast channel, then each item's CAP
// document in turn. Items whose CAP document cannot be fetched are skipped.
func (s *Server) alertsByDistrict(ctx context.Context, req mcp.CallToolRequest) reply {
	district, err := req.RequireString("kecamatan")
	if err != nil {
		return failure("Gagal mencari peringatan untuk kecamatan: ", err)
	}
	lang := bmkg.NormalizeLanguage(req.GetString("language", "id"))

	feed, err := s.upstream.Nowcast(ctx, lang)
	if err != nil {
		return failure("Gagal mencari peringatan untuk kecamatan: ", err)
	}
	if len(feed.Items) == 0 {
		return notFound(noActiveAlerts{
			Message: "Tidak ada peringatan aktif saat ini",
			Alerts:  []districtAlert{},
		})
	}

	matches := make([]districtAlert, 0)
	for _, it := range feed.Items {
		code, ok := it.CAPCode()
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return failure("Gagal mencari peringatan untuk kecamatan: ", err)
		}

		alert, err := s.upstream.AlertDetail(ctx, lang, code)
		if err != nil {
			s.logger.Warn("skipping CAP document", "cap_code", code, "error", err)
			continue
		}

		info := alert.Info
		areas := info.AreasMatching(district)
		if len(areas) == 0 {
			continue
		}
		matches = append(matches, districtAlert{
			Headline:      info.Headline,
			Event:         info.Event,
			Effective:     info.Effective,
			Expires:       info.Expires,
			Severity:      info.Severity,
			Certainty:     info.Certainty,
			Urgency:       info.Urgency,
			Description:   info.Description,
			Web:           info.Web,
			AffectedAreas: toAlertAreas(areas),
			CAPCode:       code,
		})
	}

	out := districtAlertsResult{
		KecamatanSearched:   district,
		TotalMatchingAlerts: len(matches),
		Alerts:              matches,
	}
	if len(matches) == 0 {
		out.Message = fmt.Sprintf("Tidak ada peringatan aktif untuk kecamatan '%s'", district)
		return notFound(out)
	}
	return success(out)
}
