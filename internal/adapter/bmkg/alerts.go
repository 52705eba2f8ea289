package bmkg

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"

	"github.com/couchcryptid/bmkg-mcp-server/internal/domain"
)

// Nowcast RSS types.

type rssDoc struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         *string   `xml:"title"`
	LastBuildDate *string   `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       *string `xml:"title"`
	Link        *string `xml:"link"`
	Description *string `xml:"description"`
	Author      *string `xml:"author"`
	PubDate     *string `xml:"pubDate"`
}

// CAP 1.2 types, limited to the fields relayed to callers.

type capDoc struct {
	XMLName    xml.Name  `xml:"alert"`
	Identifier *string   `xml:"identifier"`
	Sender     *string   `xml:"sender"`
	Sent       *string   `xml:"sent"`
	Status     *string   `xml:"status"`
	MsgType    *string   `xml:"msgType"`
	Info       []capInfo `xml:"info"`
}

type capInfo struct {
	Event       *string   `xml:"event"`
	Urgency     *string   `xml:"urgency"`
	Severity    *string   `xml:"severity"`
	Certainty   *string   `xml:"certainty"`
	Effective   *string   `xml:"effective"`
	Expires     *string   `xml:"expires"`
	SenderName  *string   `xml:"senderName"`
	Headline    *string   `xml:"headline"`
	Description *string   `xml:"description"`
	Web         *string   `xml:"web"`
	Area        []capArea `xml:"area"`
}

type capArea struct {
	AreaDesc *string  `xml:"areaDesc"`
	Polygon  []string `xml:"polygon"`
}

// Nowcast fetches the active weather alert channel in lang ("id" or "en").
func (c *Client) Nowcast(ctx context.Context, lang string) (domain.NowcastFeed, error) {
	u := fmt.Sprintf("%s/alerts/nowcast/%s", c.webURL, NormalizeLanguage(lang))
	body, err := c.get(ctx, "nowcast", u)
	if err != nil {
		return domain.NowcastFeed{}, err
	}
	return decodeNowcast(body)
}

// AlertDetail fetches the CAP document for capCode in lang ("id" or "en").
func (c *Client) AlertDetail(ctx context.Context, lang, capCode string) (domain.CAPAlert, error) {
	u := fmt.Sprintf("%s/alerts/nowcast/%s/%s%s",
		c.webURL, NormalizeLanguage(lang), url.PathEscape(capCode), domain.CAPSuffix)
	body, err := c.get(ctx, "cap", u)
	if err != nil {
		return domain.CAPAlert{}, err
	}
	return decodeCAP(body)
}

func decodeNowcast(body []byte) (domain.NowcastFeed, error) {
	var doc rssDoc
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&doc); err != nil {
		return domain.NowcastFeed{}, fmt.Errorf("decode nowcast feed: %w", err)
	}

	feed := domain.NowcastFeed{
		Title:         domain.OptFrom(doc.Channel.Title),
		LastBuildDate: domain.OptFrom(doc.Channel.LastBuildDate),
		Items:         make([]domain.NowcastItem, 0, len(doc.Channel.Items)),
	}
	for _, it := range doc.Channel.Items {
		feed.Items = append(feed.Items, domain.NowcastItem{
			Title:       domain.OptFrom(it.Title),
			Link:        domain.OptFrom(it.Link),
			Description: domain.OptFrom(it.Description),
			Author:      domain.OptFrom(it.Author),
			PubDate:     domain.OptFrom(it.PubDate),
		})
	}
	return feed, nil
}

func decodeCAP(body []byte) (domain.CAPAlert, error) {
	var doc capDoc
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&doc); err != nil {
		return domain.CAPAlert{}, fmt.Errorf("decode CAP alert: %w", err)
	}

	alert := domain.CAPAlert{
		Identifier: domain.OptFrom(doc.Identifier),
		Sender:     domain.OptFrom(doc.Sender),
		Sent:       domain.OptFrom(doc.Sent),
		Status:     domain.OptFrom(doc.Status),
		MsgType:    domain.OptFrom(doc.MsgType),
	}
	if len(doc.Info) == 0 {
		return alert, nil
	}

	info := doc.Info[0]
	alert.Info = domain.CAPInfo{
		Event:       domain.OptFrom(info.Event),
		Effective:   domain.OptFrom(info.Effective),
		Expires:     domain.OptFrom(info.Expires),
		SenderName:  domain.OptFrom(info.SenderName),
		Headline:    domain.OptFrom(info.Headline),
		Description: domain.OptFrom(info.Description),
		Web:         domain.OptFrom(info.Web),
		Severity:    domain.OptFrom(info.Severity),
		Certainty:   domain.OptFrom(info.Certainty),
		Urgency:     domain.OptFrom(info.Urgency),
		Areas:       make([]domain.CAPArea, 0, len(info.Area)),
	}
	for _, a := range info.Area {
		area := domain.CAPArea{Description: domain.OptFrom(a.AreaDesc)}
		if len(a.Polygon) > 0 {
			area.Polygon = domain.OptFrom(&a.Polygon[0])
		}
		alert.Info.Areas = append(alert.Info.Areas, area)
	}
	return alert, nil
}
