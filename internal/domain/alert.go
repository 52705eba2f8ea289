package domain

import (
	"path"
	"strings"
)

// CAPSuffix ends every CAP detail document name.
const CAPSuffix = "_alert.xml"

// NowcastFeed is the nowcast RSS channel listing active alerts per province.
type NowcastFeed struct {
	Title         Opt
	LastBuildDate Opt
	Items         []NowcastItem
}

// NowcastItem is one alert entry of the nowcast channel.
type NowcastItem struct {
	Title       Opt
	Link        Opt // CAP detail URL
	Description Opt
	Author      Opt
	PubDate     Opt // RFC 1123, local time
}

// CAPCode extracts the CAP code from the item's link.
func (i NowcastItem) CAPCode() (string, bool) {
	link, ok := i.Link.Get()
	if !ok {
		return "", false
	}
	return CAPCodeFromLink(link)
}

// CAPCodeFromLink returns the code of a link ending in <code>_alert.xml.
func CAPCodeFromLink(link string) (string, bool) {
	if !strings.Contains(link, CAPSuffix) {
		return "", false
	}
	base := path.Base(strings.TrimSpace(link))
	code := strings.ReplaceAll(base, CAPSuffix, "")
	if code == "" {
		return "", false
	}
	return code, true
}

// CAPAlert is a Common Alerting Protocol document. Only the first info block
// is kept.
type CAPAlert struct {
	Identifier Opt
	Sender     Opt
	Sent       Opt
	Status     Opt
	MsgType    Opt
	Info       CAPInfo
}

// CAPInfo holds the event details of an alert.
type CAPInfo struct {
	Event       Opt
	Effective   Opt
	Expires     Opt
	SenderName  Opt
	Headline    Opt
	Description Opt
	Web         Opt // infographic URL
	Severity    Opt
	Certainty   Opt
	Urgency     Opt
	Areas       []CAPArea
}

// CAPArea is one affected area, usually a district.
type CAPArea struct {
	Description Opt
	Polygon     Opt // space-separated "lat,lon" pairs
}

// AreasMatching returns the areas whose description contains name,
// case-insensitively.
func (i CAPInfo) AreasMatching(name string) []CAPArea {
	needle := strings.ToLower(name)
	var out []CAPArea
	for _, a := range i.Areas {
		if strings.Contains(strings.ToLower(a.Description.Or("")), needle) {
			out = append(out, a)
		}
	}
	return out
}
