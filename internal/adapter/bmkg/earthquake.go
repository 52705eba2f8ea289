package bmkg

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/couchcryptid/bmkg-mcp-server/internal/domain"
)

// ErrEmptyFeed is returned when a feed decodes but holds no records.
var ErrEmptyFeed = errors.New("feed contains no records")

// TEWS feed XML types.

type infogempa struct {
	XMLName xml.Name   `xml:"Infogempa"`
	Gempa   []gempaXML `xml:"gempa"`
}

type gempaXML struct {
	Tanggal     *string `xml:"Tanggal"`
	Jam         *string `xml:"Jam"`
	DateTime    *string `xml:"DateTime"`
	Coordinates *string `xml:"Coordinates"`
	Lintang     *string `xml:"Lintang"`
	Bujur       *string `xml:"Bujur"`
	Magnitude   *string `xml:"Magnitude"`
	Kedalaman   *string `xml:"Kedalaman"`
	Wilayah     *string `xml:"Wilayah"`
	Potensi     *string `xml:"Potensi"`
	Dirasakan   *string `xml:"Dirasakan"`
	Shakemap    *string `xml:"Shakemap"`
}

func (g gempaXML) toDomain() domain.Earthquake {
	return domain.Earthquake{
		Date:        domain.OptFrom(g.Tanggal),
		Time:        domain.OptFrom(g.Jam),
		DateTime:    domain.OptFrom(g.DateTime),
		Coordinates: domain.OptFrom(g.Coordinates),
		Latitude:    domain.OptFrom(g.Lintang),
		Longitude:   domain.OptFrom(g.Bujur),
		Magnitude:   domain.OptFrom(g.Magnitude),
		Depth:       domain.OptFrom(g.Kedalaman),
		Region:      domain.OptFrom(g.Wilayah),
		Potential:   domain.OptFrom(g.Potensi),
		Felt:        domain.OptFrom(g.Dirasakan),
		Shakemap:    domain.OptFrom(g.Shakemap),
	}
}

// LatestEarthquake returns the most recent felt or significant earthquake.
func (c *Client) LatestEarthquake(ctx context.Context) (domain.Earthquake, error) {
	quakes, err := c.earthquakes(ctx, "autogempa")
	if err != nil {
		return domain.Earthquake{}, err
	}
	return quakes[0], nil
}

// SignificantEarthquakes returns the 15 most recent M 5.0+ earthquakes.
func (c *Client) SignificantEarthquakes(ctx context.Context) ([]domain.Earthquake, error) {
	return c.earthquakes(ctx, "gempaterkini")
}

// FeltEarthquakes returns the 15 most recent earthquakes felt by residents.
func (c *Client) FeltEarthquakes(ctx context.Context) ([]domain.Earthquake, error) {
	return c.earthquakes(ctx, "gempadirasakan")
}

func (c *Client) earthquakes(ctx context.Context, feed string) ([]domain.Earthquake, error) {
	u := fmt.Sprintf("%s/DataMKG/TEWS/%s.xml", c.dataURL, feed)
	body, err := c.get(ctx, feed, u)
	if err != nil {
		return nil, err
	}

	quakes, err := decodeEarthquakes(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", feed, err)
	}
	return quakes, nil
}

func decodeEarthquakes(body []byte) ([]domain.Earthquake, error) {
	var doc infogempa
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode earthquake feed: %w", err)
	}
	if len(doc.Gempa) == 0 {
		return nil, ErrEmptyFeed
	}

	quakes := make([]domain.Earthquake, len(doc.Gempa))
	for i, g := range doc.Gempa {
		quakes[i] = g.toDomain()
	}
	return quakes, nil
}
