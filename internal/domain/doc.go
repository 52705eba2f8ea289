// Package domain models the BMKG (Badan Meteorologi, Klimatologi, dan
// Geofisika) payloads this service relays to tool-calling hosts.
//
// # Data Sources
//
// Earthquake feeds are XML documents under https://data.bmkg.go.id/DataMKG/TEWS/:
//
//	autogempa.xml       latest felt or significant earthquake (single <gempa>)
//	gempaterkini.xml    15 most recent M 5.0+ earthquakes
//	gempadirasakan.xml  15 most recent earthquakes felt by residents
//
// Weather forecasts come from the public JSON API at
// https://api.bmkg.go.id/publik/prakiraan-cuaca?adm4=<village code>, three days
// at three-hour steps grouped per day.
//
// Nowcast weather alerts are an RSS channel at
// https://www.bmkg.go.id/alerts/nowcast/{id|en}; each item links to a Common
// Alerting Protocol (CAP 1.2) document named <cap code>_alert.xml.
//
// # Missing Fields
//
// Upstream documents omit elements freely. Every relayed field is an [Opt]:
// absent elements are kept distinct from present ones and render as "-"
// ([Missing]) in tool output.
//
// # Region Codes
//
// Forecasts are keyed by the Kemendagri village code (adm4), a four-segment
// dotted code such as 31.71.01.1001 (DKI Jakarta > Jakarta Pusat > Gambir >
// Gambir). See package gazetteer for lookups.
package domain
