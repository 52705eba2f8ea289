package domain

// Earthquake is one <gempa> record from the TEWS feeds.
type Earthquake struct {
	Date        Opt // Tanggal, e.g. "18 Okt 2026"
	Time        Opt // Jam, local time with zone, e.g. "09:12:44 WIB"
	DateTime    Opt // ISO 8601 UTC
	Coordinates Opt // "lat,lon"
	Latitude    Opt // Lintang, e.g. "2.15 LS"
	Longitude   Opt // Bujur, e.g. "126.41 BT"
	Magnitude   Opt
	Depth       Opt // Kedalaman, e.g. "10 km"
	Region      Opt // Wilayah
	Potential   Opt // Potensi (tsunami potential)
	Felt        Opt // Dirasakan (MMI scale by area)
	Shakemap    Opt // image file name relative to the static host
}
