package domain

import "strings"

// ForecastLocation identifies the village a forecast is for.
type ForecastLocation struct {
	Province  Opt
	Regency   Opt
	District  Opt
	Village   Opt
	Latitude  Opt
	Longitude Opt
	Timezone  Opt
}

// ForecastEntry is one three-hour forecast step.
type ForecastEntry struct {
	LocalTime     Opt // "2006-01-02 15:04:05"
	UTCTime       Opt
	Temperature   Opt // degrees Celsius
	Humidity      Opt // percent
	Weather       Opt
	WeatherEN     Opt
	WindSpeed     Opt // km/h
	WindDirection Opt // compass point, e.g. "SE"
	CloudCover    Opt // percent
	Visibility    Opt // e.g. "> 10 km"
	Icon          Opt // image URL
}

// ForecastDay groups the steps reported for one day.
type ForecastDay struct {
	Entries []ForecastEntry
}

// Date returns the calendar date of the day's first step.
func (d ForecastDay) Date() Opt {
	if len(d.Entries) == 0 {
		return Opt{}
	}
	local, ok := d.Entries[0].LocalTime.Get()
	if !ok {
		return Opt{}
	}
	fields := strings.Fields(local)
	if len(fields) == 0 {
		return Opt{}
	}
	return Some(fields[0])
}

// Forecast is a village forecast. Days with no steps are dropped.
type Forecast struct {
	Location ForecastLocation
	Days     []ForecastDay
}

// EntryCount returns the total number of steps across all days.
func (f Forecast) EntryCount() int {
	n := 0
	for _, d := range f.Days {
		n += len(d.Entries)
	}
	return n
}
