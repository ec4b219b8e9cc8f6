package geo

import (
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// MagneticVariation returns the magnetic declination in degrees (east
// positive) at the given position and date.
func MagneticVariation(lat, lon, altFt float64, date time.Time) float64 {
	// Convert altitude to meters for WMM
	altM := FeetToMeter(altFt)

	loc := egm96.NewLocationGeodetic(lat, lon, altM)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		// Return 0 for safety if calculation fails
		return 0.0
	}

	return mag.D() // Declination
}

// TrueToMagnetic converts a true heading to a magnetic heading using the
// magnetic variation at the given position and date.
func TrueToMagnetic(trueHdg, lat, lon, altFt float64, date time.Time) float64 {
	return NormalizeHeading(trueHdg - MagneticVariation(lat, lon, altFt, date))
}
