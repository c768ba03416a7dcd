package crs

import "math"

// Transverse Mercator on the GRS80 ellipsoid with standard UTM parameters
// (scale 0.9996, 500 km false easting). Uses the Krüger series in the third
// flattening, carried to fourth order, which keeps the projection error well
// under a millimetre across a full zone width.

const (
	grs80A = 6378137.0
	grs80F = 1.0 / 298.257222101

	utmScale        = 0.9996
	utmFalseEasting = 500000.0
)

var (
	// first eccentricity and third flattening
	ecc = math.Sqrt(grs80F * (2 - grs80F))
	n   = grs80F / (2 - grs80F)

	// rectifying radius
	rectRadius = grs80A / (1 + n) * (1 + n*n/4 + n*n*n*n/64)

	// forward series: conformal to transverse Mercator
	kAlpha = [4]float64{
		n/2 - 2*n*n/3 + 5*n*n*n/16 + 41*n*n*n*n/180,
		13*n*n/48 - 3*n*n*n/5 + 557*n*n*n*n/1440,
		61*n*n*n/240 - 103*n*n*n*n/140,
		49561 * n * n * n * n / 161280,
	}

	// inverse series: transverse Mercator to conformal
	kBeta = [4]float64{
		n/2 - 2*n*n/3 + 37*n*n*n/96 - n*n*n*n/360,
		n*n/48 + n*n*n/15 - 437*n*n*n*n/1440,
		17*n*n*n/480 - 37*n*n*n*n/840,
		4397 * n * n * n * n / 161280,
	}

	// conformal latitude to geodetic latitude
	kDelta = [4]float64{
		2*n - 2*n*n/3 - 2*n*n*n + 116*n*n*n*n/45,
		7*n*n/3 - 8*n*n*n/5 - 227*n*n*n*n/45,
		56*n*n*n/15 - 136*n*n*n*n/35,
		4279 * n * n * n * n / 630,
	}
)

// centralMeridian returns the central meridian of a UTM zone in radians.
func centralMeridian(zone int) float64 {
	return float64(zone*6-183) * math.Pi / 180
}

// geographicToUTM projects geographic coordinates in degrees onto the given
// UTM zone, returning easting and northing in metres.
func geographicToUTM(lon, lat float64, zone int) (east, north float64) {
	phi := lat * math.Pi / 180
	dLam := lon*math.Pi/180 - centralMeridian(zone)

	// conformal latitude, expressed through its tangent
	tau := math.Tan(phi)
	tauC := math.Sinh(math.Asinh(tau) - ecc*math.Atanh(ecc*math.Sin(phi)))

	xiC := math.Atan2(tauC, math.Cos(dLam))
	etaC := math.Asinh(math.Sin(dLam) / math.Hypot(tauC, math.Cos(dLam)))

	xi, eta := xiC, etaC
	for j, a := range kAlpha {
		k := 2 * float64(j+1)
		xi += a * math.Sin(k*xiC) * math.Cosh(k*etaC)
		eta += a * math.Cos(k*xiC) * math.Sinh(k*etaC)
	}

	east = utmFalseEasting + utmScale*rectRadius*eta
	north = utmScale * rectRadius * xi
	return east, north
}

// utmToGeographic inverts geographicToUTM, returning degrees.
func utmToGeographic(east, north float64, zone int) (lon, lat float64) {
	xi := north / (utmScale * rectRadius)
	eta := (east - utmFalseEasting) / (utmScale * rectRadius)

	xiC, etaC := xi, eta
	for j, b := range kBeta {
		k := 2 * float64(j+1)
		xiC -= b * math.Sin(k*xi) * math.Cosh(k*eta)
		etaC -= b * math.Cos(k*xi) * math.Sinh(k*eta)
	}

	chi := math.Asin(math.Sin(xiC) / math.Cosh(etaC))
	phi := chi
	for j, d := range kDelta {
		k := 2 * float64(j+1)
		phi += d * math.Sin(k*chi)
	}

	lam := centralMeridian(zone) + math.Atan2(math.Sinh(etaC), math.Cos(xiC))
	return lam * 180 / math.Pi, phi * 180 / math.Pi
}
