// Package fingerprint строит детерминированный ключ дедупликации записей о сделках.
package fingerprint

import (
	"math"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"

	"propintel/internal/lib/mathx"
)

const (
	// CoordScale — множитель перед округлением координат: 1/1000 градуса ≈ 111 м по широте
	CoordScale = 1000
	// AreaBucketSqm — шаг корзины площади, м²
	AreaBucketSqm = 5
	// GeoCellPrecision — длина geohash ячейки (7 символов ≈ 153×153 м)
	GeoCellPrecision = 7
	// MissingBucket — значение корзины при отсутствии величины
	MissingBucket = "na"

	separator = "|"
)

// Input — поля, из которых строится ключ.
type Input struct {
	NormalizedAddress string
	City              *string
	Lat               *float64
	Lon               *float64
	AreaSqm           *float64
}

// Dedupe строит ключ "адрес|город|lat|lon|площадь".
// Ключ не зависит от порядка записей в батче и от мелких различий координат внутри одной ячейки.
func Dedupe(in Input) string {
	city := ""
	if in.City != nil {
		city = strings.ToLower(strings.TrimSpace(*in.City))
	}
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(in.NormalizedAddress)),
		city,
		CoordBucket(in.Lat),
		CoordBucket(in.Lon),
		AreaBucket(in.AreaSqm),
	}, separator)
}

// CoordBucket возвращает round(v×1000) или "na".
func CoordBucket(v *float64) string {
	if v == nil || !mathx.IsFinite(*v) {
		return MissingBucket
	}
	return strconv.FormatInt(int64(math.Round(*v*CoordScale)), 10)
}

// AreaBucket возвращает площадь, округлённую до ближайшего кратного 5 м², или "na".
func AreaBucket(v *float64) string {
	if v == nil || !mathx.IsFinite(*v) {
		return MissingBucket
	}
	return strconv.FormatInt(int64(math.Round(*v/AreaBucketSqm))*AreaBucketSqm, 10)
}

// GeoCell возвращает geohash ячейки для координат или пустую строку.
func GeoCell(lat, lon *float64) string {
	if lat == nil || lon == nil || !mathx.IsFinite(*lat) || !mathx.IsFinite(*lon) {
		return ""
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return ""
	}
	return geohash.EncodeWithPrecision(*lat, *lon, GeoCellPrecision)
}
