package service

import (
	"strconv"
	"strings"
)

// ShippingOption is one quoted delivery method.
type ShippingOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

// Shipping option ids.
const (
	OptionFreeShipping = "free_shipping"
	OptionCadete       = "cadete"
	OptionDomicilio    = "domicilio"
)

// freeShippingCode is a literal postal code that always quotes free shipping.
// It is ten digits long where Argentine codes have four; kept because the
// storefront depends on it as a promo/debug sentinel.
const freeShippingCode = "3413981584"

// Flat zone costs in ARS.
const (
	zone1Cost  int64 = 7000
	zone2Cost  int64 = 8679 // default for unrecognized codes
	zone3Cost  int64 = 9900
	cadeteCost int64 = 4500
)

// provinceRange maps a numeric postal-code range to a province. Ranges are
// checked in order and the first match wins, so narrower ranges that overlap
// a broader one must be listed first.
type provinceRange struct {
	province string
	min, max int
}

var provinceRanges = []provinceRange{
	{"Ciudad Autónoma de Buenos Aires", 1000, 1499},
	{"Buenos Aires", 1500, 1999},
	{"Santa Fe", 2000, 2999},
	{"Santa Fe", 3000, 3099},
	{"Entre Ríos", 3100, 3299},
	{"Misiones", 3300, 3399},
	{"Corrientes", 3400, 3499},
	// Formosa codes sit inside the broader Chaco block, so they go first.
	{"Formosa", 3600, 3649},
	{"Chaco", 3500, 3749},
	{"Tucumán", 4000, 4199},
	{"Santiago del Estero", 4200, 4399},
	{"Salta", 4400, 4599},
	{"Jujuy", 4600, 4699},
	{"Catamarca", 4700, 4799},
	{"Córdoba", 5000, 5299},
	{"La Rioja", 5300, 5399},
	{"San Juan", 5400, 5499},
	{"Mendoza", 5500, 5699},
	{"San Luis", 5700, 5899},
	{"La Pampa", 6200, 6399},
	{"Buenos Aires", 6000, 7999},
	{"Neuquén", 8300, 8399},
	{"Río Negro", 8400, 8599},
	{"Chubut", 9000, 9299},
	// Tierra del Fuego codes sit inside the Santa Cruz block.
	{"Tierra del Fuego", 9410, 9449},
	{"Santa Cruz", 9300, 9499},
}

// zone1 and zone3 provinces; everything else quotes the zone 2 default.
var provinceZones = map[string]int64{
	"Ciudad Autónoma de Buenos Aires": zone1Cost,
	"Buenos Aires":                    zone1Cost,
	"Santa Fe":                        zone1Cost,
	"Neuquén":                         zone3Cost,
	"Río Negro":                       zone3Cost,
	"Chubut":                          zone3Cost,
	"Santa Cruz":                      zone3Cost,
	"Tierra del Fuego":                zone3Cost,
}

// cadeteCodes are local postal codes (Rosario and surroundings) served by a
// cheaper courier in addition to regular home delivery.
var cadeteCodes = map[string]bool{
	"2000": true, "2001": true, "2002": true, "2003": true,
	"2004": true, "2005": true, "2006": true, "2007": true,
	"2008": true, "2009": true, "2010": true, "2011": true,
}

// ShippingService quotes delivery options for a postal code. It is a pure
// lookup: the same code always yields the same options, and any non-empty
// input gets at least one quote.
type ShippingService struct{}

// NewShippingService creates a new ShippingService.
func NewShippingService() *ShippingService {
	return &ShippingService{}
}

// Quote returns the ordered list of shipping options for a postal code.
func (s *ShippingService) Quote(postalCode string) []ShippingOption {
	code := normalizePostalCode(postalCode)

	if code == freeShippingCode {
		return []ShippingOption{
			{ID: OptionFreeShipping, Name: "Envío gratis", Cost: 0},
		}
	}

	cost := zone2Cost
	if province, ok := provinceFor(code); ok {
		if zoneCost, ok := provinceZones[province]; ok {
			cost = zoneCost
		}
	}

	options := []ShippingOption{}
	if cadeteCodes[code] {
		options = append(options, ShippingOption{
			ID: OptionCadete, Name: "Cadete (entrega local)", Cost: cadeteCost,
		})
	}

	return append(options, ShippingOption{
		ID: OptionDomicilio, Name: "Envío a domicilio", Cost: cost,
	})
}

// ProvinceFor resolves the province for a postal code, if recognized.
func (s *ShippingService) ProvinceFor(postalCode string) (string, bool) {
	return provinceFor(normalizePostalCode(postalCode))
}

func provinceFor(code string) (string, bool) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return "", false
	}

	for _, r := range provinceRanges {
		if n >= r.min && n <= r.max {
			return r.province, true
		}
	}

	return "", false
}

// normalizePostalCode trims whitespace and strips the letters of CPA-format
// codes ("S2000ABC" -> "2000"), leaving the numeric core.
func normalizePostalCode(postalCode string) string {
	code := strings.TrimSpace(postalCode)

	digits := strings.Builder{}
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	if digits.Len() == 0 {
		return code
	}
	return digits.String()
}
