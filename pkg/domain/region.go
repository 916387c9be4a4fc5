package domain

import dErrors "medvault/pkg/domain-errors"

// Region tags a record with the jurisdiction whose data-protection rules
// apply to it. The set is closed: statistics and retention policy are
// reported per region.
type Region string

const (
	RegionUS Region = "US"
	RegionEU Region = "EU"
)

// validRegions is the single source of truth for supported jurisdictions.
var validRegions = map[Region]bool{
	RegionUS: true,
	RegionEU: true,
}

// Regions lists the supported jurisdictions in stable order.
func Regions() []Region {
	return []Region{RegionUS, RegionEU}
}

// ParseRegion constructs a Region from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRegion(s string) (Region, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "region cannot be empty")
	}
	r := Region(s)
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported region %q", s)
	}
	return r, nil
}

// IsValid checks if the region is one of the supported jurisdictions.
func (r Region) IsValid() bool {
	return validRegions[r]
}

// String returns the string representation of the region.
func (r Region) String() string {
	return string(r)
}
