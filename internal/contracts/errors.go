package contracts

import "errors"

// Pipeline sentinel errors, matched with errors.Is by callers
var (
	// ErrRegionNotFound the selected region is not in the dataset
	ErrRegionNotFound = errors.New("region not found")

	// ErrInsufficientData the region has fewer than 2 dated observations
	ErrInsufficientData = errors.New("insufficient data for this region")
)
