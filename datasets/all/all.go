// Package all registers every built-in dataset driver.
package all

import (
	// Import the drivers so they register themselves.
	_ "github.com/GBeurier/nirspipe/datasets/csv"
	_ "github.com/GBeurier/nirspipe/datasets/excel"
	_ "github.com/GBeurier/nirspipe/datasets/html"
	_ "github.com/GBeurier/nirspipe/datasets/zip"
)
