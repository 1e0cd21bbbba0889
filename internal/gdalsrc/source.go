// Package gdalsrc adapts a GDAL dataset, opened with
// github.com/airbusgeo/godal, to the raster.Source interface so any
// operator in this module can stream blocks out of a real file-backed
// raster without knowing GDAL exists.
package gdalsrc

import (
	"context"
	"fmt"
	"math"

	"github.com/airbusgeo/godal"

	"github.com/geostream/rasterfield/pkg/raster"
)

// Source wraps a single band of an open *godal.Dataset.
type Source struct {
	ds     *godal.Dataset
	band   godal.Band
	nRow   int
	nCol   int
	nLyr   int
	crs    raster.CRSInfo
	nodata float64
}

// Open opens path with GDAL and wraps band bandIndex (0-based) as a
// Source. metersPerUnit should come from the caller's own CRS lookup
// (godal exposes WKT/PROJ text, not a meters-per-unit scalar); pass NaN
// for a geographic dataset.
func Open(path string, bandIndex int, metersPerUnit float64) (*Source, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, &raster.ErrIoFailure{Op: "open " + path, Err: err}
	}
	bands := ds.Bands()
	if bandIndex < 0 || bandIndex >= len(bands) {
		ds.Close()
		return nil, &raster.ErrInvalidInput{Reason: fmt.Sprintf("band index %d out of range (dataset has %d bands)", bandIndex, len(bands))}
	}
	band := bands[bandIndex]
	structure := ds.Structure()

	nodata, ok := band.NoData()
	if !ok {
		nodata = math.NaN()
	}

	lonlat := math.IsNaN(metersPerUnit)
	proj := ds.Projection()
	if proj == "" {
		metersPerUnit = math.NaN()
	}

	return &Source{
		ds:     ds,
		band:   band,
		nRow:   structure.SizeY,
		nCol:   structure.SizeX,
		nLyr:   1,
		crs:    raster.NewCRSInfo(metersPerUnit, lonlat, proj),
		nodata: nodata,
	}, nil
}

// Close releases the underlying GDAL dataset handle.
func (s *Source) Close() error {
	s.ds.Close()
	return nil
}

// ReadBlock reads a window of the wrapped band and maps any declared
// nodata value to NaN, the sentinel every operator in this module reads
// as "missing".
func (s *Source) ReadBlock(_ context.Context, rowStart, nRows, colStart, nCols int) ([]float64, error) {
	buf := make([]float64, nRows*nCols)
	if err := s.band.Read(colStart, rowStart, buf, nCols, nRows); err != nil {
		return nil, &raster.ErrIoFailure{Op: "read gdal block", Err: err}
	}
	if !math.IsNaN(s.nodata) {
		for i, v := range buf {
			if v == s.nodata {
				buf[i] = math.NaN()
			}
		}
	}
	return buf, nil
}

func (s *Source) Dimensions() (int, int, int) {
	return s.nRow, s.nCol, s.nLyr
}

func (s *Source) CRS() raster.CRSInfo {
	return s.crs
}
