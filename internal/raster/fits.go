// Public domain.

package raster

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
)

// ReadFITS reads the primary image of a FITS file, with its WCS, as a
// raster of the declared quantity.
func ReadFITS(fn string, q Quantity) (*Raster, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := DecodeFITS(f, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return r, nil
}

// DecodeFITS reads a raster from a FITS stream.
func DecodeFITS(rd io.Reader, q Quantity) (*Raster, error) {
	ff, err := fitsio.Open(rd)
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	img, ok := ff.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("primary HDU is not an image")
	}
	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) < 2 {
		return nil, fmt.Errorf("image has %d axes, need 2", len(axes))
	}
	// degenerate trailing axes, as in cubes with one plane, are accepted
	for _, n := range axes[2:] {
		if n != 1 {
			return nil, fmt.Errorf("image is not two dimensional: axes %v", axes)
		}
	}
	wcs, err := headerWCS(hdr)
	if err != nil {
		return nil, err
	}
	var data []float64
	if err := img.Read(&data); err != nil {
		return nil, err
	}
	w, h := axes[0], axes[1]
	if len(data) != w*h {
		return nil, fmt.Errorf("read %d pixels, header says %dx%d", len(data), w, h)
	}
	return &Raster{W: w, H: h, Data: data, WCS: wcs, Quantity: q}, nil
}

func headerWCS(hdr *fitsio.Header) (*WCS, error) {
	num := func(keys ...string) (float64, error) {
		for _, k := range keys {
			c := hdr.Get(k)
			if c == nil {
				continue
			}
			switch v := c.Value.(type) {
			case float64:
				return v, nil
			case float32:
				return float64(v), nil
			case int:
				return float64(v), nil
			case int64:
				return float64(v), nil
			}
			return 0, fmt.Errorf("header %s: unexpected value %v", k, c.Value)
		}
		return 0, fmt.Errorf("header %s missing", keys[0])
	}
	var w WCS
	var err error
	if w.CRPix1, err = num("CRPIX1"); err != nil {
		return nil, err
	}
	if w.CRPix2, err = num("CRPIX2"); err != nil {
		return nil, err
	}
	if w.CRVal1, err = num("CRVAL1"); err != nil {
		return nil, err
	}
	if w.CRVal2, err = num("CRVAL2"); err != nil {
		return nil, err
	}
	if w.CDelt1, err = num("CDELT1", "CD1_1"); err != nil {
		return nil, err
	}
	if w.CDelt2, err = num("CDELT2", "CD2_2"); err != nil {
		return nil, err
	}
	if w.CDelt1 == 0 || w.CDelt2 == 0 {
		return nil, fmt.Errorf("zero pixel increment")
	}
	w.Proj = ProjTAN
	if c := hdr.Get("CTYPE1"); c != nil {
		if s, ok := c.Value.(string); ok {
			s = strings.TrimSpace(s)
			if len(s) >= 3 {
				switch p := s[len(s)-3:]; p {
				case ProjTAN, ProjCAR:
					w.Proj = p
				default:
					return nil, fmt.Errorf("unsupported projection %q", s)
				}
			}
		}
	}
	return &w, nil
}

// WriteFITS writes r as a 64 bit float primary image with equatorial WCS
// keywords.
func WriteFITS(wr io.Writer, r *Raster) error {
	ff, err := fitsio.Create(wr)
	if err != nil {
		return err
	}
	defer ff.Close()
	img := fitsio.NewImage(-64, []int{r.W, r.H})
	defer img.Close()
	w := r.WCS
	err = img.Header().Append(
		fitsio.Card{Name: "CTYPE1", Value: "RA---" + w.Proj},
		fitsio.Card{Name: "CTYPE2", Value: "DEC--" + w.Proj},
		fitsio.Card{Name: "CRPIX1", Value: w.CRPix1},
		fitsio.Card{Name: "CRPIX2", Value: w.CRPix2},
		fitsio.Card{Name: "CRVAL1", Value: w.CRVal1},
		fitsio.Card{Name: "CRVAL2", Value: w.CRVal2},
		fitsio.Card{Name: "CDELT1", Value: w.CDelt1},
		fitsio.Card{Name: "CDELT2", Value: w.CDelt2},
		fitsio.Card{Name: "BUNIT", Value: string(r.Quantity)},
	)
	if err != nil {
		return err
	}
	if err := img.Write(r.Data); err != nil {
		return err
	}
	return ff.Write(img)
}
