// Package ppu draws debug views of video memory as seen through the PPU bus.
package ppu

import (
	"image"
	"image/color"

	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
)

// Reader is the PPU bus the views are decoded from. Reads must not have
// side effects.
type Reader interface {
	PPURead(addr uint16) byte
}

// Palette maps the four 2-bit pixel values to colors.
type Palette [4]color.RGBA

// Grayscale is the palette used when the game palette is not wanted.
var Grayscale = Palette{colornames.Black, colornames.Dimgray, colornames.Darkgray, colornames.White}

const (
	PatternTableSize = 128
	NametableWidth   = 256
	NametableHeight  = 240
)

// PatternTable decodes pattern table i (0 or 1) into a 128x128 image.
func PatternTable(r Reader, i int, pal Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, PatternTableSize, PatternTableSize))
	base := uint16(i&1) * 0x1000
	for tileY := 0; tileY < 16; tileY++ {
		for tileX := 0; tileX < 16; tileX++ {
			offset := uint16(tileY*256 + tileX*16)
			drawTile(img, r, base+offset, tileX*8, tileY*8, pal)
		}
	}
	return img
}

// PatternTables places both pattern tables side by side, table 0 on the left.
func PatternTables(r Reader, pal Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2*PatternTableSize, PatternTableSize))
	for i := 0; i < 2; i++ {
		pt := PatternTable(r, i, pal)
		draw.Draw(img, pt.Bounds().Add(image.Pt(i*PatternTableSize, 0)), pt, image.Point{}, draw.Src)
	}
	return img
}

// Nametables draws the four logical nametables ($2000, $2400, $2800,
// $2C00) as a 2x2 grid, using pattern table i for tiles. Attributes are
// ignored, so mirrored tables show up as identical quadrants.
func Nametables(r Reader, i int, pal Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2*NametableWidth, 2*NametableHeight))
	base := uint16(i&1) * 0x1000
	for nt := 0; nt < 4; nt++ {
		ntAddr := 0x2000 + uint16(nt)*0x400
		ox := (nt % 2) * NametableWidth
		oy := (nt / 2) * NametableHeight
		for row := 0; row < 30; row++ {
			for col := 0; col < 32; col++ {
				tile := r.PPURead(ntAddr + uint16(row*32+col))
				drawTile(img, r, base+uint16(tile)*16, ox+col*8, oy+row*8, pal)
			}
		}
	}
	return img
}

func drawTile(img *image.RGBA, r Reader, addr uint16, x0, y0 int, pal Palette) {
	for row := uint16(0); row < 8; row++ {
		tileLSB := r.PPURead(addr + row)
		tileMSB := r.PPURead(addr + row + 8)

		for col := 0; col < 8; col++ {
			pixel := (tileLSB & 0x01) | ((tileMSB & 0x01) << 1)
			tileLSB >>= 1
			tileMSB >>= 1

			// Decode from right to left
			img.SetRGBA(x0+(7-col), y0+int(row), pal[pixel])
		}
	}
}

// Scale enlarges img by an integer factor without smoothing.
func Scale(img image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
