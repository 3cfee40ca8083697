// Command imgconv renders the kernel's boot banner to a fixed-size bitmap
// and emits it in a packed [width][height][ARGB8888 pixels] binary form.
// No package in this repository reads that file. It is a hosted, ordinary-Go command that runs on the
// developer's workstation at build time, it is never linked into the
// kernel binary itself. Adapted from teacher's tools/imageconvert/main.go
// (CLI shape and output wire format), retargeted from decoding an input
// image file to rasterizing text with gg + freetype, the stack the
// teacher's sibling mazboot/golang variant wires for its own boot splash.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
)

const (
	canvasWidth  = 640
	canvasHeight = 120
	fontSize     = 28
)

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: imgconv <banner.ttf> <text> <out.bin> [width height]\n")
	fmt.Fprintf(os.Stderr, "Renders text to a bitmap and packs it for kernel embedding.\n")
	fmt.Fprintf(os.Stderr, "Output format:\n")
	fmt.Fprintf(os.Stderr, "  4 bytes: width (uint32 little-endian)\n")
	fmt.Fprintf(os.Stderr, "  4 bytes: height (uint32 little-endian)\n")
	fmt.Fprintf(os.Stderr, "  width*height*4 bytes: ARGB8888 pixel data\n")
}

// renderBanner draws text centered on a canvasWidth x canvasHeight white
// canvas using font at fontPath, returning the drawing context that holds
// the rendered image.
func renderBanner(fontPath, text string) (*gg.Context, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := gg.NewContext(canvasWidth, canvasHeight)
	ctx.SetRGB(1, 1, 1)
	ctx.Clear()
	ctx.SetRGB(0, 0, 0)

	face := truetype.NewFace(parsed, &truetype.Options{Size: fontSize})
	ctx.SetFontFace(face)

	ctx.DrawStringAnchored(text, canvasWidth/2, canvasHeight/2, 0.5, 0.5)
	return ctx, nil
}

// downsample resizes src to width x height using golang.org/x/image/draw's
// higher-quality scaler, so output assets can be produced at a larger
// render resolution than the final embedded size.
func downsample(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func packARGB8888(img *image.RGBA, out *os.File) (int, error) {
	bounds := img.Bounds()
	width := uint32(bounds.Dx())
	height := uint32(bounds.Dy())

	if err := binary.Write(out, binary.LittleEndian, width); err != nil {
		return 0, fmt.Errorf("writing width: %w", err)
	}
	if err := binary.Write(out, binary.LittleEndian, height); err != nil {
		return 0, fmt.Errorf("writing height: %w", err)
	}

	pixelCount := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			r8 := uint8(r / 257)
			g8 := uint8(g / 257)
			b8 := uint8(b / 257)
			a8 := uint8(a / 257)

			pixel := uint32(a8)<<24 | uint32(r8)<<16 | uint32(g8)<<8 | uint32(b8)
			if err := binary.Write(out, binary.LittleEndian, pixel); err != nil {
				return pixelCount, fmt.Errorf("writing pixel data: %w", err)
			}
			pixelCount++
		}
	}
	return pixelCount, nil
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 3 && flag.NArg() != 5 {
		usage()
		os.Exit(1)
	}

	fontPath := flag.Arg(0)
	text := flag.Arg(1)
	outputPath := flag.Arg(2)

	width, height := canvasWidth, canvasHeight
	if flag.NArg() == 5 {
		if _, err := fmt.Sscanf(flag.Arg(3), "%d", &width); err != nil {
			fatalf("invalid width: %v", err)
		}
		if _, err := fmt.Sscanf(flag.Arg(4), "%d", &height); err != nil {
			fatalf("invalid height: %v", err)
		}
	}

	ctx, err := renderBanner(fontPath, text)
	if err != nil {
		fatalf("rendering banner: %v", err)
	}

	scaled := ctx.Image()
	if width != canvasWidth || height != canvasHeight {
		scaled = downsample(scaled, width, height)
	}
	rgba, ok := scaled.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(scaled.Bounds())
		draw.Draw(rgba, rgba.Bounds(), scaled, image.Point{}, draw.Src)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		fatalf("creating output file: %v", err)
	}
	defer outFile.Close()

	pixelCount, err := packARGB8888(rgba, outFile)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Wrote %d pixels to %s\n", pixelCount, outputPath)
	if info, err := outFile.Stat(); err == nil {
		fmt.Printf("Output file size: %d bytes\n", info.Size())
	}
}
