package main

import (
	"image"
	"testing"

	"github.com/disintegration/imaging"
)

func TestRenderVariantCropsCards(t *testing.T) {
	// a wide source, like a landscape game screenshot
	src := imaging.New(1600, 900, image.White.C)

	for _, v := range variants {
		out := renderVariant(src, v)
		b := out.Bounds()

		if v.crop {
			if b.Dx() != v.width || b.Dy() != v.height {
				t.Fatalf("%s: expected exact %dx%d card, got %dx%d", v.suffix, v.width, v.height, b.Dx(), b.Dy())
			}
			continue
		}
		if b.Dx() > v.width || b.Dy() > v.height {
			t.Fatalf("%s: expected fit within %dx%d, got %dx%d", v.suffix, v.width, v.height, b.Dx(), b.Dy())
		}
		// fitted variants keep the source aspect ratio
		if b.Dx()*900 != b.Dy()*1600 {
			t.Fatalf("%s: aspect ratio not preserved: %dx%d", v.suffix, b.Dx(), b.Dy())
		}
	}
}

func TestVariantKeyNaming(t *testing.T) {
	v := variant{suffix: "card", width: 400, height: 300, crop: true}
	if got := variantKey("listings/abc/def", v); got != "listings/abc/def_card.jpg" {
		t.Fatalf("unexpected key %q", got)
	}
}
