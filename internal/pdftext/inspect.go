package pdftext

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info describes the layout of a PDF.
type Info struct {
	PageCount  int
	ImagePages []int // pages carrying at least one image XObject
}

// Inspect reads the page count and the pages that carry images.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return Info{}, fmt.Errorf("pdfcpu read: %w", err)
	}
	info := Info{PageCount: ctx.PageCount}
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
			info.ImagePages = append(info.ImagePages, pageNr)
		}
	}
	return info, nil
}
