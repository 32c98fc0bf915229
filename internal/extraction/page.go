package extraction

import (
	"bytes"
	"log/slog"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var pdfMagic = []byte("%PDF-")

// Page is the single designated page handed to an Adapter.
type Page struct {
	Data     []byte
	Filename string
	Number   int
}

// PreparePage isolates the designated page from the raw submission bytes
// and reports the total page count. PDF input is trimmed to the single
// page via pdfcpu; anything else passes through as one page. Preparation
// never fails hard: unreadable PDF bytes pass through untouched so the
// extraction adapter records the degradation instead.
func PreparePage(data []byte, filename string, number int, logger *slog.Logger) (Page, int) {
	if number < 1 {
		number = 1
	}

	page := Page{Data: data, Filename: filename, Number: number}

	if !bytes.HasPrefix(data, pdfMagic) {
		page.Number = 1
		return page, 1
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("pdf page count failed, passing bytes through", "filename", filename, "error", err)
		return page, 1
	}

	if number > count {
		number = 1
		page.Number = 1
	}

	if count > 1 {
		var trimmed bytes.Buffer
		if err := api.Trim(bytes.NewReader(data), &trimmed, []string{strconv.Itoa(number)}, nil); err != nil {
			logger.Warn("pdf page trim failed, passing full document", "filename", filename, "page", number, "error", err)
			return page, count
		}
		page.Data = trimmed.Bytes()
	}

	return page, count
}
