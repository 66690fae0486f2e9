package ingestion

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

func (e *Extractor) image(src Source, _ Mode) (Content, error) {
	mt := mimetype.Detect(src.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Content{}, fmt.Errorf("content is %s, not an image", mt.String())
	}

	return Content{
		Format: FormatDataURI,
		Body:   "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(src.Data),
	}, nil
}
