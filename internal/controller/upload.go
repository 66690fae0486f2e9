package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"copyflow-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

func openUpload(fh *multipart.FileHeader) (dto.UploadFile, error) {
	f, err := fh.Open()
	if err != nil {
		return dto.UploadFile{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return dto.UploadFile{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return dto.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formFile reads the first of the given multipart fields that is present.
func formFile(ctx *fiber.Ctx, fields ...string) (dto.UploadFile, bool, error) {
	for _, field := range fields {
		fh, err := ctx.FormFile(field)
		if err != nil {
			continue
		}
		file, err := openUpload(fh)
		return file, true, err
	}
	return dto.UploadFile{}, false, nil
}

// requireFormFile is formFile answering 400 when no field is present.
func requireFormFile(ctx *fiber.Ctx, fields ...string) (dto.UploadFile, error) {
	file, ok, err := formFile(ctx, fields...)
	if err != nil {
		return dto.UploadFile{}, err
	}
	if !ok {
		return dto.UploadFile{}, fiber.NewError(fiber.StatusBadRequest, "No file provided")
	}
	return file, nil
}

// pageUploads collects a page's sources: a repeated "files" field, or
// file/doc1 followed by file2/doc2.
func pageUploads(ctx *fiber.Ctx) ([]dto.UploadFile, error) {
	if form, err := ctx.MultipartForm(); err == nil && len(form.File["files"]) > 0 {
		files := make([]dto.UploadFile, 0, len(form.File["files"]))
		for _, fh := range form.File["files"] {
			file, err := openUpload(fh)
			if err != nil {
				return nil, err
			}
			files = append(files, file)
		}
		return files, nil
	}

	var files []dto.UploadFile
	for _, fields := range [][]string{{"file", "file1", "doc1"}, {"file2", "doc2"}} {
		file, ok, err := formFile(ctx, fields...)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, file)
		}
	}
	if len(files) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No file provided")
	}
	return files, nil
}

// parseKeywords accepts a JSON list, as the web client sends in
// words_to_anonymize, or a comma separated list.
func parseKeywords(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			list = append(list, k)
		}
	}
	return list
}

// parseOptionalBody leaves req untouched when the request has no body.
func parseOptionalBody(ctx *fiber.Ctx, req interface{}) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

func sendAttachment(ctx *fiber.Ctx, data []byte, filename, contentType string, inline bool) error {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	ctx.Set(fiber.HeaderContentType, contentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`%s; filename="%s"`, disposition, filename))
	return ctx.Send(data)
}

// param copies a route parameter out of the fasthttp request buffer. Slot
// and page names outlive the request in stores and page sessions.
func param(ctx *fiber.Ctx, key string) string {
	return utils.CopyString(ctx.Params(key))
}
