package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/services"
)

// memory limit для ParseMultipartForm; всё, что больше, уходит во временные файлы
const multipartMemory = 8 << 20

func formFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (multipart.File, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, "", fmt.Errorf("invalid multipart form: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", fmt.Errorf("form field %q is required", field)
		}
		return nil, "", err
	}
	return file, header.Filename, nil
}

// uploadFiles открывает все части поля; closeAll нужно вызвать после использования.
func uploadFiles(r *http.Request, field string) ([]services.UploadFile, func(), error) {
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[field]
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open %q: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, services.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}
	return files, closeAll, nil
}

// roundFromURL принимает и "Round 1" (URL-encoded), и slug "round-1".
func roundFromURL(raw string) (models.Round, error) {
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	round, ok := models.ParseRound(raw)
	if !ok {
		return "", fmt.Errorf("unknown round %q", raw)
	}
	return round, nil
}
