package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appscan "github.com/turtacn/LabelScan-Intelligence/internal/application/scan"
	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/intelligence/extractor"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// MaxUploadSize caps multipart scan submissions, image included.
const MaxUploadSize int64 = 12 << 20

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory int64 = 4 << 20

// ScanHandler serves evaluation and scan history endpoints.
type ScanHandler struct {
	svc         appscan.Service
	log         logging.Logger
	maxBodySize int64
}

// NewScanHandler creates a ScanHandler.  maxBodySize bounds JSON bodies.
func NewScanHandler(svc appscan.Service, log logging.Logger, maxBodySize int64) *ScanHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ScanHandler{svc: svc, log: log, maxBodySize: maxBodySize}
}

// EvaluateRequest is the body of POST /api/v1/evaluate.
type EvaluateRequest struct {
	Text           string `json:"text"`
	Frequency      string `json:"frequency"`
	ExtractFromOCR bool   `json:"extract_from_ocr,omitempty"`
}

// CreateScanRequest is the JSON body of POST /api/v1/scans.
type CreateScanRequest struct {
	Name           string `json:"name,omitempty"`
	Text           string `json:"text"`
	Frequency      string `json:"frequency"`
	ExtractFromOCR bool   `json:"extract_from_ocr,omitempty"`
}

// UpdateFrequencyRequest is the body of PATCH /api/v1/scans/{id}/frequency.
type UpdateFrequencyRequest struct {
	Frequency string `json:"frequency"`
}

// ImageURLResponse is the body of GET /api/v1/scans/{id}/image.
type ImageURLResponse struct {
	URL string `json:"url"`
}

// Evaluate handles POST /api/v1/evaluate.  Nothing is persisted.
func (h *ScanHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	freq, err := scoring.ParseFrequency(req.Frequency)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	text := req.Text
	if req.ExtractFromOCR {
		text = extractor.ExtractIngredients(text)
	}

	res, err := h.svc.Evaluate(r.Context(), text, freq)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Create handles POST /api/v1/scans.  It accepts JSON, or multipart form
// data with an optional "image" file part.
func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		req *appscan.SubmitRequest
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req, err = h.parseMultipart(w, r)
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}
	} else {
		req, err = h.parseJSONScan(w, r)
	}
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	if req.Image != nil {
		if c, ok := req.Image.Reader.(io.Closer); ok {
			defer func() { _ = c.Close() }()
		}
	}
	req.OwnerID = ownerFrom(r)

	sc, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	w.Header().Set("Location", "/api/v1/scans/"+sc.ID)
	writeJSON(w, http.StatusCreated, sc)
}

func (h *ScanHandler) parseJSONScan(w http.ResponseWriter, r *http.Request) (*appscan.SubmitRequest, error) {
	var body CreateScanRequest
	if err := decodeJSON(w, r, h.maxBodySize, &body); err != nil {
		return nil, err
	}
	freq, err := scoring.ParseFrequency(body.Frequency)
	if err != nil {
		return nil, err
	}
	return &appscan.SubmitRequest{
		Name:           body.Name,
		Text:           body.Text,
		Frequency:      freq,
		ExtractFromOCR: body.ExtractFromOCR,
	}, nil
}

func (h *ScanHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (*appscan.SubmitRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "malformed multipart form")
	}
	freq, err := scoring.ParseFrequency(r.FormValue("frequency"))
	if err != nil {
		return nil, err
	}
	req := &appscan.SubmitRequest{
		Name:      r.FormValue("name"),
		Text:      r.FormValue("text"),
		Frequency: freq,
	}
	if v := r.FormValue("extract_from_ocr"); v != "" {
		ocr, perr := strconv.ParseBool(v)
		if perr != nil {
			return nil, errors.InvalidParam("extract_from_ocr must be a boolean").WithDetail(v)
		}
		req.ExtractFromOCR = ocr
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == http.ErrMissingFile:
		return req, nil
	case err != nil:
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "unreadable image part")
	}
	req.Image = imageFromPart(file, header)
	return req, nil
}

func imageFromPart(file multipart.File, header *multipart.FileHeader) *domainscan.Image {
	return &domainscan.Image{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}
}

// List handles GET /api/v1/scans.
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := appscan.HistoryQuery{Page: page, PageSize: pageSize}

	if v := r.URL.Query().Get("frequency"); v != "" {
		freq, err := scoring.ParseFrequency(v)
		if err != nil {
			writeAppError(w, h.log, err)
			return
		}
		q.Frequency = freq
	}
	if v := r.URL.Query().Get("grade"); v != "" {
		grade := scoring.Grade(strings.ToUpper(strings.TrimSpace(v)))
		if !grade.Valid() {
			writeAppError(w, h.log, errors.InvalidParam("grade must be one of A-F").WithDetail(v))
			return
		}
		q.Grade = grade
	}

	result, err := h.svc.History(r.Context(), ownerFrom(r), q)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/scans/{id}.
func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	sc, err := h.svc.Get(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// UpdateFrequency handles PATCH /api/v1/scans/{id}/frequency.
func (h *ScanHandler) UpdateFrequency(w http.ResponseWriter, r *http.Request) {
	var req UpdateFrequencyRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	freq, err := scoring.ParseFrequency(req.Frequency)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	sc, err := h.svc.Recompute(r.Context(), ownerFrom(r), chi.URLParam(r, "id"), freq)
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// Delete handles DELETE /api/v1/scans/{id}.
func (h *ScanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), ownerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImageURL handles GET /api/v1/scans/{id}/image.
func (h *ScanHandler) ImageURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.ImageURL(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ImageURLResponse{URL: url})
}

//Personal.AI order the ending
