package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appscan "github.com/turtacn/LabelScan-Intelligence/internal/application/scan"
	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/LabelScan-Intelligence/internal/testutil"
	apperrors "github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

const testOwner = "user-1"

func newScanRouter(svc *mockScanService) (http.Handler, *testutil.MockLogger) {
	log := testutil.NewMockLogger()
	h := NewScanHandler(svc, log, 0)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithOwner(req.Context(), testOwner)))
		})
	})
	r.Post("/evaluate", h.Evaluate)
	r.Post("/scans", h.Create)
	r.Get("/scans", h.List)
	r.Get("/scans/{id}", h.Get)
	r.Patch("/scans/{id}/frequency", h.UpdateFrequency)
	r.Delete("/scans/{id}", h.Delete)
	r.Get("/scans/{id}/image", h.ImageURL)
	return r, log
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func sampleScan() *domainscan.Scan {
	return &domainscan.Scan{ID: "scan-1", OwnerID: testOwner, Name: "Cookies", Frequency: scoring.FrequencyWeekly, Score: 72, Grade: scoring.GradeC}
}

func TestEvaluate(t *testing.T) {
	svc := &mockScanService{}
	res := &scoring.ScoreResult{Score: 88, Grade: scoring.GradeB, Meaning: scoring.MeaningGood}
	svc.On("Evaluate", mock.Anything, "sugar, salt", scoring.FrequencyDaily).Return(res, nil)
	h, _ := newScanRouter(svc)

	rec := do(t, h, http.MethodPost, "/evaluate",
		strings.NewReader(`{"text":"Nutrition facts Ingredients: sugar, salt","frequency":"daily","extract_from_ocr":true}`), "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	var got scoring.ScoreResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 88, got.Score)
	svc.AssertExpectations(t)
}

func TestEvaluate_BadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
		code apperrors.ErrorCode
	}{
		{"empty body", ``, apperrors.ErrCodeBadRequest},
		{"malformed", `{"text":`, apperrors.ErrCodeBadRequest},
		{"unknown field", `{"text":"a","frequency":"Daily","extra":1}`, apperrors.ErrCodeBadRequest},
		{"unknown frequency", `{"text":"a","frequency":"Hourly"}`, apperrors.ErrCodeInvalidFrequency},
		{"missing frequency", `{"text":"a"}`, apperrors.ErrCodeInvalidFrequency},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := &mockScanService{}
			h, _ := newScanRouter(svc)
			rec := do(t, h, http.MethodPost, "/evaluate", strings.NewReader(tc.body), "application/json")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(tc.code), decodeError(t, rec).Code)
			svc.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestEvaluate_ServerErrorIsMasked(t *testing.T) {
	svc := &mockScanService{}
	svc.On("Evaluate", mock.Anything, "x", scoring.FrequencyRare).
		Return(nil, apperrors.Wrap(io.ErrUnexpectedEOF, apperrors.ErrCodeDatabaseError, "pq: connection reset"))
	h, log := newScanRouter(svc)

	rec := do(t, h, http.MethodPost, "/evaluate", strings.NewReader(`{"text":"x","frequency":"Rare"}`), "application/json")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, string(apperrors.ErrCodeDatabaseError), body.Code)
	assert.NotContains(t, body.Message, "pq:")
	assert.True(t, log.HasMessage("error", "request failed"))
}

func TestCreate_JSON(t *testing.T) {
	svc := &mockScanService{}
	svc.On("Submit", mock.Anything, &appscan.SubmitRequest{
		OwnerID: testOwner, Name: "Cookies", Text: "sugar", Frequency: scoring.FrequencyWeekly,
	}).Return(sampleScan(), nil)
	h, _ := newScanRouter(svc)

	rec := do(t, h, http.MethodPost, "/scans", strings.NewReader(`{"name":"Cookies","text":"sugar","frequency":"Weekly"}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/scans/scan-1", rec.Header().Get("Location"))
	svc.AssertExpectations(t)
}

func TestCreate_Multipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", "INGREDIENTS: palm oil"))
	require.NoError(t, mw.WriteField("frequency", "Daily"))
	require.NoError(t, mw.WriteField("extract_from_ocr", "true"))
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="image"; filename="label.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	var (
		captured *appscan.SubmitRequest
		data     []byte
	)
	svc := &mockScanService{}
	svc.On("Submit", mock.Anything, mock.AnythingOfType("*scan.SubmitRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*appscan.SubmitRequest)
			data, _ = io.ReadAll(captured.Image.Reader)
		}).
		Return(sampleScan(), nil)
	h, _ := newScanRouter(svc)

	rec := do(t, h, http.MethodPost, "/scans", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, captured)
	require.NotNil(t, captured.Image)
	assert.Equal(t, testOwner, captured.OwnerID)
	assert.True(t, captured.ExtractFromOCR)
	assert.Equal(t, scoring.FrequencyDaily, captured.Frequency)
	assert.Equal(t, "INGREDIENTS: palm oil", captured.Text)
	assert.Equal(t, "image/png", captured.Image.ContentType)
	assert.Equal(t, "label.png", captured.Image.Filename)
	assert.Equal(t, int64(len("\x89PNG fake")), captured.Image.Size)
	assert.Equal(t, "\x89PNG fake", string(data))
}

func TestCreate_MultipartBadBool(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", "sugar"))
	require.NoError(t, mw.WriteField("frequency", "Daily"))
	require.NoError(t, mw.WriteField("extract_from_ocr", "maybe"))
	require.NoError(t, mw.Close())

	h, _ := newScanRouter(&mockScanService{})
	rec := do(t, h, http.MethodPost, "/scans", &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_EmptyText(t *testing.T) {
	svc := &mockScanService{}
	svc.On("Submit", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.ErrCodeScanTextEmpty, "no ingredient text to score"))
	h, _ := newScanRouter(svc)

	rec := do(t, h, http.MethodPost, "/scans", strings.NewReader(`{"text":"  ","frequency":"Weekly"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no ingredient text to score", decodeError(t, rec).Message)
}

func TestList(t *testing.T) {
	svc := &mockScanService{}
	page := &appscan.HistoryPage{Items: []*domainscan.Scan{sampleScan()}, Total: 1, Page: 2, PageSize: 5}
	svc.On("History", mock.Anything, testOwner, appscan.HistoryQuery{
		Page: 2, PageSize: 5, Frequency: scoring.FrequencyWeekly, Grade: scoring.GradeC,
	}).Return(page, nil)
	h, _ := newScanRouter(svc)

	rec := do(t, h, http.MethodGet, "/scans?page=2&page_size=5&frequency=weekly&grade=c", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got appscan.HistoryPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "scan-1", got.Items[0].ID)
}

func TestList_InvalidFilters(t *testing.T) {
	h, _ := newScanRouter(&mockScanService{})
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/scans?frequency=sometimes", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/scans?grade=E", nil, "").Code)
}

func TestGet_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"found", nil, http.StatusOK},
		{"missing", apperrors.New(apperrors.ErrCodeScanNotFound, "scan not found"), http.StatusNotFound},
		{"other owner", apperrors.New(apperrors.ErrCodeScanForbidden, "scan belongs to another user"), http.StatusForbidden},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := &mockScanService{}
			if tc.err == nil {
				svc.On("Get", mock.Anything, testOwner, "scan-1").Return(sampleScan(), nil)
			} else {
				svc.On("Get", mock.Anything, testOwner, "scan-1").Return(nil, tc.err)
			}
			h, _ := newScanRouter(svc)
			rec := do(t, h, http.MethodGet, "/scans/scan-1", nil, "")
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestUpdateFrequency(t *testing.T) {
	svc := &mockScanService{}
	updated := sampleScan()
	updated.Frequency = scoring.FrequencyRare
	svc.On("Recompute", mock.Anything, testOwner, "scan-1", scoring.FrequencyRare).Return(updated, nil)
	h, _ := newScanRouter(svc)

	rec := do(t, h, http.MethodPatch, "/scans/scan-1/frequency", strings.NewReader(`{"frequency":"rare"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domainscan.Scan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, scoring.FrequencyRare, got.Frequency)

	rec = do(t, h, http.MethodPatch, "/scans/scan-1/frequency", strings.NewReader(`{"frequency":"never"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNumberOfCalls(t, "Recompute", 1)
}

func TestDelete(t *testing.T) {
	svc := &mockScanService{}
	svc.On("Delete", mock.Anything, testOwner, "scan-1").Return(nil)
	svc.On("Delete", mock.Anything, testOwner, "scan-2").Return(apperrors.New(apperrors.ErrCodeScanNotFound, "scan not found"))
	h, _ := newScanRouter(svc)

	rec := do(t, h, http.MethodDelete, "/scans/scan-1", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/scans/scan-2", nil, "").Code)
}

func TestImageURL(t *testing.T) {
	svc := &mockScanService{}
	svc.On("ImageURL", mock.Anything, testOwner, "scan-1").Return("https://minio/labelscan-images/x?sig", nil)
	h, _ := newScanRouter(svc)

	rec := do(t, h, http.MethodGet, "/scans/scan-1/image", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got ImageURLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "https://minio/labelscan-images/x?sig", got.URL)
}

//Personal.AI order the ending
