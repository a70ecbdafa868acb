package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-excelproc/internal/automation"
	"go-excelproc/internal/formctl"
	"go-excelproc/internal/jobs"
	"go-excelproc/internal/sheet"
)

func newTestHandler(t *testing.T) (*APIHandler, http.Handler) {
	t.Helper()
	jm := jobs.NewManager(context.Background(), automation.NewDryRun(nil), nil)
	h := NewAPIHandler(jm, t.TempDir(), nil)

	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Post("/upload", h.Upload)
	r.Post("/records", h.SubmitRecord)
	r.Get("/api/jobs", h.ListJobs)
	r.Get("/api/jobs/{jobID}", h.GetJob)
	r.Get("/api/health", h.Health)
	return h, r
}

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// multipartBody builds a form with one file part; a nil content writes a
// part with an empty filename the way browsers do when nothing is chosen.
func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if content != nil || filename != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField(field, ""))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func upload(t *testing.T, srv http.Handler, field, filename string, content []byte) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	body, ct := multipartBody(t, field, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return rr, resp
}

func TestIndex(t *testing.T) {
	_, srv := newTestHandler(t)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	for _, id := range []string{`id="uploadForm"`, `id="file"`, `id="uploadBtn"`, `id="dataForm"`, `data-bs-toggle="tooltip"`} {
		assert.Contains(t, body, id)
	}
	assert.Contains(t, body, "16 MB")
	assert.NotContains(t, body, "formctl.wasm")
}

func TestUploadSuccess(t *testing.T) {
	h, srv := newTestHandler(t)
	data := workbook(t,
		[]any{"usuario", "clave"},
		[]any{"ana", "1"},
		[]any{"luis", "2"},
	)

	rr, resp := upload(t, srv, "file", "Usuarios.XLSX", data)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, formctl.SeveritySuccess, resp.Severity)
	assert.Equal(t, "Archivo Excel cargado exitosamente. Procesando 2 usuario(s) en segundo plano.", resp.Message)
	assert.Equal(t, 2, resp.Total)
	require.NotEmpty(t, resp.JobID)

	h.Jobs.Wait()
	job, ok := h.Jobs.GetJob(resp.JobID)
	require.True(t, ok)
	v := job.View()
	assert.Equal(t, jobs.StatusDone, v.Status)
	assert.Equal(t, 2, v.Processed)

	entries, err := os.ReadDir(h.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "stored workbook is removed after the job")
}

func TestUploadRejections(t *testing.T) {
	_, srv := newTestHandler(t)
	valid := workbook(t, []any{"usuario"}, []any{"ana"})

	tests := []struct {
		name     string
		field    string
		filename string
		content  []byte
		status   int
		message  string
	}{
		{"missing part", "other", "x.xlsx", valid, http.StatusBadRequest, MsgNoFilePart},
		{"nothing selected", "file", "", nil, http.StatusBadRequest, MsgNoFileSelected},
		{"no extension", "file", "usuarios", valid, http.StatusBadRequest, MsgNotAllowed},
		{"wrong extension", "file", "usuarios.csv", valid, http.StatusBadRequest, MsgNotAllowed},
		{"not a workbook", "file", "usuarios.xlsx", []byte("usuario,clave\nana,1\n"), http.StatusBadRequest, MsgNotWorkbook},
		{"empty sheet", "file", "vacio.xlsx", workbook(t), http.StatusUnprocessableEntity, MsgParseFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, resp := upload(t, srv, tc.field, tc.filename, tc.content)
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.status, resp.Code)
			assert.Equal(t, formctl.SeverityError, resp.Severity)
			assert.True(t, strings.HasPrefix(resp.Message, tc.message), resp.Message)
		})
	}
}

func TestUploadParseFailureNamesOriginalFile(t *testing.T) {
	h, srv := newTestHandler(t)

	rr, resp := upload(t, srv, "file", "vacio.xlsx", workbook(t))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, MsgParseFailed+"vacio.xlsx: "+sheet.ErrEmptySheet.Error(), resp.Message)
	assert.NotContains(t, resp.Message, "read ")
	assert.NotContains(t, resp.Message, "-vacio.xlsx", "stored name must not leak")

	entries, err := os.ReadDir(h.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "unreadable upload is removed")
}

func TestUploadOversize(t *testing.T) {
	_, srv := newTestHandler(t)
	big := make([]byte, formctl.MaxFileSize+2*multipartSlack)
	copy(big, "PK\x03\x04")

	rr, resp := upload(t, srv, "file", "grande.xlsx", big)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, formctl.MsgOversize, resp.Message)
}

func TestUploadHTMLBanner(t *testing.T) {
	_, srv := newTestHandler(t)
	body, ct := multipartBody(t, "file", "notas.txt", []byte("<script>"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "alert alert-danger alert-dismissible fade show")
	assert.Contains(t, rr.Body.String(), "Solo se permiten archivos .xlsx o .xls")
}

func TestSubmitRecord(t *testing.T) {
	h, srv := newTestHandler(t)

	form := url.Values{"usuario": {" ana "}, "clave": {"1"}, "ignored": {"x"}}
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, MsgRecordQueued, resp.Message)

	h.Jobs.Wait()
	job, ok := h.Jobs.GetJob(resp.JobID)
	require.True(t, ok)
	require.Len(t, job.Records, 1)
	assert.Equal(t, map[string]string{"usuario": "ana", "clave": "1"}, job.Records[0].Fields)
}

func TestSubmitRecordEmpty(t *testing.T) {
	_, srv := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader("usuario=++"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), MsgEmptyRecord)
}

func TestJobsEndpoints(t *testing.T) {
	h, srv := newTestHandler(t)
	job := h.Jobs.Start("a.xlsx", nil, nil)
	h.Jobs.Wait()

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var views []jobs.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, job.ID, views[0].ID)

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var v jobs.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, jobs.StatusDone, v.Status)

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestWantsJSON(t *testing.T) {
	cases := map[string]bool{
		"":                                   false,
		"application/json":                   true,
		"application/json; charset=utf-8":    true,
		"text/html,application/json":         false,
		"application/json, application/json": true,
		"*/*":                                false,
	}
	for accept, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", accept)
		assert.Equal(t, want, wantsJSON(req), accept)
	}
}
