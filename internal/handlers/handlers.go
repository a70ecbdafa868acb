// Package handlers provides the HTTP handlers of the spreadsheet processor.
//
// This package serves the upload page, accepts Excel uploads and manual
// records, starts background jobs for them and reports job status.
//
// Example usage:
//
//	h := handlers.NewAPIHandler(jobManager, uploadDir, log)
//	r := chi.NewRouter()
//	r.Post("/upload", h.Upload)
//
// Form handlers answer with the page and a banner, or with JSON when the
// client accepts only application/json. All handlers are designed to be used
// with the chi router.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go-excelproc/internal/formctl"
	"go-excelproc/internal/jobs"
	"go-excelproc/internal/sheet"
	"go-excelproc/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartSlack covers the multipart framing around a file at the size limit.
const multipartSlack = 1 << 20

// Banner texts of the server side checks.
const (
	MsgNoFilePart     = "No se envió ningún archivo"
	MsgNoFileSelected = "No se seleccionó ningún archivo"
	MsgNotAllowed     = "Archivo no permitido. Solo se permiten archivos .xlsx o .xls"
	MsgNotWorkbook    = "El archivo no es un libro de Excel válido"
	MsgParseFailed    = "Error al procesar el archivo: "
	MsgEmptyRecord    = "Complete al menos un campo del formulario"
	MsgRecordQueued   = "Registro recibido. Procesando en segundo plano."
)

type APIHandler struct {
	Jobs      *jobs.Manager
	UploadDir string
	// WASM enables the WebAssembly controller bootstrap on the page.
	WASM bool
	log  *zap.Logger
}

func NewAPIHandler(jm *jobs.Manager, uploadDir string, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIHandler{Jobs: jm, UploadDir: uploadDir, log: log}
}

// Response is the JSON body of form routes.
type Response struct {
	Code     int              `json:"code"`
	Message  string           `json:"message"`
	Severity formctl.Severity `json:"severity"`
	JobID    string           `json:"jobId,omitempty"`
	Total    int              `json:"total,omitempty"`
}

// Index godoc
// @Summary      Upload page
// @Description  Renders the upload form and the manual record form
// @Tags         pages
// @Produce      html
// @Success      200  {string}  string  "HTML page"
// @Router       / [get]
func (h *APIHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, http.StatusOK, nil)
}

// Upload godoc
// @Summary      Upload an Excel file
// @Description  Stores the workbook, reads its rows and processes them in the background
// @Tags         files
// @Accept       multipart/form-data
// @Produce      html,json
// @Param        file  formData  file  true  "Excel workbook (.xlsx or .xls)"
// @Success      200  {object}  Response
// @Failure      400  {object}  Response  "Missing, oversized or unsupported file"
// @Failure      422  {object}  Response  "Workbook could not be read"
// @Router       /upload [post]
func (h *APIHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, formctl.MaxFileSize+multipartSlack)
	if err := r.ParseMultipartForm(formctl.MaxFileSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, http.StatusBadRequest, formctl.MsgOversize)
			return
		}
		h.fail(w, r, http.StatusBadRequest, MsgNoFilePart)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		// Browsers send an empty part with no filename when nothing was chosen;
		// multipart keeps such parts as plain values.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			h.fail(w, r, http.StatusBadRequest, MsgNoFileSelected)
			return
		}
		h.fail(w, r, http.StatusBadRequest, MsgNoFilePart)
		return
	}
	defer file.Close()

	if handler.Filename == "" {
		h.fail(w, r, http.StatusBadRequest, MsgNoFileSelected)
		return
	}
	if !sheet.AllowedFile(handler.Filename) {
		h.fail(w, r, http.StatusBadRequest, MsgNotAllowed)
		return
	}
	if handler.Size > formctl.MaxFileSize {
		h.fail(w, r, http.StatusBadRequest, formctl.MsgOversize)
		return
	}

	header := make([]byte, sheet.HeaderSize)
	if _, err := io.ReadFull(file, header); err != nil {
		h.fail(w, r, http.StatusBadRequest, MsgNotWorkbook)
		return
	}
	if sheet.Sniff(header) == sheet.FormatUnknown {
		h.fail(w, r, http.StatusBadRequest, MsgNotWorkbook)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		http.Error(w, "Failed to process file", http.StatusInternalServerError)
		return
	}

	path := filepath.Join(h.UploadDir, utils.StoredName(handler.Filename))
	if err := saveFile(path, file); err != nil {
		h.log.Error("save upload", zap.String("file", handler.Filename), zap.Error(err))
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	records, err := sheet.ReadRecords(path)
	if err != nil {
		h.log.Warn("unreadable workbook", zap.String("file", handler.Filename), zap.Error(err))
		removeFile(h.log, path)
		h.fail(w, r, http.StatusUnprocessableEntity, parseFailure(handler.Filename, err))
		return
	}

	job := h.Jobs.Start(handler.Filename, records, func() { removeFile(h.log, path) })
	h.log.Info("upload accepted",
		zap.String("file", handler.Filename),
		zap.Int64("size", handler.Size),
		zap.Int("records", len(records)),
		zap.String("job", job.ID))

	msg := fmt.Sprintf("Archivo Excel cargado exitosamente. Procesando %d usuario(s) en segundo plano.", len(records))
	h.reply(w, r, http.StatusOK, formctl.Banner{Message: msg, Severity: formctl.SeveritySuccess}, job.ID, len(records))
}

// parseFailure names the workbook by the filename the user chose; the stored
// name is internal.
func parseFailure(filename string, err error) string {
	var pe *sheet.ParseError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return fmt.Sprintf("%s%s: %v", MsgParseFailed, filename, err)
}

// SubmitRecord godoc
// @Summary      Submit one record
// @Description  Processes the manual form fields as a single record in the background
// @Tags         records
// @Accept       x-www-form-urlencoded
// @Produce      html,json
// @Success      200  {object}  Response
// @Failure      400  {object}  Response  "No field was filled"
// @Router       /records [post]
func (h *APIHandler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, MsgEmptyRecord)
		return
	}

	fields := make(map[string]string)
	for _, f := range RecordFields {
		if v := strings.TrimSpace(r.PostForm.Get(f.Name)); v != "" {
			fields[f.Name] = v
		}
	}
	if len(fields) == 0 {
		h.fail(w, r, http.StatusBadRequest, MsgEmptyRecord)
		return
	}

	rec := sheet.Record{Row: 1, Fields: fields}
	job := h.Jobs.Start("formulario", []sheet.Record{rec}, nil)
	h.log.Info("record accepted", zap.String("user", rec.Label()), zap.String("job", job.ID))

	h.reply(w, r, http.StatusOK, formctl.Banner{Message: MsgRecordQueued, Severity: formctl.SeveritySuccess}, job.ID, 1)
}

// ListJobs godoc
// @Summary      List jobs
// @Description  Returns every known job, newest first
// @Tags         jobs
// @Produce      json
// @Success      200  {array}  jobs.View
// @Router       /api/jobs [get]
func (h *APIHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Jobs.List())
}

// GetJob godoc
// @Summary      Get a job
// @Description  Returns the progress of one job
// @Tags         jobs
// @Produce      json
// @Param        jobID  path  string  true  "Job ID"
// @Success      200  {object}  jobs.View
// @Failure      404  {object}  Response  "Job not found"
// @Router       /api/jobs/{jobID} [get]
func (h *APIHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, exists := h.Jobs.GetJob(chi.URLParam(r, "jobID"))
	if !exists {
		writeJSON(w, http.StatusNotFound, Response{
			Code:     http.StatusNotFound,
			Message:  "Job not found",
			Severity: formctl.SeverityError,
		})
		return
	}
	writeJSON(w, http.StatusOK, job.View())
}

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string  "{ status: ok }"
// @Router       /api/health [get]
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.reply(w, r, status, formctl.Banner{Message: msg, Severity: formctl.SeverityError}, "", 0)
}

func (h *APIHandler) reply(w http.ResponseWriter, r *http.Request, status int, b formctl.Banner, jobID string, total int) {
	if wantsJSON(r) {
		writeJSON(w, status, Response{
			Code:     status,
			Message:  b.Message,
			Severity: b.Severity,
			JobID:    jobID,
			Total:    total,
		})
		return
	}
	h.renderIndex(w, status, &b)
}

// wantsJSON reports whether every media range in Accept is application/json.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil || mt != "application/json" {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func saveFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}

func removeFile(log *zap.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("remove upload", zap.String("path", path), zap.Error(err))
		return
	}
	log.Debug("upload removed", zap.String("path", path))
}
