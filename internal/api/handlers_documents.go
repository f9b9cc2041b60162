package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kbility/taxassist/internal/document"
	"github.com/kbility/taxassist/internal/extract"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	up, err := s.readUpload(file, header)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// A new upload supersedes everything: cached documents and any
	// conversation built on them.
	s.store.Clear()
	s.advisor.ClearMemory()

	doc, err := s.extractor.ExtractFile(r.Context(), up)
	if err != nil {
		s.log.Error("extraction failed", "file", up.Name, "error", err)
		jsonError(w, "extraction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.store.Add(doc)

	s.writeResult(w, []document.TaxDocument{doc}, []document.Upload{up})
}

func (s *Server) handleUploadMulti(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	ups := make([]document.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to open %s", fh.Filename), http.StatusBadRequest)
			return
		}
		up, err := s.readUpload(f, fh)
		f.Close()
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		ups = append(ups, up)
	}

	s.store.Clear()
	s.advisor.ClearMemory()

	docs, err := s.extractor.ExtractAll(r.Context(), ups)
	if err != nil {
		s.log.Error("batch extraction failed", "files", len(ups), "error", err)
		jsonError(w, "extraction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	for _, doc := range docs {
		s.store.Add(doc)
	}

	s.writeResult(w, docs, ups)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	docs := s.store.All()
	if len(docs) == 0 {
		jsonError(w, "no documents uploaded", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tax_documents.csv"`)
	if err := document.WriteCSV(w, docs); err != nil {
		s.log.Error("csv export failed", "error", err)
	}
}

func (s *Server) readUpload(file multipart.File, header *multipart.FileHeader) (document.Upload, error) {
	up := document.Upload{
		Name: sanitizeFilename(header.Filename),
		MIME: header.Header.Get("Content-Type"),
	}
	if !extract.IsPDF(up) && !extract.IsImage(up) {
		return document.Upload{}, fmt.Errorf("unsupported file type: %s (PDF or image required)", filepath.Ext(up.Name))
	}
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return document.Upload{}, fmt.Errorf("failed to read %s", up.Name)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return document.Upload{}, fmt.Errorf("%s exceeds max size (%d bytes)", up.Name, s.cfg.MaxUploadBytes)
	}
	up.Data = data
	return up, nil
}

func (s *Server) writeResult(w http.ResponseWriter, docs []document.TaxDocument, ups []document.Upload) {
	recipient := ""
	if len(docs) > 0 {
		recipient = docs[0].RecipientName
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"table":         document.ToTable(docs),
		"previews":      extract.Previews(ups),
		"recipientName": recipient,
		"refresh":       true,
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
