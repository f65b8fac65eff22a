package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Documents  usecase.DocumentService
	Interviews usecase.InterviewService
}

// NewServer constructs an HTTP server with all handlers wired.
func NewServer(cfg config.Config, documents usecase.DocumentService, interviews usecase.InterviewService) *Server {
	return &Server{Cfg: cfg, Documents: documents, Interviews: interviews}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// ownerFromRequest resolves the acting owner. Authentication is delegated
// to the edge; an absent header maps every request to the default owner.
func ownerFromRequest(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get("X-Owner-Id")); o != "" {
		return o
	}
	return "default"
}

func sessionIDParam(r *http.Request) *string {
	if sid := strings.TrimSpace(r.FormValue("session_id")); sid != "" {
		return &sid
	}
	if sid := strings.TrimSpace(r.URL.Query().Get("session_id")); sid != "" {
		return &sid
	}
	return nil
}

// allowedExt enforces an allowlist for uploads: .txt, .pdf, .docx
func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".txt") || strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx")
}

func allowedMIME(m string) bool {
	m = strings.ToLower(m)
	if strings.HasPrefix(m, "text/") {
		return true
	}
	return m == "application/pdf" ||
		m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" ||
		m == "application/zip" // docx detectors may report the container type
}

type documentResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	SessionID *string `json:"session_id,omitempty"`
	Chunks    int     `json:"chunks"`
}

// UploadDocumentHandler handles multipart upload of resume and job
// description files.
func (s *Server) UploadDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "PAYLOAD_TOO_LARGE", Message: fmt.Sprintf("upload exceeds %d MB", s.Cfg.MaxUploadMB),
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: malformed multipart body", domain.ErrInvalidArgument), nil)
			return
		}

		docType := strings.TrimSpace(r.FormValue("type"))
		if docType != domain.DocumentTypeResume && docType != domain.DocumentTypeJD {
			writeError(w, r, fmt.Errorf("%w: type must be %q or %q", domain.ErrInvalidArgument, domain.DocumentTypeResume, domain.DocumentTypeJD), nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: file field is required", domain.ErrInvalidArgument), nil)
			return
		}
		defer func() { _ = file.Close() }()

		if !allowedExt(header.Filename) {
			writeError(w, r, fmt.Errorf("%w: only .txt, .pdf and .docx uploads are accepted", domain.ErrInvalidArgument), nil)
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("read upload: %w", err), nil)
			return
		}
		if m := mimetype.Detect(data); !allowedMIME(m.String()) {
			writeError(w, r, fmt.Errorf("%w: unsupported content type %s", domain.ErrInvalidArgument, m.String()), nil)
			return
		}

		tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		defer func() { _ = os.Remove(tmp.Name()); _ = tmp.Close() }()
		if _, err := tmp.Write(data); err != nil {
			writeError(w, r, err, nil)
			return
		}

		doc, err := s.Documents.ProcessUpload(r.Context(), ownerFromRequest(r), sessionIDParam(r), docType, header.Filename, tmp.Name(), data)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, documentResponse{
			ID:        doc.ID,
			Type:      doc.Type,
			SessionID: doc.SessionID,
			Chunks:    len(doc.Chunks),
		})
	}
}

// DeleteDocumentHandler removes the caller's document of the given type.
func (s *Server) DeleteDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docType := chi.URLParam(r, "type")
		if docType != domain.DocumentTypeResume && docType != domain.DocumentTypeJD {
			writeError(w, r, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidArgument, docType), nil)
			return
		}
		if err := s.Documents.Delete(r.Context(), ownerFromRequest(r), sessionIDParam(r), docType); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type createSessionRequest struct {
	Name           string `json:"name" validate:"max=200"`
	TotalQuestions int    `json:"total_questions" validate:"required,min=2,max=10"`
}

// CreateSessionHandler opens a new interview session.
func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid JSON body", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, err.Error()), nil)
			return
		}
		id, err := s.Interviews.CreateSession(r.Context(), ownerFromRequest(r), req.Name, req.TotalQuestions)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	}
}

type messageResponse struct {
	Role             string    `json:"role"`
	Content          string    `json:"content"`
	RelevanceScore   *int      `json:"relevance_score,omitempty"`
	CorrectnessScore *int      `json:"correctness_score,omitempty"`
	OverallScore     *int      `json:"overall_score,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type sessionResponse struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	TotalQuestions     int               `json:"total_questions"`
	IsCompleted        bool              `json:"is_completed"`
	FinalScore         *float64          `json:"final_score,omitempty"`
	AverageRelevance   *float64          `json:"average_relevance,omitempty"`
	AverageCorrectness *float64          `json:"average_correctness,omitempty"`
	Transcript         []messageResponse `json:"transcript"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func toSessionResponse(sess domain.InterviewSession) sessionResponse {
	out := sessionResponse{
		ID:                 sess.ID,
		Name:               sess.Name,
		TotalQuestions:     sess.TotalQuestions,
		IsCompleted:        sess.IsCompleted,
		FinalScore:         sess.FinalScore,
		AverageRelevance:   sess.AverageRelevance,
		AverageCorrectness: sess.AverageCorrectness,
		Transcript:         make([]messageResponse, 0, len(sess.Transcript)),
		CreatedAt:          sess.CreatedAt,
		UpdatedAt:          sess.UpdatedAt,
	}
	for _, m := range sess.Transcript {
		out.Transcript = append(out.Transcript, messageResponse{
			Role:             m.Role,
			Content:          m.Content,
			RelevanceScore:   m.RelevanceScore,
			CorrectnessScore: m.CorrectnessScore,
			OverallScore:     m.OverallScore,
			CreatedAt:        m.CreatedAt,
		})
	}
	return out
}

// GetSessionHandler returns one session with its transcript and scores.
func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.Interviews.GetSession(r.Context(), ownerFromRequest(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// DeleteSessionHandler removes a session and its scoped documents.
func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Interviews.DeleteSession(r.Context(), ownerFromRequest(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GenerateQuestionsHandler generates (or regenerates) the session's
// question list from the caller's job description.
func (s *Server) GenerateQuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := s.Interviews.GenerateQuestions(r.Context(), ownerFromRequest(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": raw})
	}
}

type submitAnswersRequest struct {
	Answers []string `json:"answers" validate:"required,min=1"`
}

type evaluationResponse struct {
	RelevanceScore   int    `json:"relevance_score"`
	CorrectnessScore int    `json:"correctness_score"`
	OverallScore     int    `json:"overall_score"`
	Feedback         string `json:"feedback"`
}

// SubmitAnswersHandler evaluates submitted answers and completes the session.
func (s *Server) SubmitAnswersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitAnswersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid JSON body", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, err.Error()), nil)
			return
		}
		res, err := s.Interviews.SubmitAnswers(r.Context(), ownerFromRequest(r), chi.URLParam(r, "id"), req.Answers)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		evals := make([]evaluationResponse, 0, len(res.Evaluations))
		for _, e := range res.Evaluations {
			evals = append(evals, evaluationResponse{
				RelevanceScore:   e.RelevanceScore,
				CorrectnessScore: e.CorrectnessScore,
				OverallScore:     e.OverallScore,
				Feedback:         e.Feedback,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"evaluations":         evals,
			"final_score":         res.Scores.FinalScore,
			"average_relevance":   res.Scores.AverageRelevance,
			"average_correctness": res.Scores.AverageCorrectness,
		})
	}
}
