package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"submission-service/submission/application"
	"submission-service/submission/domain"

	"github.com/go-chi/chi/v5"
)

// Corpos de resposta. "Added email" também é usado em /message; ver DESIGN.md.
const (
	bodyIndex        = "Hello, world!"
	bodyAdded        = "Added email"
	bodyAlreadyThere = "No changes were made, email already exists in database"
	bodyEmailTooLong = "Email should not exceed 1024 characters"
	bodyInvalidEmail = "Invalid email"
	bodyQueryFailed  = "Something went wrong with database query"
	bodyInvalidJSON  = "Invalid JSON body"
	bodyBodyTooLarge = "Request body too large"
)

// MaxMessageBody limita o corpo de POST /message (subject e content juntos cabem com folga).
const MaxMessageBody = 256 << 10

type Handler struct {
	svc application.Service
	log *slog.Logger
}

func NewHandler(svc application.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, log: logger}
}

func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, bodyIndex)
}

func (h *Handler) AddEmail(w http.ResponseWriter, r *http.Request) {
	email := pathParam(r, "email")
	h.log.InfoContext(r.Context(), "Adding new email", "email", email)

	res, err := h.svc.AddEmail(r.Context(), email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if res == domain.AlreadyExists {
		h.log.InfoContext(r.Context(), "Email already in database", "email", email)
		writeText(w, http.StatusOK, bodyAlreadyThere)
		return
	}

	h.log.InfoContext(r.Context(), "Successfully added email to database")
	writeText(w, http.StatusOK, bodyAdded)
}

type messageRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMessage(http.MaxBytesReader(w, r.Body, MaxMessageBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, bodyBodyTooLarge)
			return
		}
		writeText(w, http.StatusBadRequest, bodyInvalidJSON)
		return
	}

	h.log.InfoContext(r.Context(), "New message", "email", req.Email)

	err = h.svc.SubmitMessage(r.Context(), application.MessageInput{
		Email:   req.Email,
		Subject: req.Subject,
		Content: req.Content,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "Successfully added message to database")
	writeText(w, http.StatusOK, bodyAdded)
}

var errTrailingData = errors.New("trailing data after JSON body")

// decodeMessage exige exatamente um objeto JSON no corpo; só espaço em branco pode vir depois.
func decodeMessage(body io.Reader) (messageRequest, error) {
	var req messageRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return messageRequest{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return messageRequest{}, err
	}
	return req, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		status, body := validationResponse(ve)
		h.log.InfoContext(r.Context(), "rejected submission", "field", ve.Field, "reason", string(ve.Kind))
		writeText(w, status, body)
		return
	}

	var se *domain.StoreError
	if errors.As(err, &se) {
		h.log.ErrorContext(r.Context(), "database operation failed", "op", se.Op, "kind", string(se.Kind), "error", se.Err)
		if se.Op == domain.OpEmailExists {
			writeText(w, http.StatusInternalServerError, bodyQueryFailed)
			return
		}
		writeText(w, http.StatusInternalServerError, string(se.Kind))
		return
	}

	h.log.ErrorContext(r.Context(), "unexpected error", "error", err)
	writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func validationResponse(ve *domain.ValidationError) (int, string) {
	if ve.Field == "email" {
		if ve.Kind == domain.KindTooLong {
			return http.StatusRequestEntityTooLarge, bodyEmailTooLong
		}
		return http.StatusNotAcceptable, bodyInvalidEmail
	}
	if ve.Kind == domain.KindEmpty {
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("The message %s was empty", ve.Field)
	}
	return http.StatusRequestEntityTooLarge, fmt.Sprintf("The message %s was too long", ve.Field)
}

// pathParam devolve o segmento já decodificado. O chi casa contra RawPath quando ele
// existe, então só nesse caso ainda há escapes para desfazer.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
