package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonaN-tech/kilocode-ml-service/internal/engine"
	"github.com/JonaN-tech/kilocode-ml-service/internal/fetch"
	"github.com/JonaN-tech/kilocode-ml-service/internal/textutil"
	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
	"github.com/google/uuid"
)

// GenerateCommentRequest is the inbound DTO. Exactly one of PostURL or
// PostText must be provided.
type GenerateCommentRequest struct {
	PostURL   string `json:"post_url" validate:"omitempty,url"`
	PostText  string `json:"post_text"`
	TopKStyle int    `json:"top_k_style" validate:"gte=0,lte=20"`
	TopKDocs  int    `json:"top_k_docs" validate:"gte=0,lte=20"`
}

// GenerateCommentResponse is the outbound DTO.
type GenerateCommentResponse struct {
	Comment string `json:"comment"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleGenerateComment ingests a post by URL or raw text and returns one
// comment. Only the admission rejection surfaces as a client-visible error
// (413); every internal failure is absorbed into a valid fallback comment.
func (s *Server) handleGenerateComment(w http.ResponseWriter, r *http.Request) {
	var req GenerateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.PostURL == "" && req.PostText == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "either post_url or post_text is required"})
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.TopKStyle == 0 {
		req.TopKStyle = s.cfg.TopKStyle
	}
	if req.TopKDocs == 0 {
		req.TopKDocs = s.cfg.TopKDocs
	}

	post := s.normalize(r, &req)

	comment, err := s.service.GenerateComment(r.Context(), post, req.TopKStyle, req.TopKDocs)
	if err != nil {
		var tooLarge *engine.ContentTooLargeError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: tooLarge.Error()})
			return
		}
		// The pipeline contract makes this unreachable; absorb regardless.
		s.log.WithError(err).Error("unexpected_pipeline_error")
		comment = engine.AcknowledgmentComment(s.cfg.BrandName)
	}

	writeJSON(w, http.StatusOK, GenerateCommentResponse{Comment: comment})
}

// normalize builds the immutable NormalizedPost from the request, fetching
// the URL when one is given. Fetch failures degrade to whatever partial
// title/text is available.
func (s *Server) normalize(r *http.Request, req *GenerateCommentRequest) *types.NormalizedPost {
	if req.PostURL == "" {
		text := req.PostText
		return &types.NormalizedPost{
			ID:          uuid.NewString(),
			Platform:    types.PlatformUnknown,
			Title:       textutil.ExtractTitle(text, 150),
			Content:     text,
			FetchStatus: types.FetchSuccess,
		}
	}

	result := s.fetcher.Fetch(r.Context(), req.PostURL)
	return &types.NormalizedPost{
		ID:          uuid.NewString(),
		Platform:    fetch.DetectPlatform(req.PostURL),
		Title:       result.Title,
		Content:     result.Text,
		URL:         req.PostURL,
		FetchStatus: result.Status,
	}
}

// handleTestDirect runs a canned post through the full pipeline; useful for
// smoke-testing a deployment without fetching anything.
func (s *Server) handleTestDirect(w http.ResponseWriter, r *http.Request) {
	post := &types.NormalizedPost{
		ID:          "test",
		Platform:    types.PlatformReddit,
		Title:       "New free model Corethink on KiloCode",
		Content:     "Someone is discussing a new free AI model on KiloCode and comparing it with GPT and Claude.",
		URL:         "test",
		FetchStatus: types.FetchSuccess,
	}

	comment, err := s.service.GenerateComment(r.Context(), post, s.cfg.TopKStyle, s.cfg.TopKDocs)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, GenerateCommentResponse{Comment: comment})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
