package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/feedback"
)

// FeedbackHandler accepts user feedback submissions.
type FeedbackHandler struct {
	log      *feedback.Log
	validate *validator.Validate
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(log *feedback.Log) *FeedbackHandler {
	return &FeedbackHandler{
		log:      log,
		validate: validator.New(),
	}
}

// FeedbackRequest is the payload for POST /api/feedback.
type FeedbackRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"max=10000"`
}

// Submit validates and appends a feedback entry.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.log == nil {
		ServiceUnavailable(w, "feedback storage is not configured")
		return
	}

	var req FeedbackRequest
	if err := decodeJSONBody(r, &req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		BadRequest(w, "rating must be between 1 and 5")
		return
	}

	entry, err := h.log.Append(req.Rating, req.Feedback)
	if err != nil {
		logger.Error("failed to store feedback", logger.Err(err))
		InternalServerError(w, "failed to store feedback")
		return
	}

	WriteJSONCreated(w, entry)
}
