package server

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"AIFitnessCoach/internal/catalog"
	"AIFitnessCoach/internal/geminiservice"
	"AIFitnessCoach/internal/plan"
	"AIFitnessCoach/internal/utility"
	"github.com/labstack/echo/v4"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// PlanResponse is returned by POST /api/plan.
type PlanResponse struct {
	BMI             int      `json:"bmi"`
	Plan            string   `json:"plan"`
	AdditionalGoals []string `json:"additional_goals"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// formPage is the data handed to index.html.
type formPage struct {
	Options  catalog.Options
	Profile  plan.UserProfile
	Message  string
	PlanHTML template.HTML
	BMI      int
}

// User-facing explanations for each failure class.
const (
	msgBadInput        = "Please enter numbers for age, height and weight."
	msgTooManyRequests = "Too many submissions. Please wait a minute and try again."
	msgAuth            = "The coach is not configured correctly. Please contact the administrator."
	msgFiltered        = "The plan was blocked by the safety filters. Please review your answers and submit again."
	msgEmpty           = "No plan was returned. Please try again."
	msgBusy            = "The coach is busy right now. Please try again in a minute."
	msgUnreachable     = "The coach could not be reached. Please try again shortly."
	msgRejected        = "The plan request was rejected by the generation service."
	msgInternal        = "Something went wrong while generating your plan."
)

/*=================================================================================
									HANDLERS
=================================================================================*/

// renderFormHandler serves the empty questionnaire with the form defaults.
func (s *Server) renderFormHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", s.newFormPage(defaultProfile()))
}

// submitFormHandler handles the HTML form. It always answers with the form
// page: either a message or the rendered plan below the submitted answers.
func (s *Server) submitFormHandler(c echo.Context) error {
	logger := utility.LoggerFromContext(c)

	var profile plan.UserProfile
	if err := c.Bind(&profile); err != nil {
		logger.Info().Err(err).Msg("Failed to bind form")
		page := s.newFormPage(defaultProfile())
		page.Message = msgBadInput
		return c.Render(http.StatusBadRequest, "index.html", page)
	}

	page := s.newFormPage(profile)

	if !s.limiter.Allow(c.RealIP()) {
		page.Message = msgTooManyRequests
		return c.Render(http.StatusTooManyRequests, "index.html", page)
	}

	result, status, message := s.submit(c.Request().Context(), c, profile)
	if message != "" {
		page.Message = message
		return c.Render(status, "index.html", page)
	}

	rendered, err := s.renderMarkdown(result.Text)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to render plan markdown")
		page.Message = msgInternal
		return c.Render(http.StatusInternalServerError, "index.html", page)
	}

	page.PlanHTML = rendered
	page.BMI = result.BMI
	return c.Render(http.StatusOK, "index.html", page)
}

// optionsHandler returns every choice list, the countries and the defaults.
func (s *Server) optionsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog.Options())
}

// planHandler is the JSON equivalent of submitFormHandler. The plan text is
// returned verbatim.
func (s *Server) planHandler(c echo.Context) error {
	logger := utility.LoggerFromContext(c)

	if !s.limiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: msgTooManyRequests, Kind: "too_many_requests"})
	}

	var profile plan.UserProfile
	if err := c.Bind(&profile); err != nil {
		logger.Info().Err(err).Msg("Failed to bind request body")
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format", Kind: "bad_request"})
	}

	result, status, message := s.submit(c.Request().Context(), c, profile)
	if message != "" {
		return c.JSON(status, ErrorResponse{Error: message, Kind: errorKind(status, message)})
	}

	goals := profile.AdditionalGoals
	if goals == nil {
		goals = []string{}
	}
	return c.JSON(http.StatusOK, PlanResponse{BMI: result.BMI, Plan: result.Text, AdditionalGoals: goals})
}

// submit runs the input-layer bounds check and then the planner. On failure
// it returns the HTTP status and the message to show.
func (s *Server) submit(ctx context.Context, c echo.Context, profile plan.UserProfile) (plan.Plan, int, string) {
	logger := utility.LoggerFromContext(c)

	if err := plan.CheckBounds(profile); err != nil {
		status, message := explainError(err)
		return plan.Plan{}, status, message
	}

	result, err := s.planner.Submit(logger.WithContext(ctx), profile)
	if err != nil {
		status, message := explainError(err)
		if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
			logger.Error().Err(err).Int("status", status).Msg("Plan generation failed")
		} else {
			logger.Info().Err(err).Int("status", status).Msg("Plan submission refused")
		}
		return plan.Plan{}, status, message
	}

	return result, http.StatusOK, ""
}

/*=================================================================================
								HELPER FUNCTIONS
=================================================================================*/

// explainError maps collector and service failures to a status and a message
// suitable for the end user.
func explainError(err error) (int, string) {
	var verr *plan.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, verr.Message
	}

	var serr *geminiservice.ServiceError
	if errors.As(err, &serr) {
		switch serr.Kind {
		case geminiservice.KindAuth:
			return http.StatusServiceUnavailable, msgAuth
		case geminiservice.KindContentFiltered:
			return http.StatusUnprocessableEntity, msgFiltered
		case geminiservice.KindEmptyResponse:
			return http.StatusBadGateway, msgEmpty
		case geminiservice.KindRateLimited:
			return http.StatusTooManyRequests, msgBusy
		case geminiservice.KindTransient:
			if errors.Is(serr, context.DeadlineExceeded) {
				return http.StatusGatewayTimeout, msgUnreachable
			}
			return http.StatusBadGateway, msgUnreachable
		case geminiservice.KindRejected:
			return http.StatusBadGateway, msgRejected
		}
	}

	return http.StatusInternalServerError, msgInternal
}

// errorKind labels an API error for clients that branch on it.
func errorKind(status int, message string) string {
	switch message {
	case msgAuth:
		return string(geminiservice.KindAuth)
	case msgFiltered:
		return string(geminiservice.KindContentFiltered)
	case msgEmpty:
		return string(geminiservice.KindEmptyResponse)
	case msgBusy:
		return string(geminiservice.KindRateLimited)
	case msgUnreachable:
		return string(geminiservice.KindTransient)
	case msgRejected:
		return string(geminiservice.KindRejected)
	case msgInternal:
		return "internal"
	}
	if status == http.StatusUnprocessableEntity {
		return "validation"
	}
	return ""
}

func (s *Server) renderMarkdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	// goldmark omits raw HTML unless html.WithUnsafe is set.
	return template.HTML(buf.String()), nil
}

func (s *Server) newFormPage(profile plan.UserProfile) formPage {
	return formPage{Options: s.catalog.Options(), Profile: profile}
}

func defaultProfile() plan.UserProfile {
	return plan.UserProfile{
		Age:      catalog.DefaultAge,
		HeightCM: catalog.DefaultHeightCM,
		WeightKG: catalog.DefaultWeightKG,
	}
}
