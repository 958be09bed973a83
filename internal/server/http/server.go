// Package httpserver exposes the token API over HTTP.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/avolokitin/authgate/internal/captcha"
	"github.com/avolokitin/authgate/internal/errs"
	"github.com/avolokitin/authgate/internal/limiter"
	"github.com/avolokitin/authgate/internal/service"
)

// TokenCreator is the slice of the token service the handlers use.
type TokenCreator interface {
	Create(ctx context.Context, in *service.CreateTokenInput) (string, error)
}

// Challenges is the captcha collaborator: issue a challenge, check a solution.
type Challenges interface {
	captcha.Verifier
	Issue(ctx context.Context) (token, code string, err error)
}

// Server wires the token service into HTTP handlers.
type Server struct {
	tokens     TokenCreator
	gate       limiter.Gate
	challenges Challenges
	logger     *zap.Logger
}

// New constructs the HTTP server with injected collaborators.
func New(tokens TokenCreator, gate limiter.Gate, challenges Challenges, logger *zap.Logger) *Server {
	return &Server{tokens: tokens, gate: gate, challenges: challenges, logger: logger}
}

// Router builds the chi router with logging, recovery and a coarse per-IP
// throttle on the token route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(Recover(s.logger))
	r.Use(Logging(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(30, time.Minute))
		r.Post("/api/tokens", s.createToken)
	})

	return r
}

type createTokenRequest struct {
	Name         string `json:"name"`
	Password     string `json:"password"`
	Device       string `json:"device"`
	CaptchaToken string `json:"captcha_token"`
	CaptchaCode  string `json:"captcha_code"`
}

type createTokenResponse struct {
	Token string `json:"token"`
}

// errorResponse is the 422 body. When NeedsCaptcha is set a fresh challenge
// token rides along so the client can render the next challenge; delivery of
// its code is up to the captcha renderer.
type errorResponse struct {
	Errors       map[string]string `json:"errors"`
	NeedsCaptcha bool              `json:"captcha"`
	CaptchaToken string            `json:"captcha_token,omitempty"`
}

// createToken handles POST /api/tokens. The gate only computes the captcha
// requirement; enforcing a solved challenge before any credential work is
// this handler's job.
func (s *Server) createToken(w http.ResponseWriter, r *http.Request) {
	var req createTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ip := clientIP(r)
	needs, err := s.gate.IsChallengeRequired(r.Context(), limiter.OriginSignature(ip), service.ActionCreateToken)
	if err != nil {
		s.fault(w, "challenge check", err)
		return
	}
	if needs {
		ok, err := s.challenges.Check(r.Context(), req.CaptchaToken, req.CaptchaCode)
		if err != nil {
			s.fault(w, "captcha check", err)
			return
		}
		if !ok {
			s.writeValidation(w, r, &errs.Validation{
				FieldErrors:  map[string]string{"captcha_code": "captcha incorrect"},
				NeedsCaptcha: true,
			})
			return
		}
	}

	token, err := s.tokens.Create(r.Context(), &service.CreateTokenInput{
		Name:          req.Name,
		Password:      req.Password,
		Device:        req.Device,
		DefaultDevice: r.UserAgent(),
		IP:            ip,
	})
	if err != nil {
		var verr *errs.Validation
		if errors.As(err, &verr) {
			s.writeValidation(w, r, verr)
			return
		}
		s.fault(w, "create token", err)
		return
	}

	writeJSON(w, http.StatusCreated, createTokenResponse{Token: token})
}

// writeValidation renders a recoverable rejection, attaching a fresh
// challenge token when the next attempt needs one.
func (s *Server) writeValidation(w http.ResponseWriter, r *http.Request, verr *errs.Validation) {
	resp := errorResponse{Errors: verr.FieldErrors, NeedsCaptcha: verr.NeedsCaptcha}
	if verr.NeedsCaptcha {
		token, _, err := s.challenges.Issue(r.Context())
		if err != nil {
			s.logger.Error("issue challenge", zap.Error(err))
		} else {
			resp.CaptchaToken = token
		}
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

// fault logs an internal error and answers with an opaque 500.
func (s *Server) fault(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientIP strips the port from RemoteAddr; RealIP middleware has already
// substituted forwarded headers where present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
