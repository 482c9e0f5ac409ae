package inbound

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/goseed/internal/enrollment/usecase"
	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
	"github.com/shandysiswandi/goseed/internal/pkg/identity"
	"github.com/shandysiswandi/goseed/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the enrollment workflows.
type HTTPEndpoint struct {
	uc  uc
	cfg EndpointConfig
}

// SecretStatus reports whether the caller has a seed and a masked preview.
func (h *HTTPEndpoint) SecretStatus(r *router.Request) (any, error) {
	resp, err := h.uc.SecretStatus(r.Context())
	if err != nil {
		return nil, err
	}

	return SecretStatusResponse{Exists: resp.Exists, Masked: resp.Masked}, nil
}

// SecretCreate generates a fresh seed, overwriting any existing one.
func (h *HTTPEndpoint) SecretCreate(r *router.Request) (any, error) {
	resp, err := h.uc.SecretCreate(r.Context())
	if err != nil {
		return nil, err
	}

	return SecretCreateResponse{Regenerated: resp.Regenerated}, nil
}

// SecretDelete removes the caller's seed.
func (h *HTTPEndpoint) SecretDelete(r *router.Request) (any, error) {
	if err := h.uc.SecretDelete(r.Context()); err != nil {
		return nil, err
	}

	return nil, nil
}

// LinkIssue mints a one-time download credential for the caller.
func (h *HTTPEndpoint) LinkIssue(r *router.Request) (any, error) {
	resp, err := h.uc.LinkIssue(r.Context())
	if err != nil {
		return nil, err
	}

	return LinkIssueResponse{ExpiresAt: resp.ExpiresAt}, nil
}

// login is a raw handler because a successful login sets the session
// cookie before the JSON body is written.
func (h *HTTPEndpoint) login() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, map[string]string{"message": "Invalid request body"}, http.StatusBadRequest)
			return
		}

		out, err := h.uc.Login(r.Context(), usecase.LoginInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     h.cfg.CookieName,
			Value:    out.Token,
			Path:     "/",
			MaxAge:   int(h.cfg.CookieTTL.Seconds()),
			HttpOnly: true,
			Secure:   h.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, LoginResponse{Message: "Signed in"}, http.StatusOK)
	})
}

// download is the raw gate handler. Every rejection is a redirect to a
// generic page; the precise reason only reaches the logs.
func (h *HTTPEndpoint) download() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := h.cfg.Resolver.Resolve(r)
		if err != nil {
			slog.WarnContext(r.Context(), "download request without identity", "error", err)
			http.Redirect(w, r, h.cfg.FailGeneralURL, http.StatusFound)
			return
		}

		ctx := identity.SetIdentity(r.Context(), account)

		art, err := h.uc.Download(ctx, usecase.DownloadInput{
			Filename: httprouter.ParamsFromContext(ctx).ByName("filename"),
			Code:     strings.TrimSpace(r.URL.Query().Get("otec")),
		})
		if err != nil {
			http.Redirect(w, r, h.failURL(err), http.StatusFound)
			return
		}

		w.Header().Set("Content-Type", art.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(art.Body)))
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Cache-Control", "no-store")
		if art.Filename != "" {
			w.Header().Set("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
		}

		if _, err := w.Write(art.Body); err != nil {
			slog.ErrorContext(ctx, "failed to stream artifact", "error", err)
		}
	})
}

// failURL picks the landing page by rejection class: credential
// problems go to the invalid-link page, everything else to the generic
// failure page.
func (h *HTTPEndpoint) failURL(err error) string {
	var gerr *goerror.Error
	if errors.As(err, &gerr) && gerr.Code() == goerror.CodeUnauthorized {
		return h.cfg.FailCredentialURL
	}

	return h.cfg.FailGeneralURL
}

func writeError(w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		writeJSON(w, map[string]string{"message": "Internal server error"}, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"message": gerr.Msg()}, gerr.StatusCode())
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("enrollment: failed to encode response", "error", err)
	}
}
