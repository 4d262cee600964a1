package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type contextKey string

const (
	contextKeyID        = contextKey("id")
	contextKeyWorkspace = contextKey("workspace")
	contextKeyEvent     = contextKey("event")
)

// userIDHeader is set by the authenticating proxy in front of the service.
const userIDHeader = "X-User-ID"

var (
	errCantRetrieveID        = errors.New("can't retrieve id")
	errCantRetrieveWorkspace = errors.New("can't retrieve workspace from context")
	errCantRetrieveEvent     = errors.New("can't retrieve event from context")
)

func (a *Api) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(userIDHeader)
		if header == "" {
			a.unauthorizedResponse(w, r, errors.New("no user provided"))
			return
		}

		id, err := strconv.ParseInt(header, 10, 64)
		if err != nil || id < 1 {
			a.unauthorizedResponse(w, r, errors.New("invalid user id"))
			return
		}

		idContext := context.WithValue(r.Context(), contextKeyID, id)
		next.ServeHTTP(w, r.WithContext(idContext))
	})
}

// cronAuth requires a bearer token signed with the cron secret. Without a
// configured verifier every caller is let through.
func (a *Api) cronAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.jwts == nil {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("Authorization")
		if token == "" {
			a.unauthorizedResponse(w, r, errors.New("no token provided"))
			return
		}

		token = strings.TrimPrefix(token, "Bearer ")

		if _, err := a.jwts.Verify(token); err != nil {
			a.unauthorizedResponse(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Api) checkMember(w http.ResponseWriter, r *http.Request, workspaceID int64) bool {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return false
	}

	member, err := a.members.IsMember(r.Context(), a.db, workspaceID, userID)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("check membership: %w", err))
		return false
	}

	// non-members can't tell a foreign workspace from a missing one
	if !member {
		a.notFoundResponse(w, r)
		return false
	}

	return true
}

func (a *Api) workspaceCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, err := parseIDParam(r, "workspaceID")
		if err != nil {
			a.notFoundResponse(w, r)
			return
		}

		if !a.checkMember(w, r, workspaceID) {
			return
		}

		workspaceCtx := context.WithValue(r.Context(), contextKeyWorkspace, workspaceID)
		next.ServeHTTP(w, r.WithContext(workspaceCtx))
	})
}

func (a *Api) eventCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventID, err := parseIDParam(r, "eventID")
		if err != nil {
			a.notFoundResponse(w, r)
			return
		}

		event, err := a.eventsService.GetEvent(r.Context(), eventID)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrNoRecord):
				a.notFoundResponse(w, r)
			default:
				a.serverErrorResponse(w, r, fmt.Errorf("get event: %w", err))
			}
			return
		}

		if !a.checkMember(w, r, event.WorkspaceID) {
			return
		}

		eventCtx := context.WithValue(r.Context(), contextKeyEvent, event)
		next.ServeHTTP(w, r.WithContext(eventCtx))
	})
}
