package api

import (
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/ics"
)

func (a *Api) calendarHandler(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := r.Context().Value(contextKeyWorkspace).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveWorkspace)
		return
	}

	occurrences, ok := a.occurrencesInRange(w, r)
	if !ok {
		return
	}

	body := ics.Render(fmt.Sprintf("Workspace %d", workspaceID), occurrences, a.zone.Now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="workspace-%d.ics"`, workspaceID))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
