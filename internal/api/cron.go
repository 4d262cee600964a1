package api

import (
	"net/http"
	"time"
)

type cronResult struct {
	EventsFound       int `json:"eventsFound"`
	NotificationsSent int `json:"notificationsSent"`
	Errors            int `json:"errors"`
}

type cronSuccessResp struct {
	Success         bool       `json:"success"`
	Message         string     `json:"message"`
	Timezone        string     `json:"timezone"`
	LocalTime       string     `json:"localTime"`
	UTCTime         string     `json:"utcTime"`
	ExecutionTimeMs int64      `json:"executionTimeMs"`
	Result          cronResult `json:"result"`
}

type cronFailureResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (a *Api) upcomingEventsCronHandler(w http.ResponseWriter, r *http.Request) {
	report, err := a.cronJob.Execute(r.Context())
	if err != nil {
		a.logError(r, err)

		resp := &cronFailureResp{
			Success: false,
			Message: "Failed to process upcoming events",
			Error:   err.Error(),
		}
		if err := a.writeJSON(w, http.StatusInternalServerError, resp, nil); err != nil {
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := &cronSuccessResp{
		Success:         true,
		Message:         "Upcoming events processed",
		Timezone:        report.Timezone,
		LocalTime:       report.LocalTime.Format(time.RFC3339),
		UTCTime:         report.UTCTime.Format(time.RFC3339),
		ExecutionTimeMs: report.ExecutionTime.Milliseconds(),
		Result: cronResult{
			EventsFound:       report.Summary.EventsFound,
			NotificationsSent: report.Summary.NotificationsSent,
			Errors:            report.Summary.Errors,
		},
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
