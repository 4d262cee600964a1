package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type availabilityResp struct {
	Date    caltime.Date               `json:"date"`
	UserIDs []int64                    `json:"user_ids"`
	Free    []model.Interval           `json:"free"`
	Busy    map[int64][]model.Interval `json:"busy"`
	Vacuous bool                       `json:"vacuous"`
}

func (a *Api) availabilityHandler(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := r.Context().Value(contextKeyWorkspace).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveWorkspace)
		return
	}

	v := r.URL.Query().Get("date")
	if v == "" {
		a.badRequestResponse(w, r, errors.New("date must be provided"))
		return
	}
	day, err := a.zone.ParseDateStrict(v)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	userIDs, err := parseIDList(r.URL.Query()["user_ids"])
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	availability, err := a.availability.FreeIntervals(r.Context(), workspaceID, userIDs, day)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("free intervals: %w", err))
		return
	}

	resp := &availabilityResp{
		Date:    availability.Date,
		UserIDs: availability.UserIDs,
		Free:    availability.Free,
		Busy:    availability.Busy,
		Vacuous: availability.Vacuous,
	}
	if resp.UserIDs == nil {
		resp.UserIDs = []int64{}
	}
	if resp.Free == nil {
		resp.Free = []model.Interval{}
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
