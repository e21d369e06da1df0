package server

import (
	"net/http"

	"studyrace/models"
)

func (s *Server) createRace(w http.ResponseWriter, r *http.Request) {
	var input models.RaceInput
	if err := decodeJSON(r, &input); err != nil {
		badRequest(w, err.Error())
		return
	}

	race, err := s.svc.Races.CreateRace(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRace(race))
}

func (s *Server) listRaces(w http.ResponseWriter, r *http.Request) {
	status := models.RaceStatus(r.URL.Query().Get("status"))

	races, err := s.svc.Races.ListRaces(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]raceResponse, len(races))
	for i, race := range races {
		out[i] = toRace(race)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getRace(w http.ResponseWriter, r *http.Request) {
	raceID, ok := pathUUID(w, r, "raceID")
	if !ok {
		return
	}

	race, err := s.svc.Races.GetRace(r.Context(), raceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRace(race))
}

func (s *Server) enrollParticipant(w http.ResponseWriter, r *http.Request) {
	raceID, ok := pathUUID(w, r, "raceID")
	if !ok {
		return
	}
	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	p, err := s.svc.Races.EnrollParticipant(r.Context(), raceID, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toParticipant(p))
}

func (s *Server) standings(w http.ResponseWriter, r *http.Request) {
	raceID, ok := pathUUID(w, r, "raceID")
	if !ok {
		return
	}

	roster, err := s.svc.Races.Standings(r.Context(), raceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipants(roster))
}

func (s *Server) refreshOdds(w http.ResponseWriter, r *http.Request) {
	raceID, ok := pathUUID(w, r, "raceID")
	if !ok {
		return
	}

	roster, err := s.svc.Races.RefreshOdds(r.Context(), raceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipants(roster))
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	raceID, ok := pathUUID(w, r, "raceID")
	if !ok {
		return
	}
	var req placeBetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	bet, err := s.svc.Betting.PlaceBet(r.Context(), req.BettorID, raceID, req.ParticipantID, models.BetType(req.BetType), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBet(bet))
}
