package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyrace/models"
	"studyrace/service"
)

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		badRequest(w, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// queryLimit reads ?limit=, zero when absent so the service applies its default
func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		badRequest(w, "invalid limit")
		return 0, false
	}
	return limit, true
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user, err := s.svc.Users.Register(r.Context(), req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUser(user))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	user, err := s.svc.Users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(user))
}

func (s *Server) balanceHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	history, err := s.svc.Users.BalanceHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]balanceHistoryResponse, len(history))
	for i, h := range history {
		out[i] = toBalanceHistory(h)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	kind := service.LeaderboardKind(r.URL.Query().Get("by"))
	if kind == "" {
		kind = service.LeaderboardByCoins
	}

	entries, err := s.svc.Users.Leaderboard(r.Context(), kind, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*models.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// listSessions returns today's sessions unless a from/to range is given
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	var (
		sessions []*models.StudySession
		err      error
	)
	q := r.URL.Query()
	if q.Get("from") == "" && q.Get("to") == "" {
		sessions, err = s.svc.Study.TodaySessions(r.Context(), userID)
	} else {
		from, fromErr := time.Parse(time.RFC3339, q.Get("from"))
		to, toErr := time.Parse(time.RFC3339, q.Get("to"))
		if fromErr != nil || toErr != nil {
			badRequest(w, "from and to must both be RFC 3339 timestamps")
			return
		}
		sessions, err = s.svc.Study.ListSessions(r.Context(), userID, from, to)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]sessionResponse, len(sessions))
	for i, sess := range sessions {
		out[i] = toSession(sess)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) recordSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	var req recordSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	studiedAt := s.svc.Clock.Now()
	if req.StudiedAt != nil {
		studiedAt = *req.StudiedAt
	}

	result, err := s.svc.Study.RecordSession(r.Context(), userID, req.SubjectID, req.DurationMinutes, studiedAt)
	if err != nil {
		writeError(w, r, err)
		return
	}

	credited := result.CreditedRaceIDs
	if credited == nil {
		credited = []uuid.UUID{}
	}
	writeJSON(w, http.StatusCreated, sessionResultResponse{
		Session:         toSession(result.Session),
		User:            toUser(result.User),
		CreditedRaceIDs: credited,
	})
}

func (s *Server) periodProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	p, err := s.svc.Study.PeriodProgress(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{
		UserID:        p.User.ID,
		PeriodStart:   p.PeriodStart,
		PeriodEnd:     p.PeriodEnd,
		StudyMinutes:  p.StudyMinutes,
		GoalMinutes:   p.GoalMinutes,
		Percent:       p.Percent,
		TodayMinutes:  p.TodayMinutes,
		TodaySessions: p.TodaySessions,
	})
}

func (s *Server) updateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user, err := s.svc.Study.UpdateGoal(r.Context(), userID, req.GoalMinutes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(user))
}

func (s *Server) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.svc.Subjects.ListSubjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubjects(subjects))
}

func (s *Server) listUserSubjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	subjects, err := s.svc.Subjects.ListUserSubjects(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubjects(subjects))
}

func (s *Server) replaceUserSubjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	var req subjectsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	subjects, err := s.svc.Subjects.ReplaceUserSubjects(r.Context(), userID, req.Names)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubjects(subjects))
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	bets, err := s.svc.Betting.ListBets(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]betResponse, len(bets))
	for i, b := range bets {
		out[i] = toBet(b)
	}
	writeJSON(w, http.StatusOK, out)
}
