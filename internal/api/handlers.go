package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lifeio/lifeio/internal/app/activity"
	"github.com/lifeio/lifeio/internal/app/finance"
	"github.com/lifeio/lifeio/internal/app/sleep"
)

// ─── Activities ─────────────────────────────────────────────────────────────

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	a, err := s.svc.Activities.Record(r.Context(), activity.RecordInput{
		UserID:   userIDFrom(r.Context()),
		Category: req.Category,
		Start:    req.StartTime,
		End:      req.EndTime,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	acts, err := s.svc.Activities.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Activities.Delete(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Activity deleted"})
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Stats.Summary(r.Context(), userIDFrom(r.Context()), s.svc.Stats.Now())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.svc.Stats.Skills(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, skills)
}

func (s *Server) handleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Stats.Finance(r.Context(), userIDFrom(r.Context()), s.svc.Stats.Now())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ─── Sleep ──────────────────────────────────────────────────────────────────

func (s *Server) handleCreateSleep(w http.ResponseWriter, r *http.Request) {
	var req createSleepRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	rec, err := s.svc.Sleep.Add(r.Context(), sleep.Input{
		UserID:    userIDFrom(r.Context()),
		SleepTime: req.SleepTime,
		WakeTime:  req.WakeTime,
		Quality:   req.Quality,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListSleep(w http.ResponseWriter, r *http.Request) {
	logs, err := s.svc.Sleep.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleDeleteSleep(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Sleep.Delete(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Sleep log deleted"})
}

// ─── Finance ────────────────────────────────────────────────────────────────

func (s *Server) handleUpsertFinance(w http.ResponseWriter, r *http.Request) {
	var req upsertFinanceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	rec, err := s.svc.Finance.Upsert(r.Context(), finance.Input{
		UserID:  userIDFrom(r.Context()),
		Date:    req.Date,
		Income:  req.Income,
		Expense: req.Expense,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListFinance(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.Finance.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleDeleteFinance(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Finance.Delete(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Finance record deleted"})
}

// ─── Auth ───────────────────────────────────────────────────────────────────

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    userIDFrom(r.Context()),
		"email": emailFrom(r.Context()),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
