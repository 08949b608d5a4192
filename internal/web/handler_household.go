package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vbonduro/cartshare/internal/domain"
)

const maxNameLen = 200

// indexData feeds pages/index.html.
type indexData struct {
	Error         string
	HouseholdName string
	Username      string
	JoinCode      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.Read(r); err == nil {
		http.Redirect(w, r, "/household", http.StatusSeeOther)
		return
	}
	s.renderIndex(w, http.StatusOK, indexData{})
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, data indexData) {
	if err := s.renderPage(w, status, data, "base.html", "pages/index.html"); err != nil {
		s.logger.Error("render page error", "page", "index", "error", err)
	}
}

func (s *Server) handleCreateHousehold(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("household_name"))
	username := strings.TrimSpace(r.FormValue("username"))
	form := indexData{HouseholdName: name, Username: username}

	if name == "" || username == "" {
		form.Error = "Household name and your name are required."
		s.renderIndex(w, http.StatusBadRequest, form)
		return
	}
	if len(name) > maxNameLen || len(username) > maxNameLen {
		form.Error = "Names must be at most 200 characters."
		s.renderIndex(w, http.StatusBadRequest, form)
		return
	}

	code, err := s.service.CreateHousehold(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err, "failed to create household")
		return
	}
	if _, err := s.service.JoinHousehold(r.Context(), code, username); err != nil {
		s.writeError(w, r, err, "failed to join household")
		return
	}

	s.startSession(w, r, &Session{JoinCode: code, Username: username, CurrentList: domain.DefaultListName})
}

func (s *Server) handleJoinHousehold(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("join_code")
	username := strings.TrimSpace(r.FormValue("username"))
	form := indexData{JoinCode: code, Username: username}

	if username == "" {
		form.Error = "Your name is required."
		s.renderIndex(w, http.StatusBadRequest, form)
		return
	}
	if len(username) > maxNameLen {
		form.Error = "Names must be at most 200 characters."
		s.renderIndex(w, http.StatusBadRequest, form)
		return
	}

	doc, err := s.service.JoinHousehold(r.Context(), code, username)
	if errors.Is(err, domain.ErrHouseholdNotFound) {
		form.Error = "Invalid join code."
		s.renderIndex(w, http.StatusNotFound, form)
		return
	}
	if err != nil {
		s.writeError(w, r, err, "failed to join household")
		return
	}

	s.startSession(w, r, &Session{JoinCode: doc.Household.JoinCode, Username: username, CurrentList: domain.DefaultListName})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := s.sessions.Write(w, sess); err != nil {
		s.writeError(w, r, err, "failed to start session")
		return
	}
	http.Redirect(w, r, "/household", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// requireSession returns the caller's session or redirects to the index page.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Read(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return sess, true
}

// noticeMessages are the flash messages a redirect may ask the household page
// to show.
var noticeMessages = map[string]string{
	"nothing-deleted": "That item was already removed.",
}

func (s *Server) handleHousehold(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	listName := sess.CurrentList
	if q := strings.TrimSpace(r.URL.Query().Get("list")); q != "" {
		listName = q
	}
	if listName == "" {
		listName = domain.DefaultListName
	}

	view, err := s.service.GetListView(r.Context(), sess.JoinCode, listName)
	if errors.Is(err, domain.ErrListNotFound) && listName != domain.DefaultListName {
		listName = domain.DefaultListName
		view, err = s.service.GetListView(r.Context(), sess.JoinCode, listName)
	}
	if errors.Is(err, domain.ErrHouseholdNotFound) {
		s.sessions.Clear(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.writeError(w, r, err, "failed to load household")
		return
	}

	if listName != sess.CurrentList {
		sess.CurrentList = listName
		if err := s.sessions.Write(w, sess); err != nil {
			s.logger.Error("failed to update session", "error", err)
		}
	}

	// HTMX partial update: return only the item list fragment.
	if r.Header.Get("HX-Request") == "true" {
		if err := s.renderPartial(w, "partials/item_list.html", view); err != nil {
			s.logger.Error("render partial error", "error", err)
		}
		return
	}

	if err := s.renderPage(w, http.StatusOK,
		map[string]any{
			"View":      view,
			"User":      sess.Username,
			"Notice":    noticeMessages[r.URL.Query().Get("notice")],
			"ActiveNav": "lists",
		},
		"base.html", "pages/household.html", "partials/item_list.html",
	); err != nil {
		s.logger.Error("render page error", "page", "household", "error", err)
	}
}

func (s *Server) handleAddList(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	listName := strings.TrimSpace(r.FormValue("new_list"))
	if len(listName) > maxNameLen {
		http.Error(w, "list name too long", http.StatusBadRequest)
		return
	}
	if err := s.service.AddList(r.Context(), sess.JoinCode, listName); err != nil {
		s.writeError(w, r, err, "failed to add list")
		return
	}

	sess.CurrentList = listName
	if err := s.sessions.Write(w, sess); err != nil {
		s.writeError(w, r, err, "failed to update session")
		return
	}
	http.Redirect(w, r, "/household", http.StatusSeeOther)
}

// handleSwitchList only changes which list the session shows.
func (s *Server) handleSwitchList(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	listName := strings.TrimSpace(r.FormValue("switch_list"))
	if listName == "" {
		http.Error(w, "list name required", http.StatusBadRequest)
		return
	}

	sess.CurrentList = listName
	if err := s.sessions.Write(w, sess); err != nil {
		s.writeError(w, r, err, "failed to update session")
		return
	}
	http.Redirect(w, r, "/household", http.StatusSeeOther)
}
