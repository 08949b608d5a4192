package web

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/cartshare/internal/service"
)

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "item name required", http.StatusBadRequest)
		return
	}
	if len(name) > maxNameLen {
		http.Error(w, "item name too long", http.StatusBadRequest)
		return
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
	if err != nil {
		http.Error(w, "quantity must be a whole number", http.StatusBadRequest)
		return
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		http.Error(w, "price must be a number", http.StatusBadRequest)
		return
	}

	if _, err := s.service.AddItem(r.Context(), sess.JoinCode, sess.CurrentList, name, quantity, price, sess.Username); err != nil {
		s.writeError(w, r, err, "failed to add item")
		return
	}
	http.Redirect(w, r, "/household", http.StatusSeeOther)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid item index", http.StatusBadRequest)
		return
	}

	result, err := s.service.DeleteItem(r.Context(), sess.JoinCode, sess.CurrentList, index)
	if err != nil {
		s.writeError(w, r, err, "failed to delete item")
		return
	}

	target := "/household"
	if result == service.NothingToDelete {
		target += "?notice=nothing-deleted"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
