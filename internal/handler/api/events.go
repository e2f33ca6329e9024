// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/pressroom-io/pressroom/internal/middleware"
)

// ListEvents handles GET /events: the audit log, admins only.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil || !user.IsAdmin() {
		WriteForbidden(w, "Action not permitted")
		return
	}

	page, perPage := parsePagination(r, 50, 200)
	events, total, err := h.events.ListEvents(r.Context(), int64(perPage), int64((page-1)*perPage))
	if err != nil {
		WriteInternalError(w, "Failed to list events")
		return
	}

	WriteSuccess(w, nonNil(events), &Meta{
		Total: total, Page: page, PerPage: perPage,
		Pages: totalPages(total, perPage),
	})
}
