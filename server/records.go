package server

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/garrow/portfolio/internal/cloud"
	"github.com/labstack/echo/v4"
)

type pushRequest struct {
	Records []cloud.ExternalRecord `json:"records"`
}

// handlePushRecords upserts one export batch. Records are applied in
// batch order inside a single transaction and keyed by their stable
// record id, so re-pushing an unchanged project is a no-op on the
// mirrored data.
func (s *Server) handlePushRecords(c echo.Context) error {
	var req pushRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(req.Records) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "empty batch"})
	}

	tx, err := s.db.Begin()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	defer tx.Rollback()

	for _, r := range req.Records {
		if r.ID == "" || (r.Type != cloud.TypeProject && r.Type != cloud.TypeItem) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed record"})
		}

		payload, err := json.Marshal(r.Fields)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed record fields"})
		}
		var parentID sql.NullString
		if r.Parent != nil {
			parentID = sql.NullString{String: r.Parent.RecordID, Valid: true}
		}

		_, err = tx.Exec(`
			INSERT INTO records (id, record_type, parent_id, position, payload, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (id) DO UPDATE SET
				record_type = EXCLUDED.record_type,
				parent_id = EXCLUDED.parent_id,
				position = EXCLUDED.position,
				payload = EXCLUDED.payload,
				updated_at = now()`,
			r.ID, r.Type, parentID, r.Position, payload)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store record"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to commit batch"})
	}

	return c.JSON(http.StatusOK, map[string]int{"stored": len(req.Records)})
}

// handleDeleteRecord removes a record; the schema cascades the delete
// to any child records. Deleting an unknown id is a no-op.
func (s *Server) handleDeleteRecord(c echo.Context) error {
	if _, err := s.db.Exec(`DELETE FROM records WHERE id = $1`, c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete record"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleShared returns the community feed of shared projects.
func (s *Server) handleShared(c echo.Context) error {
	rows, err := s.db.Query(`
		SELECT id,
		       COALESCE(payload->>'title', ''),
		       COALESCE(payload->>'detail', ''),
		       COALESCE(payload->>'owner', ''),
		       COALESCE((payload->>'closed')::boolean, false)
		FROM records
		WHERE record_type = 'project'
		ORDER BY updated_at DESC`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	defer rows.Close()

	projects := []cloud.SharedProject{}
	for rows.Next() {
		var p cloud.SharedProject
		if err := rows.Scan(&p.ID, &p.Title, &p.Detail, &p.Owner, &p.Closed); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	return c.JSON(http.StatusOK, map[string]any{"projects": projects})
}

// handleSharedItems returns the items of one shared project in export
// order.
func (s *Server) handleSharedItems(c echo.Context) error {
	rows, err := s.db.Query(`
		SELECT id,
		       COALESCE(payload->>'title', ''),
		       COALESCE(payload->>'detail', ''),
		       COALESCE((payload->>'completed')::boolean, false)
		FROM records
		WHERE record_type = 'item' AND parent_id = $1
		ORDER BY position`, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	defer rows.Close()

	items := []cloud.SharedItem{}
	for rows.Next() {
		var it cloud.SharedItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Detail, &it.Completed); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
