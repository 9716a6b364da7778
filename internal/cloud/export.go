// Package cloud converts local entities into externally addressable
// records and pushes them to the mirror server. The bridge itself only
// prepares record batches; transmission is the Client's job and its
// failures never touch the local store.
package cloud

import (
	"github.com/garrow/portfolio/internal/model"
	"github.com/google/uuid"
)

// recordNamespace seeds deterministic external record ids. It must
// never change: repeated exports of the same entity have to produce
// the same record id so the remote side can upsert idempotently.
var recordNamespace = uuid.MustParse("8d3a7da4-55c1-4ab8-9ac0-1d90b2c4f71e")

// RecordID derives the stable external record id for a local entity id.
func RecordID(localID string) string {
	return uuid.NewSHA1(recordNamespace, []byte(localID)).String()
}

// Record types on the wire.
const (
	TypeProject = "project"
	TypeItem    = "item"
)

// ActionDeleteSelf marks a child reference whose record is removed
// when its parent record is deleted.
const ActionDeleteSelf = "delete-self"

// Reference points a child record at its parent.
type Reference struct {
	RecordID string `json:"record_id"`
	Action   string `json:"action"`
}

// ExternalRecord is the wire representation of one exported entity.
type ExternalRecord struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Parent   *Reference     `json:"parent,omitempty"`
	Position int            `json:"position"`
	Fields   map[string]any `json:"fields"`
}

// ExportProject prepares the record batch for sharing one project.
// Child records come first in optimized item order, the parent record
// is appended last; the remote side replays the batch in order, so the
// parent arriving last marks the batch complete.
func ExportProject(p model.Project, items []model.Item, owner string) []ExternalRecord {
	parentID := RecordID(p.ID)

	sorted := make([]model.Item, len(items))
	copy(sorted, items)
	model.SortItems(sorted, model.SortOptimized)

	records := make([]ExternalRecord, 0, len(sorted)+1)
	for i, it := range sorted {
		records = append(records, ExternalRecord{
			ID:       RecordID(it.ID),
			Type:     TypeItem,
			Parent:   &Reference{RecordID: parentID, Action: ActionDeleteSelf},
			Position: i,
			Fields: map[string]any{
				"title":     it.DisplayTitle(),
				"detail":    it.Detail,
				"completed": it.Completed,
			},
		})
	}
	records = append(records, ExternalRecord{
		ID:       parentID,
		Type:     TypeProject,
		Position: len(sorted),
		Fields: map[string]any{
			"title":  p.DisplayTitle(),
			"detail": p.Detail,
			"owner":  owner,
			"closed": p.Closed,
		},
	})
	return records
}

// SharedProject is one entry of the community feed.
type SharedProject struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Owner  string `json:"owner"`
	Closed bool   `json:"closed"`
}

// SharedItem is one item of a shared project.
type SharedItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`
	Completed bool   `json:"completed"`
}
