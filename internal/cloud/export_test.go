package cloud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garrow/portfolio/internal/model"
)

func testProject() (model.Project, []model.Item) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := model.Project{
		ID:        "11111111-1111-1111-1111-111111111111",
		Title:     "Kitchen",
		Detail:    "Renovation",
		CreatedAt: base,
	}
	items := []model.Item{
		{ID: "a1", ProjectID: p.ID, Title: "done last", Completed: true, Priority: model.PriorityHigh, CreatedAt: base},
		{ID: "a2", ProjectID: p.ID, Title: "urgent", Priority: model.PriorityHigh, CreatedAt: base.Add(time.Hour)},
		{ID: "a3", ProjectID: p.ID, Title: "later", Priority: model.PriorityLow, CreatedAt: base},
	}
	return p, items
}

func TestRecordID_Deterministic(t *testing.T) {
	assert.Equal(t, RecordID("abc"), RecordID("abc"))
	assert.NotEqual(t, RecordID("abc"), RecordID("abd"))
}

func TestExportProject_ParentLast(t *testing.T) {
	p, items := testProject()

	records := ExportProject(p, items, "garrow")
	require.Len(t, records, 4)

	parent := records[len(records)-1]
	assert.Equal(t, TypeProject, parent.Type)
	assert.Equal(t, RecordID(p.ID), parent.ID)
	assert.Nil(t, parent.Parent)
	assert.Equal(t, "Kitchen", parent.Fields["title"])
	assert.Equal(t, "garrow", parent.Fields["owner"])
	assert.Equal(t, false, parent.Fields["closed"])

	for _, r := range records[:len(records)-1] {
		assert.Equal(t, TypeItem, r.Type)
		require.NotNil(t, r.Parent)
		assert.Equal(t, parent.ID, r.Parent.RecordID)
		assert.Equal(t, ActionDeleteSelf, r.Parent.Action)
	}
}

func TestExportProject_ChildrenInOptimizedOrder(t *testing.T) {
	p, items := testProject()

	records := ExportProject(p, items, "garrow")

	// Incomplete before complete, then priority descending: urgent,
	// later, done last. Positions follow that order.
	titles := []string{}
	for i, r := range records[:3] {
		assert.Equal(t, i, r.Position)
		titles = append(titles, r.Fields["title"].(string))
	}
	assert.Equal(t, []string{"urgent", "later", "done last"}, titles)

	// The caller's slice is left untouched.
	assert.Equal(t, "done last", items[0].Title)
}

func TestExportProject_Idempotent(t *testing.T) {
	p, items := testProject()

	first := ExportProject(p, items, "garrow")
	second := ExportProject(p, items, "garrow")

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Position, second[i].Position)
	}
}

func TestExportProject_UntitledFallbacks(t *testing.T) {
	p, items := testProject()
	p.Title = ""
	items[1].Title = ""

	records := ExportProject(p, items, "garrow")

	assert.Equal(t, "New Project", records[len(records)-1].Fields["title"])
	assert.Equal(t, "New Item", records[0].Fields["title"])
}

func TestCrypto_RoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	c := NewCrypto("correct horse battery staple", salt)

	sealed, err := c.Encrypt("buy paint")
	require.NoError(t, err)
	assert.NotEqual(t, "buy paint", sealed)

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "buy paint", plain)

	// A different passphrase over the same salt cannot open it.
	_, err = NewCrypto("wrong", salt).Decrypt(sealed)
	assert.Error(t, err)
}

func TestEncryptRecords_SealsTextOnly(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	client := &Client{crypto: NewCrypto("secret", salt)}

	p, items := testProject()
	records := ExportProject(p, items, "garrow")

	sealed, err := client.encryptRecords(records)
	require.NoError(t, err)
	require.Len(t, sealed, len(records))

	parent := sealed[len(sealed)-1]
	assert.NotEqual(t, "Kitchen", parent.Fields["title"])
	assert.Equal(t, "garrow", parent.Fields["owner"], "owner stays readable for the feed")
	assert.Equal(t, false, parent.Fields["closed"], "flags stay plaintext")

	plain, err := client.crypto.Decrypt(parent.Fields["title"].(string))
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", plain)

	// The input batch is not mutated.
	assert.Equal(t, "Kitchen", records[len(records)-1].Fields["title"])
}

func TestEncryptRecords_PassthroughWithoutKey(t *testing.T) {
	client := &Client{}

	p, items := testProject()
	records := ExportProject(p, items, "garrow")

	out, err := client.encryptRecords(records)
	require.NoError(t, err)
	assert.Equal(t, records, out)
}
