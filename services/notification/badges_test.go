package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskmate/models"
)

func testMapping() TabMapping {
	return TabMapping{
		Requester: []string{models.MsgOfferReceived, models.MsgTaskCompleted, "chat"},
		Tasker:    []string{models.MsgOfferAccepted, models.MsgTaskCancelled, "chat"},
	}
}

func TestTabCounts_SplitsByRoleAndCategory(t *testing.T) {
	t.Parallel()

	a := NewAggregator(nil)
	// Task A: posted by the user. Task B: user is the accepted tasker.
	a.Ingest(taskPayload("m1", models.MsgOfferReceived, "A"))
	a.Ingest(taskPayload("m2", models.MsgOfferAccepted, "B"))
	a.Ingest(models.PushPayload{
		MessageID: "m3",
		Data:      models.PushData{Type: models.NotifTypeChat, ChatID: "c1", TaskID: "B"},
	})

	badges := a.TabCounts(testMapping(), []string{"A"}, []string{"B"})

	assert.Equal(t, 1, badges.Requester)
	assert.Equal(t, 2, badges.Tasker)
	assert.Equal(t, 1, badges.PerTask["A"])
	assert.Equal(t, 2, badges.PerTask["B"])
}

func TestTabCounts_IgnoresCategoriesOutsideMapping(t *testing.T) {
	t.Parallel()

	a := NewAggregator(nil)
	// "offer accepted" is a tasker category; on a requester task it counts
	// toward neither tab.
	a.Ingest(taskPayload("m1", models.MsgOfferAccepted, "A"))

	badges := a.TabCounts(testMapping(), []string{"A"}, nil)

	assert.Zero(t, badges.Requester)
	assert.Zero(t, badges.Tasker)
	assert.Empty(t, badges.PerTask)
}

func TestTabCounts_ReadRecordsDoNotCount(t *testing.T) {
	t.Parallel()

	a := NewAggregator(nil)
	a.Ingest(taskPayload("m1", models.MsgOfferReceived, "A"))
	a.MarkRead("m1")

	badges := a.TabCounts(testMapping(), []string{"A"}, nil)
	assert.Zero(t, badges.Requester)
}

func TestTabCounts_UnrelatedTasksExcluded(t *testing.T) {
	t.Parallel()

	a := NewAggregator(nil)
	a.Ingest(taskPayload("m1", models.MsgOfferReceived, "Z"))

	badges := a.TabCounts(testMapping(), []string{"A"}, []string{"B"})
	assert.Zero(t, badges.Requester)
	assert.Zero(t, badges.Tasker)
}
