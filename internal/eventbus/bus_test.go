package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldmind/worldmind/internal/models"
)

func TestPublishDeliversToGlobalSubscriber(t *testing.T) {
	b := New()
	var received []models.Event
	b.Subscribe(func(e models.Event) { received = append(received, e) })

	b.Publish(models.Event{Kind: models.EventMissionStatusChanged, MissionID: "m1"})

	assert.Len(t, received, 1)
	assert.Equal(t, "m1", received[0].MissionID)
}

func TestMissionSubscriberOnlySeesItsMission(t *testing.T) {
	b := New()
	var received []models.Event
	b.SubscribeMission("m1", func(e models.Event) { received = append(received, e) })

	b.Publish(models.Event{MissionID: "m2"})
	assert.Empty(t, received)

	b.Publish(models.Event{MissionID: "m1"})
	assert.Len(t, received, 1)
}

func TestMissionSubscribersRunBeforeGlobal(t *testing.T) {
	b := New()
	var order []string
	b.SubscribeMission("m1", func(e models.Event) { order = append(order, "mission") })
	b.Subscribe(func(e models.Event) { order = append(order, "global") })

	b.Publish(models.Event{MissionID: "m1"})

	assert.Equal(t, []string{"mission", "global"}, order)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub := b.Subscribe(func(e models.Event) { count++ })

	b.Publish(models.Event{})
	sub.Cancel()
	b.Publish(models.Event{})

	assert.Equal(t, 1, count)
}

func TestPublishIsolatesPanickingSubscriber(t *testing.T) {
	b := New()
	b.Subscribe(func(e models.Event) { panic("boom") })
	called := false
	b.Subscribe(func(e models.Event) { called = true })

	assert.NotPanics(t, func() {
		b.Publish(models.Event{})
	})
	assert.True(t, called)
}

func TestLateSubscriberNeverSeesPastEvents(t *testing.T) {
	b := New()
	b.Publish(models.Event{Kind: models.EventTaskCompleted})

	var received []models.Event
	b.Subscribe(func(e models.Event) { received = append(received, e) })

	assert.Empty(t, received)
}
