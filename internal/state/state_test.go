package state

import (
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/estatehub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProperties() []models.Property {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Property{
		{ID: "prop1", Title: "Villa", Type: models.ListingSale, Images: []string{"a.jpg"}, CreatedAt: base},
		{ID: "prop2", Title: "Studio", Type: models.ListingRent, Images: []string{"b.jpg"}, CreatedAt: base.Add(time.Hour)},
	}
}

func TestNewStoreIsEmpty(t *testing.T) {
	s := New()
	defer s.Close()

	snap := s.Snapshot()
	assert.Empty(t, snap.Properties)
	assert.Empty(t, snap.FilteredProperties)
	assert.Nil(t, snap.SelectedProperty)
	assert.Nil(t, snap.Session)
	assert.Empty(t, snap.MessagesByChat)
	assert.Nil(t, s.Messages("prop1_user2"))
}

func TestSetPropertiesResetsFiltered(t *testing.T) {
	s := New()
	defer s.Close()
	props := testProperties()

	s.SetProperties(props)
	s.SetFilteredProperties(props[1:])
	assert.Len(t, s.FilteredProperties(), 1)
	assert.Len(t, s.Properties(), 2, "filtering leaves the full list alone")

	s.SetProperties(props[:1])
	assert.Equal(t, props[:1], s.Properties())
	assert.Equal(t, props[:1], s.FilteredProperties())
}

func TestStoreCopiesInputAndOutput(t *testing.T) {
	s := New()
	defer s.Close()
	props := testProperties()

	s.SetProperties(props)
	props[0].Images[0] = "changed-by-caller.jpg"
	assert.Equal(t, "a.jpg", s.Properties()[0].Images[0])

	got := s.Properties()
	got[0].Title = "changed-by-reader"
	assert.Equal(t, "Villa", s.Properties()[0].Title)
}

func TestSelection(t *testing.T) {
	s := New()
	defer s.Close()
	p := testProperties()[0]

	s.SelectProperty(p)
	require.NotNil(t, s.SelectedProperty())
	assert.Equal(t, p, *s.SelectedProperty())

	s.ClearSelection()
	assert.Nil(t, s.SelectedProperty())
}

func TestSessionAndLogout(t *testing.T) {
	s := New()
	defer s.Close()
	avatar := "https://images.example.com/avatars/jane.jpg"
	user := models.User{ID: "user1", Name: "Jane Cooper", Email: "jane@example.com", Avatar: &avatar, Role: models.RoleAgent}

	s.SetProperties(testProperties())
	s.AddMessage("prop1_user2", models.Message{ID: "m1", Text: "hi"})
	s.SetSession(&user)

	avatar = "mutated"
	require.NotNil(t, s.Session())
	assert.Equal(t, "https://images.example.com/avatars/jane.jpg", *s.Session().Avatar)

	s.Logout()
	assert.Nil(t, s.Session())
	assert.Len(t, s.Properties(), 2, "logout keeps cached listings")
	assert.Len(t, s.Messages("prop1_user2"), 1, "logout keeps messages")
}

func TestAddMessageKeepsArrivalOrderAndDuplicates(t *testing.T) {
	s := New()
	defer s.Close()
	m1 := models.Message{ID: "m1", Text: "first"}
	m2 := models.Message{ID: "m2", Text: "second"}

	s.AddMessage("prop1_user2", m1)
	s.AddMessage("prop1_user2", m2)
	s.AddMessage("prop1_user2", m1)
	s.AddMessage("prop2_user2", m2)

	assert.Equal(t, []models.Message{m1, m2, m1}, s.Messages("prop1_user2"))
	assert.Equal(t, []models.Message{m2}, s.Messages("prop2_user2"))
}

func TestSubscribe(t *testing.T) {
	s := New()
	defer s.Close()

	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	s.SetProperties(testProperties())
	s.SelectProperty(testProperties()[1])
	require.Len(t, got, 2)
	assert.Len(t, got[0].Properties, 2)
	assert.Nil(t, got[0].SelectedProperty)
	require.NotNil(t, got[1].SelectedProperty)
	assert.Equal(t, "prop2", got[1].SelectedProperty.ID)

	got[1].Properties[0].Title = "mutated snapshot"
	assert.Equal(t, "Villa", s.Properties()[0].Title, "snapshots share no memory")

	unsubscribe()
	unsubscribe()
	s.ClearSelection()
	assert.Len(t, got, 2)
}

func TestListenerMayReadStore(t *testing.T) {
	s := New()
	defer s.Close()

	var session *models.User
	s.Subscribe(func(Snapshot) {
		session = s.Session()
	})

	s.SetSession(&models.User{ID: "user2", Name: "John Smith"})
	require.NotNil(t, session)
	assert.Equal(t, "user2", session.ID)
}

func TestCloseDropsSubscribers(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	s.Close()
	s.SetProperties(testProperties())
	assert.Zero(t, calls)
	assert.Len(t, s.Properties(), 2)

	s.Subscribe(func(Snapshot) { calls++ })
	s.ClearSelection()
	assert.Zero(t, calls)
}

func TestConcurrentMutations(t *testing.T) {
	s := New()
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddMessage("prop1_user2", models.Message{ID: "m"})
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	assert.Len(t, s.Messages("prop1_user2"), 50)
}
