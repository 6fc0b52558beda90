package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/estatehub/internal/db"
	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/models"
	"github.com/raphaelgruber/estatehub/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger creates a logger that writes to stderr for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// newTestService returns a zero-latency service over a fresh in-memory store.
func newTestService(t *testing.T) (*Service, *db.Store) {
	t.Helper()
	store := db.NewStore(db.NewMemoryBackend(0), testLogger())
	return New(store, seed.MustLoad(), Options{Logger: testLogger()}), store
}

func sampleDraft(owner models.User) models.PropertyDraft {
	return models.PropertyDraft{
		Title:       "Lakeside Cabin",
		Description: "<p>Quiet cabin by the lake.</p>",
		Price:       450000,
		Bedrooms:    2,
		Bathrooms:   1,
		Area:        980,
		Location: models.Location{
			Address: "7 Shore Road",
			City:    "Kirkland",
			State:   "WA",
			Zip:     "98033",
			Lat:     47.68,
			Lng:     -122.2,
		},
		Images:    []string{"https://images.example.com/cabin-1.jpg"},
		Type:      models.ListingSale,
		OwnerID:   owner.ID,
		OwnerName: owner.Name,
	}
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestAuthenticateSeedUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, err := svc.Authenticate(ctx, "jane@example.com", DefaultDemoPassword)
	require.NoError(t, err)

	want, _ := seed.MustLoad().UserByEmail("jane@example.com")
	assert.Equal(t, want, *user)

	session, err := svc.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, want, *session)
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "jane@example.com", "hunter2"},
		{"unknown email", "nobody@example.com", DefaultDemoPassword},
		{"email is case sensitive", "JANE@example.com", DefaultDemoPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCredentials))

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, InvalidCredentials, authErr.Kind)
		})
	}

	session, err := svc.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session, "failed sign-in must not create a session")
}

func TestRegisterThenAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	registered, err := svc.Register(ctx, "Alex Kim", "alex@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, registered.Role)
	assert.Contains(t, registered.ID, "user")

	session, err := svc.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, registered.ID, session.ID)

	require.NoError(t, svc.EndSession(ctx))

	user, err := svc.Authenticate(ctx, "alex@example.com", DefaultDemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "Alex Kim", user.Name)
	assert.Equal(t, "alex@example.com", user.Email)
	assert.Equal(t, registered.ID, user.ID)
}

func TestRegisterThenAuthenticatePaddedEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	registered, err := svc.Register(ctx, "Alex Kim", " alex@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", registered.Email)
	require.NoError(t, svc.EndSession(ctx))

	for _, email := range []string{" alex@example.com ", "alex@example.com", "\talex@example.com\n"} {
		user, err := svc.Authenticate(ctx, email, DefaultDemoPassword)
		require.NoError(t, err, "email %q", email)
		assert.Equal(t, registered.ID, user.ID)
	}

	_, err = svc.Register(ctx, "Alex Again", "alex@example.com  ", "secret")
	assert.True(t, errors.Is(err, ErrEmailInUse))

	seeded, err := svc.Authenticate(ctx, "  jane@example.com", DefaultDemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "user1", seeded.ID)
}

func TestRegisterEmailInUse(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Register(ctx, "Jane Again", "jane@example.com", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmailInUse), "seed email is taken")

	_, err = svc.Register(ctx, "Alex", "alex@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Alex Two", "alex@example.com", "pw")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, EmailInUse, authErr.Kind)

	var users []models.User
	_, err = store.Get(ctx, db.KeyRegisteredUsers, &users)
	require.NoError(t, err)
	assert.Len(t, users, 1, "no duplicate must be created")
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "  ", "a@example.com", "pw")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.Register(context.Background(), "A", "", "pw")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRegisterUniqueIDsUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	const n = 20
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.Register(ctx, "User", "user"+string(rune('a'+i))+"@example.com", "pw")
			if assert.NoError(t, err) {
				ids <- u.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.EndSession(ctx), "ending without a session is a no-op")

	_, err := svc.Authenticate(ctx, "john@example.com", DefaultDemoPassword)
	require.NoError(t, err)
	require.NoError(t, svc.EndSession(ctx))

	session, err := svc.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

// =============================================================================
// PROPERTY TESTS
// =============================================================================

func TestListPropertiesSeedOnly(t *testing.T) {
	svc, _ := newTestService(t)

	props, err := svc.ListProperties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seed.MustLoad().Properties(), props)
}

func TestListPropertiesIdempotentAndFresh(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	first, err := svc.ListProperties(ctx)
	require.NoError(t, err)
	first[0].Title = "mutated by caller"
	first[0].Images[0] = "mutated.jpg"

	second, err := svc.ListProperties(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.MustLoad().Properties(), second)
}

func TestListPropertiesMergesPublishedFirst(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	owner, _ := seed.MustLoad().UserByID("user2")

	older, err := svc.PublishProperty(ctx, sampleDraft(owner))
	require.NoError(t, err)
	newer, err := svc.PublishProperty(ctx, sampleDraft(owner))
	require.NoError(t, err)

	// A published copy of a seed id wins over the seed entry.
	override, _ := seed.MustLoad().PropertyByID("prop1")
	override.Title = "Renovated Waterfront Villa"
	var published []models.Property
	_, err = store.Get(ctx, db.KeyProperties, &published)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, db.KeyProperties, append(published, override)))

	props, err := svc.ListProperties(ctx)
	require.NoError(t, err)
	require.Len(t, props, len(seed.MustLoad().Properties())+2)
	assert.Equal(t, newer.ID, props[0].ID)
	assert.Equal(t, older.ID, props[1].ID)

	count := 0
	for _, p := range props {
		if p.ID == "prop1" {
			count++
			assert.Equal(t, "Renovated Waterfront Villa", p.Title)
		}
	}
	assert.Equal(t, 1, count, "ids are de-duplicated")
}

func TestPublishThenGetProperty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner, _ := seed.MustLoad().UserByID("user1")
	draft := sampleDraft(owner)

	published, err := svc.PublishProperty(ctx, draft)
	require.NoError(t, err)
	assert.NotEmpty(t, published.ID)
	assert.False(t, published.CreatedAt.IsZero())

	got, err := svc.GetProperty(ctx, published.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ToProperty(published.ID, published.CreatedAt), *got)
}

func TestGetPropertyNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProperty(context.Background(), "prop404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "property", nf.Resource)
	assert.Equal(t, "prop404", nf.ID)
}

func TestPublishValidation(t *testing.T) {
	svc, _ := newTestService(t)
	owner, _ := seed.MustLoad().UserByID("user1")

	tests := []struct {
		name   string
		mutate func(*models.PropertyDraft)
		field  string
	}{
		{"blank title", func(d *models.PropertyDraft) { d.Title = " " }, "title"},
		{"no images", func(d *models.PropertyDraft) { d.Images = nil }, "images"},
		{"bad type", func(d *models.PropertyDraft) { d.Type = models.TypeAll }, "type"},
		{"negative price", func(d *models.PropertyDraft) { d.Price = -1 }, "price"},
		{"negative rooms", func(d *models.PropertyDraft) { d.Bedrooms = -2 }, "rooms"},
		{"no owner", func(d *models.PropertyDraft) { d.OwnerID = "" }, "owner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleDraft(owner)
			tt.mutate(&d)
			_, err := svc.PublishProperty(context.Background(), d)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestPublishIsAtomicOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	owner, _ := seed.MustLoad().UserByID("user1")

	first, err := svc.PublishProperty(ctx, sampleDraft(owner))
	require.NoError(t, err)

	bad := sampleDraft(owner)
	bad.Location.Lat = math.Inf(1)
	_, err = svc.PublishProperty(ctx, bad)
	require.Error(t, err)

	var storageErr *db.StorageError
	assert.ErrorAs(t, err, &storageErr)

	var published []models.Property
	_, err = store.Get(ctx, db.KeyProperties, &published)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, first.ID, published[0].ID)
}

func TestPublishQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	store := db.NewStore(db.NewMemoryBackend(256), testLogger())
	svc := New(store, seed.MustLoad(), Options{Logger: testLogger()})
	owner, _ := seed.MustLoad().UserByID("user1")

	d := sampleDraft(owner)
	d.Description = string(make([]byte, 512))
	_, err := svc.PublishProperty(ctx, d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrQuotaExceeded))
}

func TestPublishCancelledDuringLatency(t *testing.T) {
	store := db.NewStore(db.NewMemoryBackend(0), testLogger())
	svc := New(store, seed.MustLoad(), Options{
		Latency: FixedLatency(time.Second),
		Logger:  testLogger(),
	})
	owner, _ := seed.MustLoad().UserByID("user1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.PublishProperty(ctx, sampleDraft(owner))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var published []models.Property
	found, err := store.Get(context.Background(), db.KeyProperties, &published)
	require.NoError(t, err)
	assert.False(t, found, "cancelled publish must not persist anything")
}

func TestSortProperties(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	props := []models.Property{
		{ID: "a", Price: 300, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b", Price: 100, CreatedAt: base},
		{ID: "c", Price: 200, CreatedAt: base.Add(time.Hour)},
		{ID: "d", Price: 100, CreatedAt: base.Add(3 * time.Hour)},
	}

	ids := func(ps []models.Property) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	assert.Equal(t, []string{"d", "a", "c", "b"}, ids(SortProperties(props, models.SortNewest)))
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(SortProperties(props, models.SortOldest)))
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(SortProperties(props, models.SortPriceHigh)))
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids(SortProperties(props, models.SortPriceLow)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(props), "input is not reordered")
}

func TestFeaturedAndOwnerHelpers(t *testing.T) {
	props := seed.MustLoad().Properties()

	featured := FeaturedProperties(props, 2)
	require.Len(t, featured, 2)
	for _, p := range featured {
		assert.True(t, p.Featured)
	}
	assert.Len(t, FeaturedProperties(props, 0), 3)

	mine := PropertiesByOwner(props, "user3")
	require.NotEmpty(t, mine)
	for _, p := range mine {
		assert.Equal(t, "user3", p.OwnerID)
	}
	assert.Empty(t, PropertiesByOwner(props, "nobody"))
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestListMessagesUnknownChat(t *testing.T) {
	svc, _ := newTestService(t)

	msgs, err := svc.ListMessages(context.Background(), "prop9_user9")
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestSendMessageAppends(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	chatID := models.ChatID("prop1", "user2")

	before, err := svc.ListMessages(ctx, chatID)
	require.NoError(t, err)

	sent, err := svc.SendMessage(ctx, chatID, "Can I bring my partner?", "user2", "John Smith", "user1")
	require.NoError(t, err)
	assert.NotEmpty(t, sent.ID)

	after, err := svc.ListMessages(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	assert.Equal(t, *sent, after[len(after)-1])
	assert.Equal(t, before, after[:len(before)])
}

func TestSendMessageCreatesChat(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	chatID := models.ChatID("prop5", "user2")

	_, err := svc.SendMessage(ctx, chatID, "Hello", "user2", "John Smith", "user1")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, chatID, "Anyone there?", "user2", "John Smith", "user1")
	require.NoError(t, err)

	msgs, err := svc.ListMessages(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hello", msgs[0].Text)
	assert.Equal(t, "Anyone there?", msgs[1].Text)
}

func TestSendMessageValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SendMessage(context.Background(), "prop1_user2", "   ", "user2", "John", "user1")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.SendMessage(context.Background(), "", "hi", "user2", "John", "user1")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestListConversations(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	convs, err := svc.ListConversations(ctx, "user2")
	require.NoError(t, err)
	require.Len(t, convs, 2)

	seen := map[string]bool{}
	for _, c := range convs {
		assert.False(t, seen[c.ID], "duplicate conversation %s", c.ID)
		seen[c.ID] = true
	}

	// prop2 chat is newer than the prop1 chat.
	assert.Equal(t, "prop2_user2", convs[0].ID)
	assert.Equal(t, "Downtown Studio Apartment", convs[0].PropertyTitle)
	assert.Equal(t, "user3", convs[0].OtherUserID)
	assert.Equal(t, "Maria Garcia", convs[0].OtherUserName)
	assert.Equal(t, 0, convs[0].UnreadCount, "user2 sent the only message")

	assert.Equal(t, "prop1_user2", convs[1].ID)
	assert.Equal(t, "user1", convs[1].OtherUserID)
	assert.Equal(t, "Yes it is! Saturday at 11am works well. Shall I book you in?", convs[1].LastMessageText)
	assert.Equal(t, 1, convs[1].UnreadCount)
}

func TestListConversationsRequiresInvolvementInLatestMessage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	// user4 appears nowhere in the seeded chats.
	convs, err := svc.ListConversations(ctx, "user4")
	require.NoError(t, err)
	assert.Empty(t, convs)

	// Once the latest prop1 message no longer involves user2, the chat drops out.
	_, err = svc.SendMessage(ctx, "prop1_user2", "Forwarding to my colleague", "user1", "Jane Cooper", "user3")
	require.NoError(t, err)

	convs, err = svc.ListConversations(ctx, "user2")
	require.NoError(t, err)
	for _, c := range convs {
		assert.NotEqual(t, "prop1_user2", c.ID)
	}
}

func TestListConversationsSkipsUnresolvable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.SendMessage(ctx, "ghost_user2", "hello?", "user2", "John Smith", "user1")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "prop3_user2", "hello?", "user2", "John Smith", "user404")
	require.NoError(t, err)

	convs, err := svc.ListConversations(ctx, "user2")
	require.NoError(t, err)
	for _, c := range convs {
		assert.NotEqual(t, "ghost_user2", c.ID)
		assert.NotEqual(t, "prop3_user2", c.ID)
	}
}

func TestListConversationsWithRegisteredUserAndPublishedProperty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	buyer, err := svc.Register(ctx, "Alex Kim", "alex@example.com", "pw")
	require.NoError(t, err)
	owner, _ := seed.MustLoad().UserByID("user1")
	listing, err := svc.PublishProperty(ctx, sampleDraft(owner))
	require.NoError(t, err)

	chatID := models.ChatID(listing.ID, buyer.ID)
	_, err = svc.SendMessage(ctx, chatID, "Is the cabin winterised?", buyer.ID, buyer.Name, owner.ID)
	require.NoError(t, err)

	convs, err := svc.ListConversations(ctx, owner.ID)
	require.NoError(t, err)
	require.NotEmpty(t, convs)
	assert.Equal(t, chatID, convs[0].ID)
	assert.Equal(t, "Lakeside Cabin", convs[0].PropertyTitle)
	assert.Equal(t, "Alex Kim", convs[0].OtherUserName)
	assert.Equal(t, 1, convs[0].UnreadCount)
}

func TestMarkConversationRead(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := db.NewStore(db.NewMemoryBackend(0), testLogger())
	svc := New(store, seed.MustLoad(), Options{
		Logger: testLogger(),
		Clock:  func() time.Time { now = now.Add(time.Second); return now },
	})

	unread := func() int {
		convs, err := svc.ListConversations(ctx, "user2")
		require.NoError(t, err)
		for _, c := range convs {
			if c.ID == "prop1_user2" {
				return c.UnreadCount
			}
		}
		t.Fatal("conversation prop1_user2 missing")
		return -1
	}

	assert.Equal(t, 1, unread())
	assert.Equal(t, 1, unread(), "unread count is deterministic")

	require.NoError(t, svc.MarkConversationRead(ctx, "user2", "prop1_user2", ""))
	assert.Equal(t, 0, unread())

	_, err := svc.SendMessage(ctx, "prop1_user2", "See you Saturday", "user1", "Jane Cooper", "user2")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "prop1_user2", "Bring ID please", "user1", "Jane Cooper", "user2")
	require.NoError(t, err)
	assert.Equal(t, 2, unread())

	require.NoError(t, svc.MarkConversationRead(ctx, "user2", "prop1_user2", ""))
	assert.Equal(t, 0, unread())
}

func TestMarkConversationReadSameTimestamp(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := db.NewStore(db.NewMemoryBackend(0), testLogger())
	svc := New(store, seed.MustLoad(), Options{
		Logger: testLogger(),
		Clock:  func() time.Time { return fixed },
	})

	first, err := svc.SendMessage(ctx, "prop1_user2", "See you Saturday", "user1", "Jane Cooper", "user2")
	require.NoError(t, err)
	require.NoError(t, svc.MarkConversationRead(ctx, "user2", "prop1_user2", first.ID))
	assert.Equal(t, 0, conversationUnread(t, svc, "user2", "prop1_user2"))

	second, err := svc.SendMessage(ctx, "prop1_user2", "Bring ID please", "user1", "Jane Cooper", "user2")
	require.NoError(t, err)
	assert.Equal(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, 1, conversationUnread(t, svc, "user2", "prop1_user2"))
}

func TestMarkConversationReadUpToMessage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	shown, err := svc.SendMessage(ctx, "prop1_user2", "See you Saturday", "user1", "Jane Cooper", "user2")
	require.NoError(t, err)
	// Arrives after the reader fetched the conversation.
	_, err = svc.SendMessage(ctx, "prop1_user2", "Bring ID please", "user1", "Jane Cooper", "user2")
	require.NoError(t, err)
	assert.Equal(t, 3, conversationUnread(t, svc, "user2", "prop1_user2"))

	require.NoError(t, svc.MarkConversationRead(ctx, "user2", "prop1_user2", shown.ID))
	assert.Equal(t, 1, conversationUnread(t, svc, "user2", "prop1_user2"))

	t.Run("mark never moves backwards", func(t *testing.T) {
		require.NoError(t, svc.MarkConversationRead(ctx, "user2", "prop1_user2", "msg2"))
		assert.Equal(t, 1, conversationUnread(t, svc, "user2", "prop1_user2"))
	})

	t.Run("unknown message", func(t *testing.T) {
		err := svc.MarkConversationRead(ctx, "user2", "prop1_user2", "msg-missing")
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, 1, conversationUnread(t, svc, "user2", "prop1_user2"))
	})

	t.Run("empty chat is a no-op", func(t *testing.T) {
		require.NoError(t, svc.MarkConversationRead(ctx, "user2", "prop9_user2", ""))
	})
}

func conversationUnread(t *testing.T, svc *Service, userID, chatID string) int {
	t.Helper()
	convs, err := svc.ListConversations(context.Background(), userID)
	require.NoError(t, err)
	for _, c := range convs {
		if c.ID == chatID {
			return c.UnreadCount
		}
	}
	t.Fatalf("conversation %s missing", chatID)
	return -1
}

// =============================================================================
// LATENCY & METRICS TESTS
// =============================================================================

func TestLatencyDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), Latency{}.Delay(metrics.OpPublishProperty))
	assert.Equal(t, 5*time.Millisecond, FixedLatency(5*time.Millisecond).Delay(metrics.OpRegister))
	assert.Equal(t, 800*time.Millisecond, DefaultLatency().Delay(metrics.OpPublishProperty))
	assert.Equal(t, 200*time.Millisecond, LatencyFromMillis(-1).Delay(metrics.OpSendMessage))
	assert.Equal(t, 50*time.Millisecond, LatencyFromMillis(50).Delay(metrics.OpSendMessage))
}

func TestSimulatedLatencyIsApplied(t *testing.T) {
	store := db.NewStore(db.NewMemoryBackend(0), testLogger())
	svc := New(store, seed.MustLoad(), Options{
		Latency: FixedLatency(30 * time.Millisecond),
		Logger:  testLogger(),
	})

	start := time.Now()
	_, err := svc.ListProperties(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestOperationsRecordMetrics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(ctx, "jane@example.com", DefaultDemoPassword)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "jane@example.com", "nope")
	require.Error(t, err)

	op := svc.Metrics().Operation(metrics.OpAuthenticate)
	require.NotNil(t, op)
	assert.Equal(t, int64(2), op.Count)
	assert.Equal(t, int64(1), op.Errors)
}
