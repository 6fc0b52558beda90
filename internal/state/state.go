// Package state holds the client-side view of the marketplace: the loaded
// listings, the current filter result, the selected listing, the signed-in
// user and chat messages received in this session.
//
// A Store is created explicitly and handed to whoever renders from it.
// Subscribers are called synchronously after every mutation with a Snapshot
// that shares no memory with the store.
package state

import (
	"maps"
	"slices"
	"sync"

	"github.com/raphaelgruber/estatehub/internal/models"
)

// Snapshot is an immutable copy of the store contents.
type Snapshot struct {
	Properties         []models.Property
	FilteredProperties []models.Property
	SelectedProperty   *models.Property
	Session            *models.User
	MessagesByChat     map[string][]models.Message
}

// Listener receives a snapshot after each mutation.
type Listener func(Snapshot)

// Store is a last-write-wins cache of client state. It is safe for
// concurrent use.
type Store struct {
	mu sync.RWMutex

	properties         []models.Property
	filteredProperties []models.Property
	selectedProperty   *models.Property
	session            *models.User
	messagesByChat     map[string][]models.Message

	nextID    int
	listeners map[int]Listener
	closed    bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		properties:         []models.Property{},
		filteredProperties: []models.Property{},
		messagesByChat:     make(map[string][]models.Message),
		listeners:          make(map[int]Listener),
	}
}

// Close drops all subscribers. Mutations after Close still apply but notify
// nobody.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	clear(s.listeners)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Properties returns a copy of the loaded properties.
func (s *Store) Properties() []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneProperties(s.properties)
}

// FilteredProperties returns a copy of the current filter result.
func (s *Store) FilteredProperties() []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneProperties(s.filteredProperties)
}

// SelectedProperty returns the selected listing, or nil.
func (s *Store) SelectedProperty() *models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProperty(s.selectedProperty)
}

// Session returns the signed-in user, or nil.
func (s *Store) Session() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.session)
}

// Messages returns the messages recorded for chatID in arrival order.
func (s *Store) Messages(chatID string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneMessages(s.messagesByChat[chatID])
}

// SetProperties replaces the loaded properties. The filter result is reset
// to the full list.
func (s *Store) SetProperties(props []models.Property) {
	s.update(func() {
		s.properties = models.CloneProperties(props)
		s.filteredProperties = models.CloneProperties(props)
	})
}

// SetFilteredProperties replaces the filter result only.
func (s *Store) SetFilteredProperties(props []models.Property) {
	s.update(func() {
		s.filteredProperties = models.CloneProperties(props)
	})
}

// SelectProperty marks p as the listing being viewed.
func (s *Store) SelectProperty(p models.Property) {
	s.update(func() {
		s.selectedProperty = cloneProperty(&p)
	})
}

// ClearSelection drops the selected listing.
func (s *Store) ClearSelection() {
	s.update(func() {
		s.selectedProperty = nil
	})
}

// SetSession records the signed-in user. A nil user signs out.
func (s *Store) SetSession(u *models.User) {
	s.update(func() {
		s.session = cloneUser(u)
	})
}

// AddMessage appends msg to chatID. Duplicates are kept.
func (s *Store) AddMessage(chatID string, msg models.Message) {
	s.update(func() {
		s.messagesByChat[chatID] = append(s.messagesByChat[chatID], msg)
	})
}

// Logout clears the session and leaves everything else untouched.
func (s *Store) Logout() {
	s.SetSession(nil)
}

func (s *Store) update(mutate func()) {
	s.mu.Lock()
	mutate()
	snap := s.snapshotLocked()
	listeners := slices.Collect(maps.Values(s.listeners))
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	msgs := make(map[string][]models.Message, len(s.messagesByChat))
	for chatID, m := range s.messagesByChat {
		msgs[chatID] = models.CloneMessages(m)
	}
	return Snapshot{
		Properties:         models.CloneProperties(s.properties),
		FilteredProperties: models.CloneProperties(s.filteredProperties),
		SelectedProperty:   cloneProperty(s.selectedProperty),
		Session:            cloneUser(s.session),
		MessagesByChat:     msgs,
	}
}

func cloneProperty(p *models.Property) *models.Property {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := u.Clone()
	return &c
}
