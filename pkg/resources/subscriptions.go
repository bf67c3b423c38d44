package resources

import (
	"database/sql"
	"sync"

	"github.com/richard-senior/mcp/pkg/util"
)

// SubscriptionStore durably tracks which sessions have subscribed to which
// resource URIs, so a server restart doesn't lose subscriptions a slow
// client never got around to refreshing. Per-process session membership
// (which in-memory Subscribers call should receive a given URI's update)
// is tracked alongside the durable table, since a sqlite row surviving a
// restart doesn't imply the session it names is still connected.
type SubscriptionStore struct {
	db *util.SQLiteClient

	mu    sync.RWMutex
	byURI map[string]map[string]struct{} // uri -> set of sessionID
}

// NewSubscriptionStore opens (or creates) the subscriptions table in db.
func NewSubscriptionStore(db *util.SQLiteClient) (*SubscriptionStore, error) {
	if err := db.Execute(`CREATE TABLE IF NOT EXISTS resource_subscriptions (
		session_id TEXT NOT NULL,
		uri        TEXT NOT NULL,
		PRIMARY KEY (session_id, uri)
	)`); err != nil {
		return nil, err
	}

	s := &SubscriptionStore{db: db, byURI: make(map[string]map[string]struct{})}
	err := db.Query("SELECT session_id, uri FROM resource_subscriptions", func(rows *sql.Rows) error {
		var sessionID, uri string
		if err := rows.Scan(&sessionID, &uri); err != nil {
			return err
		}
		s.addMemory(sessionID, uri)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SubscriptionStore) addMemory(sessionID, uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byURI[uri] == nil {
		s.byURI[uri] = make(map[string]struct{})
	}
	s.byURI[uri][sessionID] = struct{}{}
}

func (s *SubscriptionStore) removeMemory(sessionID, uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byURI[uri], sessionID)
	if len(s.byURI[uri]) == 0 {
		delete(s.byURI, uri)
	}
}

// Subscribe records that sessionID wants notifications/resources/updated
// for uri.
func (s *SubscriptionStore) Subscribe(sessionID, uri string) error {
	if err := s.db.Execute(
		"INSERT OR IGNORE INTO resource_subscriptions (session_id, uri) VALUES (?, ?)", sessionID, uri,
	); err != nil {
		return err
	}
	s.addMemory(sessionID, uri)
	return nil
}

// Unsubscribe drops sessionID's subscription to uri.
func (s *SubscriptionStore) Unsubscribe(sessionID, uri string) error {
	if err := s.db.Execute(
		"DELETE FROM resource_subscriptions WHERE session_id = ? AND uri = ?", sessionID, uri,
	); err != nil {
		return err
	}
	s.removeMemory(sessionID, uri)
	return nil
}

// UnsubscribeAll drops every subscription belonging to sessionID, e.g. on
// disconnect.
func (s *SubscriptionStore) UnsubscribeAll(sessionID string) error {
	if err := s.db.Execute("DELETE FROM resource_subscriptions WHERE session_id = ?", sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for uri, set := range s.byURI {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(s.byURI, uri)
		}
	}
	return nil
}

// Subscribers returns the sessionIDs currently subscribed to uri.
func (s *SubscriptionStore) Subscribers(uri string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byURI[uri]))
	for id := range s.byURI[uri] {
		out = append(out, id)
	}
	return out
}
