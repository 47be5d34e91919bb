package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/guestmap"
)

const (
	widgetSessionName = "guestmap-widget"
	widgetStateKey    = "state"
)

// errSessionStorage marks failures to read or write the session itself, as
// opposed to errors from the update being applied.
var errSessionStorage = errors.New("widget session storage")

// SessionStore keeps the widget state of the current page in the visitor's
// session. Only the latest widget instance is kept.
//
// Sessions are read straight from the store rather than through the
// per-request registry, so a read taken under the session lock always sees
// the last write of any concurrent request.
type SessionStore struct {
	store sessions.Store
	locks *sessionLocks
}

// NewSessionStore creates a SessionStore over store.
func NewSessionStore(store sessions.Store) *SessionStore {
	return &SessionStore{store: store, locks: newSessionLocks()}
}

// fresh reads the widget session from the store. A missing, expired or
// undecodable session comes back as a new, empty one.
func (s *SessionStore) fresh(r *http.Request) *sessions.Session {
	// On a decode or load error gorilla still returns a usable new session.
	sess, _ := s.store.New(r, widgetSessionName)
	if sess == nil {
		sess = sessions.NewSession(s.store, widgetSessionName)
		sess.Options = &sessions.Options{Path: "/"}
		sess.IsNew = true
	}
	return sess
}

func decodeState(sess *sessions.Session) (guestmap.WidgetState, bool, error) {
	raw, ok := sess.Values[widgetStateKey].(string)
	if !ok || raw == "" {
		return guestmap.WidgetState{}, false, nil
	}
	var st guestmap.WidgetState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return guestmap.WidgetState{}, false, fmt.Errorf("decode widget state: %w", err)
	}
	return st, true, nil
}

func (s *SessionStore) write(c echo.Context, sess *sessions.Session, st guestmap.WidgetState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode widget state: %w", err)
	}
	sess.Values[widgetStateKey] = string(raw)
	if err := s.store.Save(c.Request(), c.Response(), sess); err != nil {
		return fmt.Errorf("save widget session: %w", err)
	}
	return nil
}

// Load returns the stored widget state, or false when there is none.
func (s *SessionStore) Load(c echo.Context) (guestmap.WidgetState, bool, error) {
	return decodeState(s.fresh(c.Request()))
}

// Start stores st as the session's widget, replacing any earlier instance.
func (s *SessionStore) Start(c echo.Context, st guestmap.WidgetState) error {
	sess := s.fresh(c.Request())
	if sess.ID != "" {
		defer s.locks.lock(sess.ID)()
	}
	return s.write(c, sess, st)
}

// Update applies fn to the stored state of instanceID and saves the state it
// returns, holding the session lock from load to save. The state is saved
// even when fn also returns an error. domain.ErrStaleWidget is returned when
// the session no longer holds instanceID.
func (s *SessionStore) Update(c echo.Context, instanceID string, fn func(guestmap.WidgetState) (guestmap.WidgetState, error)) (guestmap.WidgetState, error) {
	sess := s.fresh(c.Request())
	if sess.ID == "" {
		return guestmap.WidgetState{}, domain.ErrStaleWidget
	}
	defer s.locks.lock(sess.ID)()

	sess = s.fresh(c.Request())
	st, ok, err := decodeState(sess)
	if err != nil {
		return st, fmt.Errorf("%w: %w", errSessionStorage, err)
	}
	if !ok || st.InstanceID != instanceID {
		return st, domain.ErrStaleWidget
	}

	next, fnErr := fn(st)
	if err := s.write(c, sess, next); err != nil {
		return next, fmt.Errorf("%w: %w", errSessionStorage, err)
	}
	return next, fnErr
}

// CurrentInstance implements middleware.InstanceSource.
func (s *SessionStore) CurrentInstance(c echo.Context) (string, bool) {
	st, ok, err := s.Load(c)
	if err != nil || !ok {
		return "", false
	}
	return st.InstanceID, true
}
