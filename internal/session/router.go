package session

import "sync"

// View is which screen a staff session is on.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewDetail    View = "detail"
)

// State is the view-routing state of one interactive session: current view,
// selected ticket, and the page/filter pair the dashboard last used. It is
// private to the session, never persisted, and re-initialized at session
// start.
type State struct {
	mu         sync.Mutex
	view       View
	selectedID string
	page       int
	status     string
	assignee   string
}

func newState() *State {
	return &State{
		view:     ViewDashboard,
		status:   "All",
		assignee: "All",
	}
}

// View returns the current view.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SelectedTicket returns the selected ticket id, empty on the dashboard.
func (s *State) SelectedTicket() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// SelectTicket moves the session to the detail view for the given ticket.
func (s *State) SelectTicket(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = ViewDetail
	s.selectedID = id
}

// ReturnToDashboard leaves the detail view and clears the selection. Also
// invoked after every successful update: a save always lands the caller
// back on the list.
func (s *State) ReturnToDashboard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = ViewDashboard
	s.selectedID = ""
}

// ApplyFilters stores the filter pair, resetting the page to 0 whenever
// either value changes. Filters and page position stay coupled, never
// independently stale. Reports whether the pair changed.
func (s *State) ApplyFilters(status, assignee string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := status != s.status || assignee != s.assignee
	if changed {
		s.page = 0
	}
	s.status = status
	s.assignee = assignee
	return changed
}

// SetPage moves to the given page, ignoring negative values.
func (s *State) SetPage(page int) {
	if page < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
}

// Page returns the current page position.
func (s *State) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Filters returns the stored filter pair.
func (s *State) Filters() (status, assignee string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.assignee
}

// Registry holds the view state of every live session in this process,
// keyed by session id. There is no cross-process visibility; each front
// owns its own registry.
type Registry struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[string]*State)}
}

// Start initializes fresh state for a session id, replacing any prior
// state under the same id.
func (r *Registry) Start(id string) *State {
	state := newState()
	r.mu.Lock()
	r.states[id] = state
	r.mu.Unlock()
	return state
}

// Get returns the state for a session, creating it when absent. A valid
// cookie arriving after a process restart lands here and begins at the
// dashboard, same as a new session.
func (r *Registry) Get(id string) *State {
	r.mu.RLock()
	state, ok := r.states[id]
	r.mu.RUnlock()
	if ok {
		return state
	}
	return r.Start(id)
}

// End discards a session's state on logout.
func (r *Registry) End(id string) {
	r.mu.Lock()
	delete(r.states, id)
	r.mu.Unlock()
}
