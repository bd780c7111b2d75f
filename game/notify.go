package game

// TableListener is told about every committed table change. The table
// passed in is a snapshot that is never modified afterwards; listeners must
// not modify it either. Calls happen after the table lock is released.
type TableListener interface {
	TableChanged(t *Table)
}

type TableListenerFunc func(t *Table)

func (f TableListenerFunc) TableChanged(t *Table) {
	f(t)
}

func (m *Manager) AddListener(l TableListener) {
	m.listenersLock.Lock()
	defer m.listenersLock.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) notify(t *Table) {
	m.listenersLock.RLock()
	listeners := append([]TableListener(nil), m.listeners...)
	m.listenersLock.RUnlock()
	for _, l := range listeners {
		l.TableChanged(t)
	}
}
