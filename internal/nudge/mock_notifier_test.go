package nudge

import "context"

type mockNotifier struct {
	called    bool
	habits    []string
	hoursLeft int
	err       error
}

func (m *mockNotifier) SendNudge(ctx context.Context, habits []string, hoursLeft int) error {
	m.called = true
	m.habits = habits
	m.hoursLeft = hoursLeft
	return m.err
}
