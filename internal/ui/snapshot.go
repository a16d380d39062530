package ui

// RenderSnapshot applies startup keys, settles pending suggestions and
// returns one rendered frame.
func RenderSnapshot(m *Model, keys []string) string {
	ApplyStartupKeys(m, keys)
	m.Session.Flush()
	m.sync()
	return m.render()
}
