package config

// WithEnv replaces the environment lookup for tests.
func (l *Loader) WithEnv(env map[string]string) *Loader {
	l.getenv = func(k string) string { return env[k] }
	return l
}
