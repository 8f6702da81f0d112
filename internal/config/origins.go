package config

// DefaultAllowedOrigins returns the origins whose pages may post captures
// and navigation signals to the local daemon.
func DefaultAllowedOrigins() []string {
	return []string{
		"https://debrid-link.com",
		"https://debrid-link.fr",
		"https://www.debrid-link.com",
		"https://www.debrid-link.fr",
	}
}
