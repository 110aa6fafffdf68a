package domain

// Tool describes one bundled third-party program the launcher can start.
type Tool struct {
	Name        string
	Description string
	// Binary is resolved against the tools directory first, then PATH.
	Binary string
	Args   []string
	// Open hands Binary to the platform opener instead of executing it.
	Open bool
}
